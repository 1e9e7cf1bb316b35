package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveNameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		first string
		last  string
	}{
		{"maya.chen@example.com", "Maya", "Chen"},
		{"maya_chen@example.com", "Maya", "Chen"},
		{"maya-r-chen@example.com", "Maya", "Chen"},
		{"maya@example.com", "Maya", "User"},
		{"maya+shop@example.com", "Maya", "Shop"},
		{"", "User", "User"},
	}
	for _, tt := range tests {
		first, last := DeriveNameFromEmail(tt.email)
		assert.Equal(t, tt.first, first, tt.email)
		assert.Equal(t, tt.last, last, tt.email)
	}
}
