package domain

import (
	"strings"

	dErrors "restyle/pkg/domain-errors"
)

// ItemCondition grades the wear of a secondhand item.
// Invariant: the value must be one of the supported condition grades.
//
// Usage: construct via ParseItemCondition at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type ItemCondition string

// Supported condition grades, best to worst.
const (
	ConditionNewWithTags ItemCondition = "new_with_tags"
	ConditionLikeNew     ItemCondition = "like_new"
	ConditionGentlyUsed  ItemCondition = "gently_used"
	ConditionWellWorn    ItemCondition = "well_worn"
)

// validConditions is the single source of truth for valid condition grades.
var validConditions = map[ItemCondition]bool{
	ConditionNewWithTags: true,
	ConditionLikeNew:     true,
	ConditionGentlyUsed:  true,
	ConditionWellWorn:    true,
}

// ParseItemCondition constructs an ItemCondition from external input. The
// input is normalized: case-insensitive, spaces and dashes read as
// underscores.
func ParseItemCondition(s string) (ItemCondition, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	c := ItemCondition(normalized)
	if !validConditions[c] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown item condition %q", s)
	}
	return c, nil
}

func (c ItemCondition) String() string { return string(c) }
