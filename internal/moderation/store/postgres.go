package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"restyle/internal/moderation/models"
	id "restyle/pkg/domain"
	"restyle/pkg/platform/sentinel"
)

// PostgresListingStore persists listings in a single table. Images are stored
// as a JSONB array; everything else is flat columns.
type PostgresListingStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed listing store.
func NewPostgres(db *sql.DB) *PostgresListingStore {
	return &PostgresListingStore{db: db}
}

const listingColumns = `id, seller_id, outfit_name, brand, size, color, price_cents, condition,
	description, images, posted_at, status, rejection_reason, decided_at, created_at, updated_at`

func (s *PostgresListingStore) Create(ctx context.Context, listing *models.Listing) error {
	images, err := json.Marshal(listing.Images)
	if err != nil {
		return fmt.Errorf("marshal listing images: %w", err)
	}

	const query = `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(listing.ID),
		uuid.UUID(listing.SellerID),
		listing.OutfitName,
		listing.Brand,
		listing.Size,
		listing.Color,
		listing.PriceCents,
		listing.Condition,
		listing.Description,
		images,
		listing.PostedAt,
		string(listing.Status),
		listing.RejectionReason,
		listing.DecidedAt,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert listing rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("listing %s already exists: %w", listing.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresListingStore) FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	return s.findByID(ctx, s.db, listingID, false)
}

func (s *PostgresListingStore) ListPending(ctx context.Context) ([]*models.Listing, error) {
	pending := models.ListingPending
	return s.List(ctx, &pending)
}

func (s *PostgresListingStore) List(ctx context.Context, status *models.ListingStatus) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY posted_at, id`
	args := []any{}
	if status != nil {
		query = `SELECT ` + listingColumns + ` FROM listings WHERE status = $1 ORDER BY posted_at, id`
		args = append(args, string(*status))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

func (s *PostgresListingStore) CountByStatus(ctx context.Context) (map[models.ListingStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM listings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ListingStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan listing count: %w", err)
		}
		counts[models.ListingStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing counts: %w", err)
	}
	return counts, nil
}

// Execute runs validate-then-mutate atomically against one listing under a
// SELECT ... FOR UPDATE row lock.
func (s *PostgresListingStore) Execute(
	ctx context.Context,
	listingID id.ListingID,
	validate func(*models.Listing) error,
	mutate func(*models.Listing),
) (*models.Listing, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	listing, err := s.findByID(ctx, tx, listingID, true)
	if err != nil {
		return nil, err
	}
	if err := validate(listing); err != nil {
		return nil, err
	}
	mutate(listing)

	const update = `
		UPDATE listings
		SET status = $2, rejection_reason = $3, decided_at = $4, updated_at = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(listing.ID),
		string(listing.Status),
		listing.RejectionReason,
		listing.DecidedAt,
		listing.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return listing, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresListingStore) findByID(ctx context.Context, q queryer, listingID id.ListingID, forUpdate bool) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	row := q.QueryRowContext(ctx, query, uuid.UUID(listingID))
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("listing %s: %w", listingID, sentinel.ErrNotFound)
		}
		return nil, err
	}
	return listing, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var (
		listing   models.Listing
		rawID     uuid.UUID
		rawSeller uuid.UUID
		images    []byte
		status    string
		decidedAt sql.NullTime
	)
	err := row.Scan(
		&rawID,
		&rawSeller,
		&listing.OutfitName,
		&listing.Brand,
		&listing.Size,
		&listing.Color,
		&listing.PriceCents,
		&listing.Condition,
		&listing.Description,
		&images,
		&listing.PostedAt,
		&status,
		&listing.RejectionReason,
		&decidedAt,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	listing.ID = id.ListingID(rawID)
	listing.SellerID = id.SellerID(rawSeller)
	listing.Status = models.ListingStatus(status)
	if decidedAt.Valid {
		listing.DecidedAt = &decidedAt.Time
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &listing.Images); err != nil {
			return nil, fmt.Errorf("unmarshal listing images: %w", err)
		}
	}
	return &listing, nil
}
