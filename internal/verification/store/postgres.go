package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"restyle/internal/verification/models"
	id "restyle/pkg/domain"
	"restyle/pkg/platform/sentinel"
)

// PostgresAccountStore persists seller accounts in two tables:
//
//	sellers                    - one row per account, current state
//	seller_verification_events - append-only history, PK (seller_id, sequence_number)
//
// The composite primary key makes history rewrites fail loudly: an Execute
// that tried to re-issue an existing sequence number would hit a constraint
// violation instead of silently rewriting the trail.
type PostgresAccountStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed account store.
func NewPostgres(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

const accountColumns = `id, name, email, brand_name, joined_at, total_products, total_sales,
	rating, revenue, status, verification_date, suspension_reason, created_at, updated_at`

func (s *PostgresAccountStore) Create(ctx context.Context, account *models.SellerAccount) error {
	const query = `
		INSERT INTO sellers (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(account.ID),
		account.Name,
		account.Email,
		account.BrandName,
		account.JoinedAt,
		account.TotalProducts,
		account.TotalSales,
		account.Rating,
		account.Revenue,
		string(account.Status),
		account.VerificationDate,
		account.SuspensionReason,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert seller: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert seller rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("seller %s already exists: %w", account.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresAccountStore) FindByID(ctx context.Context, sellerID id.SellerID) (*models.SellerAccount, error) {
	account, err := s.findByID(ctx, s.db, sellerID, false)
	if err != nil {
		return nil, err
	}
	if err := s.loadHistory(ctx, s.db, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *PostgresAccountStore) List(ctx context.Context, status *models.AccountStatus) ([]*models.SellerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM sellers ORDER BY joined_at, id`
	args := []any{}
	if status != nil {
		query = `SELECT ` + accountColumns + ` FROM sellers WHERE status = $1 ORDER BY joined_at, id`
		args = append(args, string(*status))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sellers: %w", err)
	}
	defer rows.Close()

	var accounts []*models.SellerAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sellers: %w", err)
	}
	for _, account := range accounts {
		if err := s.loadHistory(ctx, s.db, account); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (s *PostgresAccountStore) CountByStatus(ctx context.Context) (map[models.AccountStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM sellers GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count sellers: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.AccountStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan seller count: %w", err)
		}
		counts[models.AccountStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seller counts: %w", err)
	}
	return counts, nil
}

// Execute runs validate-then-mutate atomically against one account. The row
// lock from SELECT ... FOR UPDATE is held for the whole transaction, so a
// concurrent Execute on the same account blocks until the winner commits and
// then revalidates against the committed state.
func (s *PostgresAccountStore) Execute(
	ctx context.Context,
	sellerID id.SellerID,
	validate func(*models.SellerAccount) error,
	mutate func(*models.SellerAccount),
) (*models.SellerAccount, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	account, err := s.findByID(ctx, tx, sellerID, true)
	if err != nil {
		return nil, err
	}
	if err := s.loadHistory(ctx, tx, account); err != nil {
		return nil, err
	}

	priorEvents := len(account.VerificationHistory)
	if err := validate(account); err != nil {
		return nil, err
	}
	mutate(account)

	const update = `
		UPDATE sellers
		SET status = $2, verification_date = $3, suspension_reason = $4, updated_at = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(account.ID),
		string(account.Status),
		account.VerificationDate,
		account.SuspensionReason,
		account.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update seller: %w", err)
	}

	const insertEvent = `
		INSERT INTO seller_verification_events (seller_id, sequence_number, date, decision, notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, event := range account.VerificationHistory[priorEvents:] {
		if _, err := tx.ExecContext(ctx, insertEvent,
			uuid.UUID(account.ID),
			event.SequenceNumber,
			event.Date,
			string(event.Decision),
			event.Notes,
		); err != nil {
			return nil, fmt.Errorf("insert verification event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return account, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresAccountStore) findByID(ctx context.Context, q queryer, sellerID id.SellerID, forUpdate bool) (*models.SellerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM sellers WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	row := q.QueryRowContext(ctx, query, uuid.UUID(sellerID))
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("seller %s: %w", sellerID, sentinel.ErrNotFound)
		}
		return nil, err
	}
	return account, nil
}

func (s *PostgresAccountStore) loadHistory(ctx context.Context, q queryer, account *models.SellerAccount) error {
	const query = `
		SELECT sequence_number, date, decision, notes
		FROM seller_verification_events
		WHERE seller_id = $1
		ORDER BY sequence_number
	`
	rows, err := q.QueryContext(ctx, query, uuid.UUID(account.ID))
	if err != nil {
		return fmt.Errorf("query verification events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			event    models.VerificationEvent
			decision string
		)
		if err := rows.Scan(&event.SequenceNumber, &event.Date, &decision, &event.Notes); err != nil {
			return fmt.Errorf("scan verification event: %w", err)
		}
		event.Decision = models.VerificationDecision(decision)
		account.VerificationHistory = append(account.VerificationHistory, event)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate verification events: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.SellerAccount, error) {
	var (
		account          models.SellerAccount
		rawID            uuid.UUID
		status           string
		verificationDate sql.NullTime
	)
	err := row.Scan(
		&rawID,
		&account.Name,
		&account.Email,
		&account.BrandName,
		&account.JoinedAt,
		&account.TotalProducts,
		&account.TotalSales,
		&account.Rating,
		&account.Revenue,
		&status,
		&verificationDate,
		&account.SuspensionReason,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.ID = id.SellerID(rawID)
	account.Status = models.AccountStatus(status)
	if verificationDate.Valid {
		account.VerificationDate = &verificationDate.Time
	}
	return &account, nil
}
