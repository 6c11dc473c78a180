package repository

import (
	"context"

	"bizbooks/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type LedgerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLedgerRepository(db *pgxpool.Pool, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a single ledger entry. Statement commits bulk-insert their
// entries inside the commit transaction instead; this path serves bill
// payments and manual adjustments.
func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	query := squirrel.Insert("ledger_entries").
		Columns("id", "user_id", "company_id", "transaction_id", "date", "description",
			"amount", "category", "entry_type", "created_at").
		Values(entry.ID, entry.UserID, entry.CompanyID, entry.TransactionID, entry.Date, entry.Description,
			entry.Amount, entry.Category, entry.EntryType, entry.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *LedgerRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.LedgerEntry, error) {
	query := squirrel.Select("id", "user_id", "company_id", "transaction_id", "date", "description",
		"amount", "category", "entry_type", "created_at").
		From("ledger_entries").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC, created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.CompanyID, &e.TransactionID, &e.Date, &e.Description,
			&e.Amount, &e.Category, &e.EntryType, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	return entries, nil
}
