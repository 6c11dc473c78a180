package repository

import (
	"context"

	"bizbooks/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type StatementRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStatementRepository(db *pgxpool.Pool, logger *zap.Logger) *StatementRepository {
	return &StatementRepository{
		db:     db,
		logger: logger,
	}
}

// Commit writes the statement header, its transaction rows, and the derived
// ledger entries in one database transaction. Any failure rolls the whole
// commit back, so there is never a header without its rows.
func (r *StatementRepository) Commit(ctx context.Context, header *models.BankStatement, transactions []*models.BankTransaction, entries []*models.LedgerEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	headerQuery := squirrel.Insert("bank_statements").
		Columns("id", "user_id", "company_id", "file_name", "account_number", "bank_name",
			"period_from", "period_to", "opening_balance", "closing_balance", "processed", "created_at").
		Values(header.ID, header.UserID, header.CompanyID, header.FileName, header.AccountNumber, header.BankName,
			header.PeriodFrom, header.PeriodTo, header.OpeningBalance, header.ClosingBalance, header.Processed, header.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := headerQuery.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	if len(transactions) > 0 {
		builder := squirrel.Insert("bank_transactions").
			Columns("id", "statement_id", "user_id", "date", "description", "debit_amount",
				"credit_amount", "balance", "reference_number", "category", "created_at").
			PlaceholderFormat(squirrel.Dollar)
		for _, t := range transactions {
			builder = builder.Values(t.ID, t.StatementID, t.UserID, t.Date, t.Description, t.DebitAmount,
				t.CreditAmount, t.Balance, t.ReferenceNumber, t.Category, t.CreatedAt)
		}

		sql, args, err = builder.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}

	if len(entries) > 0 {
		builder := squirrel.Insert("ledger_entries").
			Columns("id", "user_id", "company_id", "transaction_id", "date", "description",
				"amount", "category", "entry_type", "created_at").
			PlaceholderFormat(squirrel.Dollar)
		for _, e := range entries {
			builder = builder.Values(e.ID, e.UserID, e.CompanyID, e.TransactionID, e.Date, e.Description,
				e.Amount, e.Category, e.EntryType, e.CreatedAt)
		}

		sql, args, err = builder.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Statement committed",
		zap.String("statement_id", header.ID.String()),
		zap.Int("transactions", len(transactions)),
		zap.Int("ledger_entries", len(entries)),
	)
	return nil
}

func (r *StatementRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.BankStatement, error) {
	query := squirrel.Select("id", "user_id", "company_id", "file_name", "account_number", "bank_name",
		"period_from", "period_to", "opening_balance", "closing_balance", "processed", "created_at").
		From("bank_statements").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
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

	var statements []*models.BankStatement
	for rows.Next() {
		var s models.BankStatement
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.CompanyID, &s.FileName, &s.AccountNumber, &s.BankName,
			&s.PeriodFrom, &s.PeriodTo, &s.OpeningBalance, &s.ClosingBalance, &s.Processed, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		statements = append(statements, &s)
	}

	return statements, nil
}

func (r *StatementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BankStatement, error) {
	query := squirrel.Select("id", "user_id", "company_id", "file_name", "account_number", "bank_name",
		"period_from", "period_to", "opening_balance", "closing_balance", "processed", "created_at").
		From("bank_statements").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var s models.BankStatement
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.UserID, &s.CompanyID, &s.FileName, &s.AccountNumber, &s.BankName,
		&s.PeriodFrom, &s.PeriodTo, &s.OpeningBalance, &s.ClosingBalance, &s.Processed, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *StatementRepository) ListTransactions(ctx context.Context, statementID uuid.UUID) ([]*models.BankTransaction, error) {
	query := squirrel.Select("id", "statement_id", "user_id", "date", "description", "debit_amount",
		"credit_amount", "balance", "reference_number", "category", "created_at").
		From("bank_transactions").
		Where(squirrel.Eq{"statement_id": statementID}).
		OrderBy("date ASC, created_at ASC").
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

	var transactions []*models.BankTransaction
	for rows.Next() {
		var t models.BankTransaction
		if err := rows.Scan(
			&t.ID, &t.StatementID, &t.UserID, &t.Date, &t.Description, &t.DebitAmount,
			&t.CreditAmount, &t.Balance, &t.ReferenceNumber, &t.Category, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &t)
	}

	return transactions, nil
}
