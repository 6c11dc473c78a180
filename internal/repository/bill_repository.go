package repository

import (
	"context"

	"bizbooks/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type BillRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBillRepository(db *pgxpool.Pool, logger *zap.Logger) *BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BillRepository) Create(ctx context.Context, bill *models.Bill) error {
	query := squirrel.Insert("bills").
		Columns("id", "user_id", "company_id", "vendor", "description", "amount",
			"due_date", "status", "category", "created_at", "updated_at").
		Values(bill.ID, bill.UserID, bill.CompanyID, bill.Vendor, bill.Description, bill.Amount,
			bill.DueDate, bill.Status, bill.Category, bill.CreatedAt, bill.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	query := squirrel.Select("id", "user_id", "company_id", "vendor", "description", "amount",
		"due_date", "status", "category", "created_at", "updated_at").
		From("bills").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var bill models.Bill
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&bill.ID, &bill.UserID, &bill.CompanyID, &bill.Vendor, &bill.Description, &bill.Amount,
		&bill.DueDate, &bill.Status, &bill.Category, &bill.CreatedAt, &bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &bill, nil
}

func (r *BillRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Bill, error) {
	query := squirrel.Select("id", "user_id", "company_id", "vendor", "description", "amount",
		"due_date", "status", "category", "created_at", "updated_at").
		From("bills").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("due_date ASC").
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

	var bills []*models.Bill
	for rows.Next() {
		var bill models.Bill
		if err := rows.Scan(
			&bill.ID, &bill.UserID, &bill.CompanyID, &bill.Vendor, &bill.Description, &bill.Amount,
			&bill.DueDate, &bill.Status, &bill.Category, &bill.CreatedAt, &bill.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bills = append(bills, &bill)
	}

	return bills, nil
}

func (r *BillRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BillStatus) error {
	query := squirrel.Update("bills").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
