package repository

import (
	"context"

	"bizbooks/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CompanyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCompanyRepository(db *pgxpool.Pool, logger *zap.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// CreateIfAbsent inserts the company unless the owner already has one. The
// unique constraint on owner_id makes provisioning idempotent: a concurrent
// duplicate insert is silently dropped and the survivor is read back.
func (r *CompanyRepository) CreateIfAbsent(ctx context.Context, company *models.Company) error {
	query := squirrel.Insert("companies").
		Columns("id", "owner_id", "name", "gstin", "created_at", "updated_at").
		Values(company.ID, company.OwnerID, company.Name, company.GSTIN, company.CreatedAt, company.UpdatedAt).
		Suffix("ON CONFLICT (owner_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CompanyRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Company, error) {
	query := squirrel.Select("id", "owner_id", "name", "gstin", "created_at", "updated_at").
		From("companies").
		Where(squirrel.Eq{"owner_id": ownerID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var company models.Company
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&company.ID, &company.OwnerID, &company.Name, &company.GSTIN, &company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &company, nil
}
