package main

import (
	"context"
	"log"
	"time"

	"bizbooks/internal/models"
	"bizbooks/internal/repository"
	"bizbooks/internal/service"
	"bizbooks/pkg/auth"
	"bizbooks/pkg/config"
	"bizbooks/pkg/logger"
	"bizbooks/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	demoEmail    = "demo@bizbooks.dev"
	demoUsername = "demo"
	demoPassword = "demo-password-123"
)

// Seeds a demo account with a company, a committed sample statement, and a
// few open bills so a fresh install has data to show.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	companyRepo := repository.NewCompanyRepository(db, appLogger)
	statementRepo := repository.NewStatementRepository(db, appLogger)
	billRepo := repository.NewBillRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	user, err := seedUser(ctx, userRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed demo user", zap.Error(err))
	}

	company, err := seedCompany(ctx, companyRepo, user.ID, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed demo company", zap.Error(err))
	}

	if err := seedStatement(ctx, statementRepo, user.ID, company.ID, appLogger); err != nil {
		appLogger.Fatal("Failed to seed sample statement", zap.Error(err))
	}

	if err := seedBills(ctx, billRepo, user.ID, company.ID, appLogger); err != nil {
		appLogger.Fatal("Failed to seed sample bills", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func seedUser(ctx context.Context, repo *repository.UserRepository, logger *zap.Logger) (*models.User, error) {
	if existing, err := repo.GetByEmail(ctx, demoEmail); err == nil {
		logger.Info("Demo user already exists, skipping", zap.String("email", demoEmail))
		return existing, nil
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  demoUsername,
		Email:     demoEmail,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Created demo user", zap.String("email", demoEmail))
	return user, nil
}

func seedCompany(ctx context.Context, repo *repository.CompanyRepository, ownerID uuid.UUID, logger *zap.Logger) (*models.Company, error) {
	now := time.Now()
	company := &models.Company{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      "Demo Trading Co",
		GSTIN:     "22AAAAA0000A1Z5",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateIfAbsent(ctx, company); err != nil {
		return nil, err
	}

	// Read back: a previous run may own the row.
	company, err := repo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	logger.Info("Demo company ready", zap.String("name", company.Name))
	return company, nil
}

// seedStatement commits the built-in sample statement for the demo user so
// the statement list and ledger are populated on first login.
func seedStatement(ctx context.Context, repo *repository.StatementRepository, userID, companyID uuid.UUID, logger *zap.Logger) error {
	existing, err := repo.ListByUserID(ctx, userID, 1, 0)
	if err == nil && len(existing) > 0 {
		logger.Info("Demo user already has statements, skipping")
		return nil
	}

	statement := service.SampleStatement()
	now := time.Now()

	header := &models.BankStatement{
		ID:             uuid.New(),
		UserID:         userID,
		CompanyID:      companyID,
		FileName:       "sample",
		AccountNumber:  statement.AccountNumber,
		BankName:       statement.BankName,
		PeriodFrom:     statement.PeriodFrom,
		PeriodTo:       statement.PeriodTo,
		OpeningBalance: statement.OpeningBalance,
		ClosingBalance: statement.ClosingBalance,
		Processed:      true,
		CreatedAt:      now,
	}

	transactions := make([]*models.BankTransaction, 0, len(statement.Transactions))
	entries := make([]*models.LedgerEntry, 0, len(statement.Transactions))
	for _, tx := range statement.Transactions {
		row := &models.BankTransaction{
			ID:              uuid.New(),
			StatementID:     header.ID,
			UserID:          userID,
			Date:            tx.Date,
			Description:     tx.Description,
			DebitAmount:     tx.DebitAmount,
			CreditAmount:    tx.CreditAmount,
			Balance:         tx.Balance,
			ReferenceNumber: tx.ReferenceNumber,
			Category:        tx.Category,
			CreatedAt:       now,
		}
		transactions = append(transactions, row)

		entry := &models.LedgerEntry{
			ID:            uuid.New(),
			UserID:        userID,
			CompanyID:     companyID,
			TransactionID: &row.ID,
			Date:          row.Date,
			Description:   row.Description,
			Category:      row.Category,
			CreatedAt:     now,
		}
		if tx.CreditAmount > 0 {
			entry.Amount = tx.CreditAmount
			entry.EntryType = models.EntryTypeCredit
		} else {
			entry.Amount = -tx.DebitAmount
			entry.EntryType = models.EntryTypeDebit
		}
		entries = append(entries, entry)
	}

	if err := repo.Commit(ctx, header, transactions, entries); err != nil {
		return err
	}

	logger.Info("Committed sample statement",
		zap.String("statement_id", header.ID.String()),
		zap.Int("transactions", len(transactions)),
	)
	return nil
}

func seedBills(ctx context.Context, repo *repository.BillRepository, userID, companyID uuid.UUID, logger *zap.Logger) error {
	existing, err := repo.ListByUserID(ctx, userID, 1, 0)
	if err == nil && len(existing) > 0 {
		logger.Info("Demo user already has bills, skipping")
		return nil
	}

	now := time.Now()
	bills := []*models.Bill{
		{
			Vendor:      "City Power & Light",
			Description: "Electricity for the shop floor",
			Amount:      4350,
			DueDate:     now.AddDate(0, 0, 10),
			Category:    models.CategoryUtilitiesExpense,
		},
		{
			Vendor:      "Sharma Stationery",
			Description: "Invoice books and office supplies",
			Amount:      1200,
			DueDate:     now.AddDate(0, 0, 20),
			Category:    models.CategoryOfficeExpense,
		},
		{
			Vendor:      "Apex Logistics",
			Description: "Freight for March deliveries",
			Amount:      8600,
			DueDate:     now.AddDate(0, 0, 5),
			Category:    models.CategoryAccountsPayable,
		},
	}

	for _, bill := range bills {
		bill.ID = uuid.New()
		bill.UserID = userID
		bill.CompanyID = companyID
		bill.Status = models.BillStatusPending
		bill.CreatedAt = now
		bill.UpdatedAt = now
		if err := repo.Create(ctx, bill); err != nil {
			return err
		}
	}

	logger.Info("Created sample bills", zap.Int("count", len(bills)))
	return nil
}
