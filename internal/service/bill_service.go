package service

import (
	"context"
	"time"

	"bizbooks/internal/dto"
	"bizbooks/internal/models"
	"bizbooks/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BillService struct {
	billRepo    *repository.BillRepository
	ledgerRepo  *repository.LedgerRepository
	companyRepo *repository.CompanyRepository
	logger      *zap.Logger
}

func NewBillService(billRepo *repository.BillRepository, ledgerRepo *repository.LedgerRepository, companyRepo *repository.CompanyRepository, logger *zap.Logger) *BillService {
	return &BillService{
		billRepo:    billRepo,
		ledgerRepo:  ledgerRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

func (s *BillService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateBillRequest) (*dto.BillResponse, error) {
	company, err := s.companyRepo.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "company lookup", Err: err}
	}

	dueDate := parseDate(req.DueDate, time.Now())
	category := models.ParseCategory(req.Category)
	if req.Category == "" {
		category = models.CategoryAccountsPayable
	}

	now := time.Now()
	bill := &models.Bill{
		ID:          uuid.New(),
		UserID:      userID,
		CompanyID:   company.ID,
		Vendor:      req.Vendor,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Status:      models.BillStatusPending,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, &PersistenceError{Op: "bill insert", Err: err}
	}

	resp := billResponse(bill)
	return &resp, nil
}

func (s *BillService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.BillResponse, error) {
	bills, err := s.billRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BillResponse, len(bills))
	for i, bill := range bills {
		responses[i] = billResponse(bill)
	}
	return responses, nil
}

// UpdateStatus moves a bill between pending/paid/overdue. Marking a bill
// paid writes a debit ledger entry so the payment shows up in the books.
func (s *BillService) UpdateStatus(ctx context.Context, userID, billID uuid.UUID, status models.BillStatus) (*dto.BillResponse, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, ErrBillNotFound
	}
	if bill.UserID != userID {
		return nil, ErrNotOwner
	}

	if err := s.billRepo.UpdateStatus(ctx, billID, status); err != nil {
		return nil, &PersistenceError{Op: "bill status update", Err: err}
	}

	if status == models.BillStatusPaid && bill.Status != models.BillStatusPaid {
		if err := s.ledgerRepo.Create(ctx, paymentEntry(userID, bill, time.Now())); err != nil {
			return nil, &PersistenceError{Op: "ledger entry insert", Err: err}
		}
	}

	bill.Status = status
	resp := billResponse(bill)
	return &resp, nil
}

// paymentEntry derives the ledger row for a paid bill: a debit for the full
// amount. TransactionID stays nil: the entry comes from no bank transaction.
func paymentEntry(userID uuid.UUID, bill *models.Bill, now time.Time) *models.LedgerEntry {
	return &models.LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		CompanyID:   bill.CompanyID,
		Date:        now,
		Description: "Bill payment: " + bill.Vendor,
		Amount:      -bill.Amount,
		Category:    bill.Category,
		EntryType:   models.EntryTypeDebit,
		CreatedAt:   now,
	}
}

func billResponse(bill *models.Bill) dto.BillResponse {
	return dto.BillResponse{
		ID:          bill.ID.String(),
		Vendor:      bill.Vendor,
		Description: bill.Description,
		Amount:      bill.Amount,
		DueDate:     bill.DueDate.Format("2006-01-02"),
		Status:      string(bill.Status),
		Category:    string(bill.Category),
		CreatedAt:   bill.CreatedAt.Format(time.RFC3339),
	}
}
