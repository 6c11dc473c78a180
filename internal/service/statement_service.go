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

// StatementService drives the pipeline: intake -> extraction -> review
// buffer -> commit. Control is strictly sequential per upload; the extraction
// call and the commit are the only network suspension points.
type StatementService struct {
	intake        *IntakeService
	extraction    *ExtractionService
	buffer        *ReviewBuffer
	statementRepo *repository.StatementRepository
	ledgerRepo    *repository.LedgerRepository
	companyRepo   *repository.CompanyRepository
	logger        *zap.Logger
}

func NewStatementService(
	intake *IntakeService,
	extraction *ExtractionService,
	buffer *ReviewBuffer,
	statementRepo *repository.StatementRepository,
	ledgerRepo *repository.LedgerRepository,
	companyRepo *repository.CompanyRepository,
	logger *zap.Logger,
) *StatementService {
	return &StatementService{
		intake:        intake,
		extraction:    extraction,
		buffer:        buffer,
		statementRepo: statementRepo,
		ledgerRepo:    ledgerRepo,
		companyRepo:   companyRepo,
		logger:        logger,
	}
}

// UploadAndExtract validates the document, runs extraction, and parks the
// result in the review buffer. supplied distinguishes "no document at all"
// (park the marked sample statement, skip intake) from a document the caller
// did send: a supplied document always goes through intake, so an empty file
// is rejected rather than silently demoted to the sample.
func (s *StatementService) UploadAndExtract(ctx context.Context, userID uuid.UUID, data []byte, fileName string, supplied bool) (*dto.DraftResponse, error) {
	var mimeType string
	if supplied {
		var err error
		mimeType, err = s.intake.Validate(data)
		if err != nil {
			return nil, err
		}
	}

	statement, err := s.extraction.Extract(ctx, data, mimeType, fileName)
	if err != nil {
		return nil, err
	}

	draftID := s.buffer.Put(userID, fileName, statement)
	return draftResponse(draftID, fileName, statement), nil
}

// DecodeDocument decodes a base64 document payload, with or without a
// data-URL prefix.
func (s *StatementService) DecodeDocument(payload string) ([]byte, error) {
	return s.intake.Decode(payload)
}

// Draft returns the current snapshot of a draft.
func (s *StatementService) Draft(userID, draftID uuid.UUID) (*dto.DraftResponse, error) {
	statement, fileName, err := s.buffer.Snapshot(userID, draftID)
	if err != nil {
		return nil, err
	}
	return draftResponse(draftID, fileName, statement), nil
}

// UpdateField replaces a scalar field or a statement-period bound.
func (s *StatementService) UpdateField(userID, draftID uuid.UUID, field, value string) error {
	switch field {
	case "period_from":
		return s.buffer.SetPeriodBound(userID, draftID, "from", value)
	case "period_to":
		return s.buffer.SetPeriodBound(userID, draftID, "to", value)
	default:
		return s.buffer.SetField(userID, draftID, field, value)
	}
}

func (s *StatementService) UpdateTransaction(userID, draftID uuid.UUID, index int, field, value string) error {
	return s.buffer.SetTransactionField(userID, draftID, index, field, value)
}

func (s *StatementService) AddTransaction(userID, draftID uuid.UUID) error {
	return s.buffer.AddTransaction(userID, draftID)
}

func (s *StatementService) RemoveTransaction(userID, draftID uuid.UUID, index int) error {
	return s.buffer.RemoveTransaction(userID, draftID, index)
}

func (s *StatementService) DiscardDraft(userID, draftID uuid.UUID) error {
	return s.buffer.Discard(userID, draftID)
}

// Commit decomposes the draft into a header row, transaction rows, and
// derived ledger entries, writes them in one database transaction, and
// discards the draft. On failure nothing is written and the draft stays
// editable.
func (s *StatementService) Commit(ctx context.Context, userID, draftID uuid.UUID) (*dto.CommitResponse, error) {
	statement, fileName, err := s.buffer.Snapshot(userID, draftID)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "company lookup", Err: err}
	}

	header, transactions, entries := buildCommitRows(userID, company.ID, fileName, statement, time.Now())

	if err := s.statementRepo.Commit(ctx, header, transactions, entries); err != nil {
		return nil, &PersistenceError{Op: "statement commit", Err: err}
	}

	if err := s.buffer.Discard(userID, draftID); err != nil {
		s.logger.Warn("Failed to discard committed draft", zap.Error(err))
	}

	s.logger.Info("Draft committed",
		zap.String("statement_id", header.ID.String()),
		zap.Int("transactions", len(transactions)),
	)

	return &dto.CommitResponse{
		Statement:    statementResponse(header, nil),
		Transactions: len(transactions),
		LedgerRows:   len(entries),
	}, nil
}

// List returns the user's committed statement headers, newest first.
func (s *StatementService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.StatementResponse, error) {
	statements, err := s.statementRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.StatementResponse, len(statements))
	for i, st := range statements {
		resp := statementResponse(st, nil)
		responses[i] = &resp
	}
	return responses, nil
}

// Get returns one committed statement with its transactions.
func (s *StatementService) Get(ctx context.Context, userID, statementID uuid.UUID) (*dto.StatementResponse, error) {
	header, err := s.statementRepo.GetByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if header.UserID != userID {
		return nil, ErrNotOwner
	}

	transactions, err := s.statementRepo.ListTransactions(ctx, statementID)
	if err != nil {
		return nil, err
	}

	resp := statementResponse(header, transactions)
	return &resp, nil
}

// Ledger returns the user's ledger entries, newest first. Entries come from
// committed statements and paid bills alike.
func (s *StatementService) Ledger(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.LedgerEntryResponse, error) {
	entries, err := s.ledgerRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.LedgerEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.LedgerEntryResponse{
			ID:          entry.ID.String(),
			Date:        entry.Date.Format("2006-01-02"),
			Description: entry.Description,
			Amount:      entry.Amount,
			Category:    string(entry.Category),
			EntryType:   string(entry.EntryType),
		}
	}
	return responses, nil
}

// buildCommitRows maps one reviewed statement onto its persisted rows: the
// header, one bank_transactions row per line item, and one derived ledger
// entry per line item. Ledger amounts are signed: credits positive, debits
// negative.
func buildCommitRows(userID, companyID uuid.UUID, fileName string, statement *models.ExtractedStatement, now time.Time) (*models.BankStatement, []*models.BankTransaction, []*models.LedgerEntry) {
	header := &models.BankStatement{
		ID:             uuid.New(),
		UserID:         userID,
		CompanyID:      companyID,
		FileName:       fileName,
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
			Description:     sanitizeUTF8(tx.Description),
			DebitAmount:     tx.DebitAmount,
			CreditAmount:    tx.CreditAmount,
			Balance:         tx.Balance,
			ReferenceNumber: sanitizeUTF8(tx.ReferenceNumber),
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

	return header, transactions, entries
}

func draftResponse(draftID uuid.UUID, fileName string, statement *models.ExtractedStatement) *dto.DraftResponse {
	resp := &dto.DraftResponse{
		DraftID:        draftID.String(),
		FileName:       fileName,
		Sample:         IsSample(statement),
		AccountNumber:  statement.AccountNumber,
		BankName:       statement.BankName,
		PeriodFrom:     statement.PeriodFrom.Format("2006-01-02"),
		PeriodTo:       statement.PeriodTo.Format("2006-01-02"),
		OpeningBalance: statement.OpeningBalance,
		ClosingBalance: statement.ClosingBalance,
		Transactions:   make([]dto.DraftTransactionItem, len(statement.Transactions)),
	}
	for i, tx := range statement.Transactions {
		resp.Transactions[i] = dto.DraftTransactionItem{
			Index:           i,
			Date:            tx.Date.Format("2006-01-02"),
			Description:     tx.Description,
			DebitAmount:     tx.DebitAmount,
			CreditAmount:    tx.CreditAmount,
			Balance:         tx.Balance,
			ReferenceNumber: tx.ReferenceNumber,
			Category:        string(tx.Category),
		}
	}
	return resp
}

func statementResponse(header *models.BankStatement, transactions []*models.BankTransaction) dto.StatementResponse {
	resp := dto.StatementResponse{
		ID:             header.ID.String(),
		FileName:       header.FileName,
		AccountNumber:  header.AccountNumber,
		BankName:       header.BankName,
		PeriodFrom:     header.PeriodFrom.Format("2006-01-02"),
		PeriodTo:       header.PeriodTo.Format("2006-01-02"),
		OpeningBalance: header.OpeningBalance,
		ClosingBalance: header.ClosingBalance,
		Processed:      header.Processed,
		CreatedAt:      header.CreatedAt.Format(time.RFC3339),
	}
	for _, tx := range transactions {
		resp.Transactions = append(resp.Transactions, dto.TransactionResponse{
			ID:              tx.ID.String(),
			Date:            tx.Date.Format("2006-01-02"),
			Description:     tx.Description,
			DebitAmount:     tx.DebitAmount,
			CreditAmount:    tx.CreditAmount,
			Balance:         tx.Balance,
			ReferenceNumber: tx.ReferenceNumber,
			Category:        string(tx.Category),
		})
	}
	return resp
}
