package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"bizbooks/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestBuildCommitRows(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	statement := &models.ExtractedStatement{
		AccountNumber:  "1234567890",
		BankName:       "HDFC",
		PeriodFrom:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodTo:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		OpeningBalance: 1000,
		ClosingBalance: 11900,
		Transactions: []models.ExtractedTransaction{
			{
				Date:            time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
				Description:     "FUEL",
				DebitAmount:     100,
				Balance:         900,
				ReferenceNumber: "R1",
				Category:        models.CategoryFuelExpense,
			},
			{
				Date:            time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				Description:     "Customer payment",
				CreditAmount:    11000,
				Balance:         11900,
				ReferenceNumber: "R2",
				Category:        models.CategorySalesIncome,
			},
		},
	}

	header, transactions, entries := buildCommitRows(userID, companyID, "scan.jpg", statement, now)

	if header.UserID != userID || header.CompanyID != companyID {
		t.Error("header should carry the committing user and company")
	}
	if !header.Processed {
		t.Error("committed header must be marked processed")
	}
	if header.FileName != "scan.jpg" {
		t.Errorf("file name = %q", header.FileName)
	}
	if header.AccountNumber != "1234567890" || header.OpeningBalance != 1000 {
		t.Error("header fields do not match the reviewed statement")
	}

	if len(transactions) != 2 || len(entries) != 2 {
		t.Fatalf("rows = %d/%d, want 2/2", len(transactions), len(entries))
	}

	for i, row := range transactions {
		if row.StatementID != header.ID {
			t.Errorf("transaction %d not linked to header", i)
		}
		if row.UserID != userID {
			t.Errorf("transaction %d carries wrong user", i)
		}
		if entries[i].TransactionID == nil || *entries[i].TransactionID != row.ID {
			t.Errorf("ledger entry %d not linked to its transaction", i)
		}
		if entries[i].CompanyID != companyID {
			t.Errorf("ledger entry %d carries wrong company", i)
		}
	}

	// Debit rows yield a negative ledger amount, credit rows a positive one.
	if entries[0].Amount != -100 || entries[0].EntryType != models.EntryTypeDebit {
		t.Errorf("debit entry = %v/%v", entries[0].Amount, entries[0].EntryType)
	}
	if entries[1].Amount != 11000 || entries[1].EntryType != models.EntryTypeCredit {
		t.Errorf("credit entry = %v/%v", entries[1].Amount, entries[1].EntryType)
	}

	if entries[0].Category != models.CategoryFuelExpense || entries[1].Category != models.CategorySalesIncome {
		t.Error("ledger entries should inherit transaction categories")
	}
}

func TestBuildCommitRowsSanitizesText(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()

	statement := &models.ExtractedStatement{
		AccountNumber: "1",
		BankName:      "Bank",
		Transactions: []models.ExtractedTransaction{
			{
				Description:     "Caf\xc3\xa9 lunch \xff\xfe",
				ReferenceNumber: "REF\xff",
				DebitAmount:     50,
				Category:        models.CategoryOther,
			},
		},
	}

	_, transactions, entries := buildCommitRows(userID, companyID, "scan.jpg", statement, time.Now())

	if !utf8.ValidString(transactions[0].Description) {
		t.Error("description should be valid UTF-8 after sanitizing")
	}
	if !utf8.ValidString(transactions[0].ReferenceNumber) {
		t.Error("reference should be valid UTF-8 after sanitizing")
	}
	if entries[0].Description != transactions[0].Description {
		t.Error("ledger entry should carry the sanitized description")
	}
}

func newPipelineService(gen DocumentGenerator) *StatementService {
	intake := NewIntakeService(1<<20, zap.NewNop())
	extraction := NewExtractionService(gen, zap.NewNop())
	buffer := NewReviewBuffer(zap.NewNop())
	return NewStatementService(intake, extraction, buffer, nil, nil, nil, zap.NewNop())
}

func TestUploadAndExtractEmptySuppliedFile(t *testing.T) {
	gen := &mockGenerator{}
	svc := newPipelineService(gen)
	userID := uuid.New()

	// A file part the caller explicitly sent but that holds zero bytes is a
	// rejection, not a silent demotion to the sample draft.
	_, err := svc.UploadAndExtract(context.Background(), userID, nil, "empty.png", true)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for supplied empty file, got %v", err)
	}
	if gen.docCalled {
		t.Error("rejected upload must not reach the model")
	}

	// No document at all still yields the sample draft.
	draft, err := svc.UploadAndExtract(context.Background(), userID, nil, "sample", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !draft.Sample {
		t.Error("draft without a document should be the marked sample")
	}
}

func TestUploadAndExtractEncodedDocument(t *testing.T) {
	gen := &mockGenerator{reply: `{"accountNumber":"42","bankName":"HDFC","transactions":[]}`}
	svc := newPipelineService(gen)
	userID := uuid.New()

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	data, err := svc.DecodeDocument(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft, err := svc.UploadAndExtract(context.Background(), userID, data, "scan.png", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.AccountNumber != "42" {
		t.Errorf("account number = %q", draft.AccountNumber)
	}
	if !gen.docCalled {
		t.Error("decoded document should reach the model")
	}

	if _, err := svc.DecodeDocument("!!not-base64!!"); err == nil {
		t.Error("expected error for invalid base64 payload")
	}
}

func TestDraftResponseMapping(t *testing.T) {
	draftID := uuid.New()
	statement := SampleStatement()

	resp := draftResponse(draftID, "sample", statement)

	if resp.DraftID != draftID.String() {
		t.Errorf("draft id = %q", resp.DraftID)
	}
	if !resp.Sample {
		t.Error("sample statement should be flagged in the response")
	}
	if len(resp.Transactions) != len(statement.Transactions) {
		t.Fatalf("transactions = %d, want %d", len(resp.Transactions), len(statement.Transactions))
	}
	for i, item := range resp.Transactions {
		if item.Index != i {
			t.Errorf("transaction %d carries index %d", i, item.Index)
		}
	}
}
