package service

import (
	"errors"
	"testing"

	"bizbooks/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestBuffer(t *testing.T) (*ReviewBuffer, uuid.UUID, uuid.UUID) {
	t.Helper()
	buffer := NewReviewBuffer(zap.NewNop())
	ownerID := uuid.New()
	draftID := buffer.Put(ownerID, "scan.jpg", SampleStatement())
	return buffer, ownerID, draftID
}

func TestReviewBufferSnapshotIsolation(t *testing.T) {
	buffer, ownerID, draftID := newTestBuffer(t)

	first, _, err := buffer.Snapshot(ownerID, draftID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the snapshot must not leak into the stored draft.
	first.Transactions[0].Description = "tampered"

	second, _, err := buffer.Snapshot(ownerID, draftID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Transactions[0].Description == "tampered" {
		t.Error("snapshot mutation leaked into the buffer")
	}
}

func TestReviewBufferOwnerScoping(t *testing.T) {
	buffer, _, draftID := newTestBuffer(t)
	stranger := uuid.New()

	if _, _, err := buffer.Snapshot(stranger, draftID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if err := buffer.Discard(stranger, draftID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if _, _, err := buffer.Snapshot(stranger, uuid.New()); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestReviewBufferSetField(t *testing.T) {
	buffer, ownerID, draftID := newTestBuffer(t)

	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
		check   func(*models.ExtractedStatement) bool
	}{
		{"account number", "account_number", "999888", false, func(s *models.ExtractedStatement) bool {
			return s.AccountNumber == "999888"
		}},
		{"bank name", "bank_name", "ICICI", false, func(s *models.ExtractedStatement) bool {
			return s.BankName == "ICICI"
		}},
		{"opening balance", "opening_balance", "1234.5", false, func(s *models.ExtractedStatement) bool {
			return s.OpeningBalance == 1234.5
		}},
		{"unparseable balance zeroes", "closing_balance", "abc", false, func(s *models.ExtractedStatement) bool {
			return s.ClosingBalance == 0
		}},
		{"unknown field", "favourite_color", "blue", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := buffer.SetField(ownerID, draftID, tt.field, tt.value)
			if tt.wantErr {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			statement, _, _ := buffer.Snapshot(ownerID, draftID)
			if !tt.check(statement) {
				t.Errorf("field %q not applied", tt.field)
			}
		})
	}
}

func TestReviewBufferSetPeriodBound(t *testing.T) {
	buffer, ownerID, draftID := newTestBuffer(t)

	if err := buffer.SetPeriodBound(ownerID, draftID, "from", "2024-01-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := buffer.SetPeriodBound(ownerID, draftID, "to", "2024-01-31"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statement, _, _ := buffer.Snapshot(ownerID, draftID)
	if statement.PeriodFrom.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("period from = %v", statement.PeriodFrom)
	}
	if statement.PeriodTo.Format("2006-01-02") != "2024-01-31" {
		t.Errorf("period to = %v", statement.PeriodTo)
	}

	if err := buffer.SetPeriodBound(ownerID, draftID, "middle", "2024-01-15"); err == nil {
		t.Error("expected error for unknown bound")
	}
}

func TestReviewBufferSetTransactionField(t *testing.T) {
	buffer, ownerID, draftID := newTestBuffer(t)

	if err := buffer.SetTransactionField(ownerID, draftID, 1, "description", "Corrected payee"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := buffer.SetTransactionField(ownerID, draftID, 1, "debit_amount", "450"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := buffer.SetTransactionField(ownerID, draftID, 1, "category", "travel_expense"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statement, _, _ := buffer.Snapshot(ownerID, draftID)

	tx := statement.Transactions[1]
	if tx.Description != "Corrected payee" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.DebitAmount != 450 {
		t.Errorf("debit = %v", tx.DebitAmount)
	}
	if tx.Category != models.CategoryTravelExpense {
		t.Errorf("category = %q", tx.Category)
	}

	// Sibling rows stay untouched.
	if statement.Transactions[0].Description == "Corrected payee" {
		t.Error("edit leaked into sibling row")
	}

	// Unknown categories degrade to other rather than failing.
	if err := buffer.SetTransactionField(ownerID, draftID, 1, "category", "no_such_thing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	statement, _, _ = buffer.Snapshot(ownerID, draftID)
	if statement.Transactions[1].Category != models.CategoryOther {
		t.Errorf("category = %q, want other", statement.Transactions[1].Category)
	}

	if err := buffer.SetTransactionField(ownerID, draftID, 99, "description", "x"); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := buffer.SetTransactionField(ownerID, draftID, -1, "description", "x"); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestReviewBufferAddAndRemoveTransaction(t *testing.T) {
	buffer, ownerID, draftID := newTestBuffer(t)

	statement, _, _ := buffer.Snapshot(ownerID, draftID)
	base := len(statement.Transactions)

	if err := buffer.AddTransaction(ownerID, draftID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statement, _, _ = buffer.Snapshot(ownerID, draftID)
	if len(statement.Transactions) != base+1 {
		t.Fatalf("transactions = %d, want %d", len(statement.Transactions), base+1)
	}

	added := statement.Transactions[base]
	if added.DebitAmount != 0 || added.CreditAmount != 0 {
		t.Error("new row should have zeroed amounts")
	}
	if added.Category != models.CategoryOther {
		t.Errorf("new row category = %q, want other", added.Category)
	}

	// Removing the first row shifts the rest down.
	second := statement.Transactions[1].Description
	if err := buffer.RemoveTransaction(ownerID, draftID, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	statement, _, _ = buffer.Snapshot(ownerID, draftID)
	if len(statement.Transactions) != base {
		t.Fatalf("transactions = %d, want %d", len(statement.Transactions), base)
	}
	if statement.Transactions[0].Description != second {
		t.Error("rows did not shift after removal")
	}

	if err := buffer.RemoveTransaction(ownerID, draftID, len(statement.Transactions)); err == nil {
		t.Error("expected error for out-of-range removal")
	}
}

func TestReviewBufferDiscard(t *testing.T) {
	buffer, ownerID, draftID := newTestBuffer(t)

	if err := buffer.Discard(ownerID, draftID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := buffer.Snapshot(ownerID, draftID); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound after discard, got %v", err)
	}
}
