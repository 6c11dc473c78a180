package service

import (
	"testing"
	"time"

	"bizbooks/internal/models"

	"github.com/google/uuid"
)

func TestPaymentEntry(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	bill := &models.Bill{
		ID:        uuid.New(),
		UserID:    userID,
		CompanyID: uuid.New(),
		Vendor:    "Apex Logistics",
		Amount:    8600,
		Category:  models.CategoryAccountsPayable,
	}

	entry := paymentEntry(userID, bill, now)

	if entry.Amount != -8600 {
		t.Errorf("amount = %v, want -8600", entry.Amount)
	}
	if entry.EntryType != models.EntryTypeDebit {
		t.Errorf("entry type = %q, want debit", entry.EntryType)
	}
	if entry.TransactionID != nil {
		t.Error("bill payment entry must not reference a bank transaction")
	}
	if entry.CompanyID != bill.CompanyID || entry.UserID != userID {
		t.Error("entry should carry the bill's company and the paying user")
	}
	if entry.Category != models.CategoryAccountsPayable {
		t.Errorf("category = %q", entry.Category)
	}
	if entry.Description != "Bill payment: Apex Logistics" {
		t.Errorf("description = %q", entry.Description)
	}
}
