package models

import (
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// LedgerEntry is a derived bookkeeping record generated from a confirmed
// bank transaction or a paid bill. Amount is signed: credits positive,
// debits negative. TransactionID references bank_transactions and is nil
// for entries not derived from one (bill payments).
type LedgerEntry struct {
	ID            uuid.UUID  `db:"id"`
	UserID        uuid.UUID  `db:"user_id"`
	CompanyID     uuid.UUID  `db:"company_id"`
	TransactionID *uuid.UUID `db:"transaction_id"`
	Date          time.Time  `db:"date"`
	Description   string     `db:"description"`
	Amount        float64    `db:"amount"`
	Category      Category   `db:"category"`
	EntryType     EntryType  `db:"entry_type"`
	CreatedAt     time.Time  `db:"created_at"`
}
