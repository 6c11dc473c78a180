package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedStatement is the transient result of one extraction attempt. It
// lives in the review buffer until the user commits or discards it; it is
// never persisted as-is.
type ExtractedStatement struct {
	AccountNumber  string                 `json:"account_number"`
	BankName       string                 `json:"bank_name"`
	PeriodFrom     time.Time              `json:"period_from"`
	PeriodTo       time.Time              `json:"period_to"`
	OpeningBalance float64                `json:"opening_balance"`
	ClosingBalance float64                `json:"closing_balance"`
	Transactions   []ExtractedTransaction `json:"transactions"`
}

// ExtractedTransaction is one extracted line item. After normalization at
// most one of DebitAmount/CreditAmount is non-zero. Balance is the running
// balance as reported by the document; it is stored as-is and never
// reconciled against the debit/credit deltas.
type ExtractedTransaction struct {
	Date            time.Time `json:"date"`
	Description     string    `json:"description"`
	DebitAmount     float64   `json:"debit_amount"`
	CreditAmount    float64   `json:"credit_amount"`
	Balance         float64   `json:"balance"`
	ReferenceNumber string    `json:"reference_number"`
	Category        Category  `json:"category"`
}

// BankStatement is the persisted statement header row.
type BankStatement struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	CompanyID      uuid.UUID `db:"company_id"`
	FileName       string    `db:"file_name"`
	AccountNumber  string    `db:"account_number"`
	BankName       string    `db:"bank_name"`
	PeriodFrom     time.Time `db:"period_from"`
	PeriodTo       time.Time `db:"period_to"`
	OpeningBalance float64   `db:"opening_balance"`
	ClosingBalance float64   `db:"closing_balance"`
	Processed      bool      `db:"processed"`
	CreatedAt      time.Time `db:"created_at"`
}

// BankTransaction is a persisted transaction row referencing its header.
type BankTransaction struct {
	ID              uuid.UUID `db:"id"`
	StatementID     uuid.UUID `db:"statement_id"`
	UserID          uuid.UUID `db:"user_id"`
	Date            time.Time `db:"date"`
	Description     string    `db:"description"`
	DebitAmount     float64   `db:"debit_amount"`
	CreditAmount    float64   `db:"credit_amount"`
	Balance         float64   `db:"balance"`
	ReferenceNumber string    `db:"reference_number"`
	Category        Category  `db:"category"`
	CreatedAt       time.Time `db:"created_at"`
}
