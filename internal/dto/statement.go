package dto

// ExtractRequest is the JSON alternative to a multipart upload: the document
// as base64, with or without a data-URL prefix.
type ExtractRequest struct {
	Document string `json:"document"`
	FileName string `json:"file_name"`
}

// DraftResponse is an extracted statement held in the review buffer.
type DraftResponse struct {
	DraftID        string                 `json:"draft_id"`
	FileName       string                 `json:"file_name"`
	Sample         bool                   `json:"sample"`
	AccountNumber  string                 `json:"account_number"`
	BankName       string                 `json:"bank_name"`
	PeriodFrom     string                 `json:"period_from"`
	PeriodTo       string                 `json:"period_to"`
	OpeningBalance float64                `json:"opening_balance"`
	ClosingBalance float64                `json:"closing_balance"`
	Transactions   []DraftTransactionItem `json:"transactions"`
}

type DraftTransactionItem struct {
	Index           int     `json:"index"`
	Date            string  `json:"date"`
	Description     string  `json:"description"`
	DebitAmount     float64 `json:"debit_amount"`
	CreditAmount    float64 `json:"credit_amount"`
	Balance         float64 `json:"balance"`
	ReferenceNumber string  `json:"reference_number"`
	Category        string  `json:"category"`
}

// UpdateDraftRequest replaces one scalar field or one period bound.
type UpdateDraftRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// UpdateTransactionRequest replaces one field of one transaction row.
type UpdateTransactionRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type StatementResponse struct {
	ID             string                `json:"id"`
	FileName       string                `json:"file_name"`
	AccountNumber  string                `json:"account_number"`
	BankName       string                `json:"bank_name"`
	PeriodFrom     string                `json:"period_from"`
	PeriodTo       string                `json:"period_to"`
	OpeningBalance float64               `json:"opening_balance"`
	ClosingBalance float64               `json:"closing_balance"`
	Processed      bool                  `json:"processed"`
	CreatedAt      string                `json:"created_at"`
	Transactions   []TransactionResponse `json:"transactions,omitempty"`
}

type TransactionResponse struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	Description     string  `json:"description"`
	DebitAmount     float64 `json:"debit_amount"`
	CreditAmount    float64 `json:"credit_amount"`
	Balance         float64 `json:"balance"`
	ReferenceNumber string  `json:"reference_number"`
	Category        string  `json:"category"`
}

type LedgerEntryResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	EntryType   string  `json:"entry_type"`
}

type CommitResponse struct {
	Statement    StatementResponse `json:"statement"`
	Transactions int               `json:"transactions"`
	LedgerRows   int               `json:"ledger_rows"`
}
