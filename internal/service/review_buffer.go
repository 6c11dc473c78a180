package service

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"bizbooks/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewBuffer holds extracted statements between extraction and commit so
// the user can correct them. Drafts are owner-scoped, mutex-guarded
// (single-writer), and purely in-memory: a restart loses uncommitted drafts,
// which is acceptable because nothing is persisted before commit.
type ReviewBuffer struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*draft
	logger *zap.Logger
}

type draft struct {
	ownerID   uuid.UUID
	fileName  string
	statement *models.ExtractedStatement
	createdAt time.Time
}

func NewReviewBuffer(logger *zap.Logger) *ReviewBuffer {
	return &ReviewBuffer{
		drafts: make(map[uuid.UUID]*draft),
		logger: logger,
	}
}

// Put stores a freshly extracted statement and returns its draft ID.
func (b *ReviewBuffer) Put(ownerID uuid.UUID, fileName string, statement *models.ExtractedStatement) uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	b.drafts[id] = &draft{
		ownerID:   ownerID,
		fileName:  fileName,
		statement: statement,
		createdAt: time.Now(),
	}

	b.logger.Debug("Draft stored",
		zap.String("draft_id", id.String()),
		zap.Int("transactions", len(statement.Transactions)),
	)
	return id
}

// Snapshot returns a deep copy of the draft so callers never observe
// concurrent edits.
func (b *ReviewBuffer) Snapshot(ownerID, draftID uuid.UUID) (*models.ExtractedStatement, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, err := b.get(ownerID, draftID)
	if err != nil {
		return nil, "", err
	}
	return copyStatement(d.statement), d.fileName, nil
}

// SetField replaces one top-level scalar field. Numeric fields parse-or-zero.
func (b *ReviewBuffer) SetField(ownerID, draftID uuid.UUID, field, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, err := b.get(ownerID, draftID)
	if err != nil {
		return err
	}

	switch field {
	case "account_number":
		d.statement.AccountNumber = value
	case "bank_name":
		d.statement.BankName = value
	case "opening_balance":
		d.statement.OpeningBalance = parseOrZero(value)
	case "closing_balance":
		d.statement.ClosingBalance = parseOrZero(value)
	default:
		return &ValidationError{Reason: "unknown statement field " + field}
	}
	return nil
}

// SetPeriodBound replaces one bound of the statement period.
func (b *ReviewBuffer) SetPeriodBound(ownerID, draftID uuid.UUID, bound, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, err := b.get(ownerID, draftID)
	if err != nil {
		return err
	}

	switch bound {
	case "from":
		d.statement.PeriodFrom = parseDate(value, d.statement.PeriodFrom)
	case "to":
		d.statement.PeriodTo = parseDate(value, d.statement.PeriodTo)
	default:
		return &ValidationError{Reason: "period bound must be from or to"}
	}
	return nil
}

// SetTransactionField replaces one field of the transaction at index.
// Sibling rows are never touched.
func (b *ReviewBuffer) SetTransactionField(ownerID, draftID uuid.UUID, index int, field, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, err := b.get(ownerID, draftID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(d.statement.Transactions) {
		return &ValidationError{Reason: "transaction index out of range"}
	}

	tx := &d.statement.Transactions[index]
	switch field {
	case "date":
		tx.Date = parseDate(value, tx.Date)
	case "description":
		tx.Description = value
	case "debit_amount":
		tx.DebitAmount = parseOrZero(value)
	case "credit_amount":
		tx.CreditAmount = parseOrZero(value)
	case "balance":
		tx.Balance = parseOrZero(value)
	case "reference_number":
		tx.ReferenceNumber = value
	case "category":
		tx.Category = models.ParseCategory(strings.TrimSpace(value))
	default:
		return &ValidationError{Reason: "unknown transaction field " + field}
	}
	return nil
}

// AddTransaction appends a blank row: dated today, zeroed amounts,
// category other.
func (b *ReviewBuffer) AddTransaction(ownerID, draftID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, err := b.get(ownerID, draftID)
	if err != nil {
		return err
	}

	d.statement.Transactions = append(d.statement.Transactions, models.ExtractedTransaction{
		Date:            time.Now(),
		Description:     "",
		ReferenceNumber: "",
		Category:        models.CategoryOther,
	})
	return nil
}

// RemoveTransaction removes the row at index; subsequent rows shift down.
func (b *ReviewBuffer) RemoveTransaction(ownerID, draftID uuid.UUID, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, err := b.get(ownerID, draftID)
	if err != nil {
		return err
	}
	txs := d.statement.Transactions
	if index < 0 || index >= len(txs) {
		return &ValidationError{Reason: "transaction index out of range"}
	}

	d.statement.Transactions = append(txs[:index], txs[index+1:]...)
	return nil
}

// Discard drops a draft without persisting it.
func (b *ReviewBuffer) Discard(ownerID, draftID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.get(ownerID, draftID); err != nil {
		return err
	}
	delete(b.drafts, draftID)
	return nil
}

// get must be called with the mutex held.
func (b *ReviewBuffer) get(ownerID, draftID uuid.UUID) (*draft, error) {
	d, ok := b.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if d.ownerID != ownerID {
		return nil, ErrNotOwner
	}
	return d, nil
}

func copyStatement(src *models.ExtractedStatement) *models.ExtractedStatement {
	dst := *src
	dst.Transactions = make([]models.ExtractedTransaction, len(src.Transactions))
	copy(dst.Transactions, src.Transactions)
	return &dst
}

func parseOrZero(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}
