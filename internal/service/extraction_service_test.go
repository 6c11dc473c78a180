package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bizbooks/internal/models"

	"go.uber.org/zap"
)

// mockGenerator returns a canned reply or error for both generation paths.
type mockGenerator struct {
	reply string
	err   error

	lastPrompt string
	docCalled  bool
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	return m.reply, m.err
}

func (m *mockGenerator) GenerateWithDocument(ctx context.Context, prompt string, data []byte, mimeType, fileName string) (string, error) {
	m.lastPrompt = prompt
	m.docCalled = true
	return m.reply, m.err
}

func TestExtractEmptyDataReturnsSample(t *testing.T) {
	gen := &mockGenerator{}
	svc := NewExtractionService(gen, zap.NewNop())

	statement, err := svc.Extract(context.Background(), nil, "", "sample")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsSample(statement) {
		t.Error("statement with no input should be marked as sample")
	}
	if statement.AccountNumber != SampleAccountNumber {
		t.Errorf("account number = %q, want %q", statement.AccountNumber, SampleAccountNumber)
	}
	if gen.docCalled {
		t.Error("model must not be called when no document is supplied")
	}
	if len(statement.Transactions) == 0 {
		t.Fatal("sample statement should carry transactions")
	}
	for _, tx := range statement.Transactions {
		if tx.DebitAmount > 0 && tx.CreditAmount > 0 {
			t.Error("sample transactions must keep debit/credit exclusive")
		}
	}
}

func TestExtractParsesModelReply(t *testing.T) {
	// String-typed amounts exercise the loose numeric coercion.
	gen := &mockGenerator{reply: `Here is the extracted data:
{"accountNumber":"1234","bankName":"HDFC","statementPeriod":{"from":"2024-01-01","to":"2024-01-31"},"openingBalance":"1000","closingBalance":"900","transactions":[{"date":"2024-01-05","description":"FUEL","debitAmount":"100","creditAmount":"0","balance":"900","category":"fuel_expense"}]}`}
	svc := NewExtractionService(gen, zap.NewNop())

	statement, err := svc.Extract(context.Background(), jpegHeader, MimeJPEG, "scan.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if statement.AccountNumber != "1234" {
		t.Errorf("account number = %q", statement.AccountNumber)
	}
	if statement.OpeningBalance != 1000 || statement.ClosingBalance != 900 {
		t.Errorf("balances = %v/%v", statement.OpeningBalance, statement.ClosingBalance)
	}
	if len(statement.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(statement.Transactions))
	}

	tx := statement.Transactions[0]
	if tx.DebitAmount != 100 || tx.CreditAmount != 0 || tx.Balance != 900 {
		t.Errorf("amounts = %v/%v/%v, want 100/0/900", tx.DebitAmount, tx.CreditAmount, tx.Balance)
	}
	if tx.Category != models.CategoryFuelExpense {
		t.Errorf("category = %q", tx.Category)
	}
	if tx.Date.Format("2006-01-02") != "2024-01-05" {
		t.Errorf("date = %v", tx.Date)
	}
	if tx.ReferenceNumber != "N/A" {
		t.Errorf("missing reference should default to N/A, got %q", tx.ReferenceNumber)
	}
	if IsSample(statement) {
		t.Error("real extraction output must not be marked as sample")
	}
}

func TestExtractWithoutGenerator(t *testing.T) {
	svc := NewExtractionService(nil, zap.NewNop())

	// The sample path needs no model.
	if _, err := svc.Extract(context.Background(), nil, "", "sample"); err != nil {
		t.Fatalf("sample extraction should work without a model: %v", err)
	}

	// Real documents do.
	_, err := svc.Extract(context.Background(), jpegHeader, MimeJPEG, "scan.jpg")
	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestExtractUpstreamFailure(t *testing.T) {
	gen := &mockGenerator{err: &UpstreamError{Status: 503, Body: "unavailable"}}
	svc := NewExtractionService(gen, zap.NewNop())

	_, err := svc.Extract(context.Background(), jpegHeader, MimeJPEG, "scan.jpg")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestExtractUnparseableReply(t *testing.T) {
	gen := &mockGenerator{reply: "I could not read this document, sorry."}
	svc := NewExtractionService(gen, zap.NewNop())

	_, err := svc.Extract(context.Background(), jpegHeader, MimeJPEG, "scan.jpg")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestLocateJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"leading prose", `Sure, here you go: {"a":1}`, `{"a":1}`, false},
		{"trailing prose", `{"a":1} hope that helps`, `{"a":1}`, false},
		{"nested objects", `{"a":{"b":2}}`, `{"a":{"b":2}}`, false},
		{"brace inside string", `{"a":"{not a brace}"}`, `{"a":"{not a brace}"}`, false},
		{"escaped quote in string", `{"a":"say \"hi\" {"}`, `{"a":"say \"hi\" {"}`, false},
		{"no object", "no json here", "", true},
		{"unbalanced", `{"a":1`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locateJSONObject(tt.reply)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLooseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `42.5`, 42.5},
		{"numeric string", `"42.5"`, 42.5},
		{"thousands separator", `"1,234.56"`, 1234.56},
		{"currency symbol", `"₹2500"`, 2500},
		{"dollar sign", `"$99"`, 99},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"garbage", `"twelve"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n looseNumber
			if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if float64(n) != tt.want {
				t.Errorf("got %v, want %v", float64(n), tt.want)
			}
		})
	}
}

func TestNormalizeStatementDefaults(t *testing.T) {
	raw := &rawStatement{
		Transactions: []rawTransaction{{}},
	}

	statement := normalizeStatement(raw)

	if statement.AccountNumber != "UNKNOWN" {
		t.Errorf("account number = %q, want UNKNOWN", statement.AccountNumber)
	}
	if statement.BankName != "Unknown Bank" {
		t.Errorf("bank name = %q, want Unknown Bank", statement.BankName)
	}
	if !statement.PeriodTo.After(statement.PeriodFrom) {
		t.Error("default period should span a positive window")
	}

	tx := statement.Transactions[0]
	if tx.Description != "Unknown transaction" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.ReferenceNumber != "N/A" {
		t.Errorf("reference = %q", tx.ReferenceNumber)
	}
	if tx.Category != models.CategoryOther {
		t.Errorf("category = %q", tx.Category)
	}
}

func TestNormalizeTransactionAmounts(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		debit      float64
		credit     float64
		wantDebit  float64
		wantCredit float64
	}{
		{"debit only", 100, 0, 100, 0},
		{"credit only", 0, 250, 0, 250},
		{"negative debit flips", -100, 0, 100, 0},
		{"negative credit flips", 0, -250, 0, 250},
		{"both set keeps larger debit", 300, 100, 300, 0},
		{"both set keeps larger credit", 100, 300, 0, 300},
		{"both equal keeps debit", 100, 100, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &rawTransaction{
				DebitAmount:  looseNumber(tt.debit),
				CreditAmount: looseNumber(tt.credit),
			}
			tx := normalizeTransaction(rt, now)
			if tx.DebitAmount != tt.wantDebit || tx.CreditAmount != tt.wantCredit {
				t.Errorf("amounts = %v/%v, want %v/%v",
					tx.DebitAmount, tx.CreditAmount, tt.wantDebit, tt.wantCredit)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso", "2024-01-15", "2024-01-15"},
		{"slash dmy", "15/01/2024", "2024-01-15"},
		{"dash dmy", "15-01-2024", "2024-01-15"},
		{"empty falls back", "", "2024-06-01"},
		{"garbage falls back", "someday", "2024-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.in, fallback)
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("got %v, want %s", got, tt.want)
			}
		})
	}
}
