package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"bizbooks/internal/models"

	"go.uber.org/zap"
)

// SampleAccountNumber marks the placeholder statement returned when no
// document is supplied. Callers must check for it (or the [SAMPLE]
// description prefix) before treating output as real extracted data.
const (
	SampleAccountNumber = "SAMPLE-1234567890"
	SampleMarker        = "[SAMPLE] "

	defaultAccountNumber = "UNKNOWN"
	defaultBankName      = "Unknown Bank"
	defaultDescription   = "Unknown transaction"
	defaultReference     = "N/A"
)

// DocumentGenerator is the slice of the vision client the extraction gateway
// needs. Satisfied by *VisionService.
type DocumentGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithDocument(ctx context.Context, prompt string, data []byte, mimeType, fileName string) (string, error)
}

// ExtractionService is the stateless boundary that turns document bytes into
// an ExtractedStatement. A failed extraction yields no transactions; there is
// no retry and no partial result.
type ExtractionService struct {
	generator DocumentGenerator
	logger    *zap.Logger
}

func NewExtractionService(generator DocumentGenerator, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		generator: generator,
		logger:    logger,
	}
}

// rawStatement mirrors the JSON shape the prompt demands from the model.
// Numeric fields tolerate string or number values.
type rawStatement struct {
	AccountNumber   string           `json:"accountNumber"`
	BankName        string           `json:"bankName"`
	StatementPeriod rawPeriod        `json:"statementPeriod"`
	OpeningBalance  looseNumber      `json:"openingBalance"`
	ClosingBalance  looseNumber      `json:"closingBalance"`
	Transactions    []rawTransaction `json:"transactions"`
}

type rawPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type rawTransaction struct {
	Date            string      `json:"date"`
	Description     string      `json:"description"`
	DebitAmount     looseNumber `json:"debitAmount"`
	CreditAmount    looseNumber `json:"creditAmount"`
	Balance         looseNumber `json:"balance"`
	ReferenceNumber string      `json:"referenceNumber"`
	Category        string      `json:"category"`
}

// looseNumber accepts a JSON number or a numeric string (optionally carrying
// currency symbols or thousands separators) and falls back to zero on
// anything unparseable.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.NewReplacer(",", "", "₹", "", "$", "", "£", "", "€", "", " ", "").Replace(s)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseNumber(f)
	return nil
}

// Extract turns document bytes into a normalized statement. When data is
// empty it returns the marked sample statement without calling the model.
func (s *ExtractionService) Extract(ctx context.Context, data []byte, mimeType, fileName string) (*models.ExtractedStatement, error) {
	if len(data) == 0 {
		s.logger.Info("No document supplied, returning sample statement")
		return SampleStatement(), nil
	}

	// The sample path above works without a model; real documents do not.
	if s.generator == nil {
		return nil, &ConfigurationError{Setting: "GIGACHAT_API_KEY is not set"}
	}

	prompt := buildExtractionPrompt()

	var reply string
	var err error
	if mimeType == MimePDF {
		// Text-layer PDFs skip the vision round trip.
		text, pdfErr := extractPDFText(data)
		if pdfErr == nil && text != "" {
			reply, err = s.generator.Generate(ctx, prompt+"\n\nStatement text:\n"+text)
		} else {
			reply, err = s.generator.GenerateWithDocument(ctx, prompt, data, mimeType, fileName)
		}
	} else {
		reply, err = s.generator.GenerateWithDocument(ctx, prompt, data, mimeType, fileName)
	}
	if err != nil {
		return nil, err
	}

	candidate, err := locateJSONObject(reply)
	if err != nil {
		return nil, err
	}

	var raw rawStatement
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, &ParseError{Detail: err.Error()}
	}

	statement := normalizeStatement(&raw)
	s.logger.Info("Statement extracted",
		zap.String("bank", statement.BankName),
		zap.Int("transactions", len(statement.Transactions)),
	)

	return statement, nil
}

// buildExtractionPrompt fixes the target JSON shape and the closed category
// set the model must use.
func buildExtractionPrompt() string {
	var b strings.Builder
	b.WriteString("Extract every transaction line item from the attached bank statement.\n\n")
	b.WriteString("Return ONLY a JSON object with exactly this shape:\n")
	b.WriteString(`{
  "accountNumber": "string",
  "bankName": "string",
  "statementPeriod": {"from": "YYYY-MM-DD", "to": "YYYY-MM-DD"},
  "openingBalance": "number as string",
  "closingBalance": "number as string",
  "transactions": [
    {
      "date": "YYYY-MM-DD",
      "description": "string",
      "debitAmount": "non-negative number, 0 if money came in",
      "creditAmount": "non-negative number, 0 if money went out",
      "balance": "running balance after this transaction",
      "referenceNumber": "string",
      "category": "one of the categories below"
    }
  ]
}`)
	b.WriteString("\n\ncategory must be EXACTLY one of:\n")
	for _, c := range models.AllCategories {
		b.WriteString("- " + string(c) + "\n")
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Exactly one of debitAmount/creditAmount is non-zero per transaction.\n")
	b.WriteString("- Use category \"other\" when unsure.\n")
	b.WriteString("- Do NOT wrap the response in code fences or add any text outside the JSON object.\n")
	return b.String()
}

// locateJSONObject finds the first balanced {...} substring of a free-form
// model reply, tolerating prose or markdown wrapping around it.
func locateJSONObject(reply string) (string, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	start := strings.Index(reply, "{")
	if start == -1 {
		return "", &ParseError{Detail: "no JSON object in model output"}
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(reply); i++ {
		ch := reply[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return reply[start : i+1], nil
			}
		}
	}

	return "", &ParseError{Detail: "unbalanced JSON object in model output"}
}

// normalizeStatement applies field defaults and per-row coercion so every
// statement leaving the gateway satisfies the data contract regardless of
// what the model produced.
func normalizeStatement(raw *rawStatement) *models.ExtractedStatement {
	now := time.Now()

	statement := &models.ExtractedStatement{
		AccountNumber:  strings.TrimSpace(raw.AccountNumber),
		BankName:       strings.TrimSpace(raw.BankName),
		OpeningBalance: float64(raw.OpeningBalance),
		ClosingBalance: float64(raw.ClosingBalance),
	}

	if statement.AccountNumber == "" {
		statement.AccountNumber = defaultAccountNumber
	}
	if statement.BankName == "" {
		statement.BankName = defaultBankName
	}

	statement.PeriodFrom = parseDate(raw.StatementPeriod.From, now.AddDate(0, 0, -30))
	statement.PeriodTo = parseDate(raw.StatementPeriod.To, now)

	statement.Transactions = make([]models.ExtractedTransaction, 0, len(raw.Transactions))
	for _, rt := range raw.Transactions {
		statement.Transactions = append(statement.Transactions, normalizeTransaction(&rt, now))
	}

	return statement
}

func normalizeTransaction(rt *rawTransaction, now time.Time) models.ExtractedTransaction {
	tx := models.ExtractedTransaction{
		Date:            parseDate(rt.Date, now),
		Description:     strings.TrimSpace(rt.Description),
		DebitAmount:     float64(rt.DebitAmount),
		CreditAmount:    float64(rt.CreditAmount),
		Balance:         float64(rt.Balance),
		ReferenceNumber: strings.TrimSpace(rt.ReferenceNumber),
		Category:        models.ParseCategory(strings.TrimSpace(rt.Category)),
	}

	if tx.Description == "" {
		tx.Description = defaultDescription
	}
	if tx.ReferenceNumber == "" {
		tx.ReferenceNumber = defaultReference
	}

	// Amounts are non-negative by contract.
	if tx.DebitAmount < 0 {
		tx.DebitAmount = -tx.DebitAmount
	}
	if tx.CreditAmount < 0 {
		tx.CreditAmount = -tx.CreditAmount
	}

	// Debit and credit are mutually exclusive: zero the smaller when the
	// model filled both.
	if tx.DebitAmount > 0 && tx.CreditAmount > 0 {
		if tx.DebitAmount >= tx.CreditAmount {
			tx.CreditAmount = 0
		} else {
			tx.DebitAmount = 0
		}
	}

	return tx
}

// parseDate tries the layouts seen in statement documents and falls back to
// the supplied default.
func parseDate(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", "02-01-2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// SampleStatement returns the offline demonstration record. Its account
// number and descriptions are tagged so it can never be mistaken for real
// extraction output.
func SampleStatement() *models.ExtractedStatement {
	now := time.Now()
	return &models.ExtractedStatement{
		AccountNumber:  SampleAccountNumber,
		BankName:       "Demo Bank",
		PeriodFrom:     now.AddDate(0, 0, -30),
		PeriodTo:       now,
		OpeningBalance: 50000,
		ClosingBalance: 46800,
		Transactions: []models.ExtractedTransaction{
			{
				Date:            now.AddDate(0, 0, -20),
				Description:     SampleMarker + "Fuel purchase HP Petrol Pump",
				DebitAmount:     2500,
				CreditAmount:    0,
				Balance:         47500,
				ReferenceNumber: "TXN0001",
				Category:        models.CategoryFuelExpense,
			},
			{
				Date:            now.AddDate(0, 0, -12),
				Description:     SampleMarker + "Customer payment received",
				DebitAmount:     0,
				CreditAmount:    12000,
				Balance:         59500,
				ReferenceNumber: "TXN0002",
				Category:        models.CategorySalesIncome,
			},
			{
				Date:            now.AddDate(0, 0, -3),
				Description:     SampleMarker + "Office rent payment",
				DebitAmount:     12700,
				CreditAmount:    0,
				Balance:         46800,
				ReferenceNumber: "TXN0003",
				Category:        models.CategoryRentExpense,
			},
		},
	}
}

// IsSample reports whether a statement is the offline placeholder rather
// than real extraction output.
func IsSample(statement *models.ExtractedStatement) bool {
	if statement == nil {
		return false
	}
	if statement.AccountNumber == SampleAccountNumber {
		return true
	}
	if len(statement.Transactions) > 0 && strings.HasPrefix(statement.Transactions[0].Description, strings.TrimSpace(SampleMarker)) {
		return true
	}
	return false
}
