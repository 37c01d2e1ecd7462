package ai

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		open     byte
		closing  byte
		expected string
	}{
		{
			name:     "plain array untouched",
			raw:      `[{"date":"2026-01-01"}]`,
			open:     '[',
			closing:  ']',
			expected: `[{"date":"2026-01-01"}]`,
		},
		{
			name:     "json code fence stripped",
			raw:      "```json\n[{\"amount\": 10}]\n```",
			open:     '[',
			closing:  ']',
			expected: `[{"amount": 10}]`,
		},
		{
			name:     "bare code fence stripped",
			raw:      "```\n{\"bank_name\": \"SNB\"}\n```",
			open:     '{',
			closing:  '}',
			expected: `{"bank_name": "SNB"}`,
		},
		{
			name:     "surrounding prose removed",
			raw:      "Here is the extracted data:\n[{\"amount\": -5}]\nLet me know if you need more.",
			open:     '[',
			closing:  ']',
			expected: `[{"amount": -5}]`,
		},
		{
			name:     "leading and trailing whitespace trimmed",
			raw:      "  \n {\"currency\": \"SAR\"} \n ",
			open:     '{',
			closing:  '}',
			expected: `{"currency": "SAR"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanModelJSON(tt.raw, tt.open, tt.closing))
		})
	}
}

func TestParseTransactionsResponse(t *testing.T) {
	raw := "```json\n" + `[
		{"date": "2026-02-03", "description": "SALARY FEB", "entity_name": "Acme LLC", "amount": 25000.50, "currency": "SAR", "category": "salary"},
		{"date": "2026-02-10", "description": "RENT", "entity_name": "", "amount": -8000, "currency": "SAR", "category": null}
	]` + "\n```"

	txns, err := parseTransactionsResponse(raw)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "SALARY FEB", txns[0].Description)
	assert.Equal(t, "Acme LLC", txns[0].EntityName)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromFloat(25000.50)))
	require.NotNil(t, txns[0].Category)
	assert.Equal(t, "salary", *txns[0].Category)

	assert.True(t, txns[1].Amount.Equal(decimal.NewFromInt(-8000)))
	assert.Nil(t, txns[1].Category)
}

func TestParseTransactionsResponse_EmptyPages(t *testing.T) {
	txns, err := parseTransactionsResponse("[]")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestParseTransactionsResponse_InvalidJSON(t *testing.T) {
	_, err := parseTransactionsResponse("the statement could not be read")
	assert.Error(t, err)
}

func TestParseMetadataResponse(t *testing.T) {
	raw := `{
		"bank_name": "Saudi National Bank",
		"account_number": "SA4420000001234567891234",
		"account_type": "Current Account",
		"currency": "SAR",
		"starting_balance": 120000,
		"ending_balance": 95000.25,
		"period_start": "2026-01-01",
		"period_end": "2026-01-31",
		"tenor_months": null,
		"interest_rate": null,
		"available_limit": null
	}`

	stmt, err := parseMetadataResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "Saudi National Bank", stmt.BankName)
	assert.Equal(t, "SA4420000001234567891234", stmt.AccountNumber)
	require.NotNil(t, stmt.AccountType)
	assert.Equal(t, "Current Account", *stmt.AccountType)
	assert.True(t, stmt.EndingBalance.Equal(decimal.NewFromFloat(95000.25)))
	assert.Nil(t, stmt.TenorMonths)

	start, end, err := stmt.Period()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestParseMetadataResponse_MissingIdentity(t *testing.T) {
	_, err := parseMetadataResponse(`{"bank_name": "", "account_number": ""}`)
	assert.ErrorContains(t, err, "missing bank name or account number")
}

func TestParseMetadataResponse_FacilityTerms(t *testing.T) {
	raw := "```\n" + `{
		"bank_name": "Riyad Bank",
		"account_number": "9988776655",
		"account_type": "Term Loan",
		"currency": "SAR",
		"starting_balance": -500000,
		"ending_balance": -450000,
		"period_start": "2026-03-01",
		"period_end": "2026-03-31",
		"tenor_months": 36,
		"interest_rate": 6.5,
		"available_limit": 50000
	}` + "\n```"

	stmt, err := parseMetadataResponse(raw)
	require.NoError(t, err)

	require.NotNil(t, stmt.TenorMonths)
	assert.Equal(t, 36, *stmt.TenorMonths)
	require.NotNil(t, stmt.InterestRate)
	assert.True(t, stmt.InterestRate.Equal(decimal.NewFromFloat(6.5)))
	assert.True(t, stmt.EndingBalance.IsNegative())
}

func TestExtractedTransaction_Amounts(t *testing.T) {
	tests := []struct {
		name       string
		amount     decimal.Decimal
		wantCredit *decimal.Decimal
		wantDebit  *decimal.Decimal
	}{
		{
			name:       "positive amount is a credit",
			amount:     decimal.NewFromInt(100),
			wantCredit: decimalPtr(decimal.NewFromInt(100)),
		},
		{
			name:      "negative amount is a debit of its magnitude",
			amount:    decimal.NewFromFloat(-42.75),
			wantDebit: decimalPtr(decimal.NewFromFloat(42.75)),
		},
		{
			name:   "zero amount sets neither side",
			amount: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := ExtractedTransaction{Amount: tt.amount}
			credit, debit := txn.Amounts()

			if tt.wantCredit != nil {
				require.NotNil(t, credit)
				assert.True(t, credit.Equal(*tt.wantCredit))
			} else {
				assert.Nil(t, credit)
			}
			if tt.wantDebit != nil {
				require.NotNil(t, debit)
				assert.True(t, debit.Equal(*tt.wantDebit))
			} else {
				assert.Nil(t, debit)
			}
		})
	}
}

func TestExtractedTransaction_ParsedDate(t *testing.T) {
	txn := ExtractedTransaction{Date: "2026-04-15"}
	d, err := txn.ParsedDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), d)

	txn.Date = "15/04/2026"
	_, err = txn.ParsedDate()
	assert.Error(t, err)
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
