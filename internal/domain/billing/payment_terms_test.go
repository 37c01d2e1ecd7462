package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentTermsDays(t *testing.T) {
	tests := []struct {
		period string
		want   int
	}{
		{"Net 30", 30},
		{"net 45", 45},
		{"NET 7", 7},
		{"Net 0", 0},
		{"Due on receipt", 0},
		{"due on RECEIPT", 0},
		{"", 30},
		{"whenever", 30},
		{"Net abc", 30},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			terms := PaymentTerms{PaymentPeriod: tt.period}
			assert.Equal(t, tt.want, terms.Days())
		})
	}
}

func TestPaymentTermsDueDate(t *testing.T) {
	invoiceDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	terms := PaymentTerms{PaymentPeriod: "Net 30"}
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), terms.DueDate(invoiceDate))

	immediate := PaymentTerms{PaymentPeriod: "Due on receipt"}
	assert.Equal(t, invoiceDate, immediate.DueDate(invoiceDate))
}
