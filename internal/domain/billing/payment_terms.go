package billing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// defaultPaymentDays applies when the payment period is missing or unparseable
const defaultPaymentDays = 30

var netDaysPattern = regexp.MustCompile(`(?i)^net\s+(\d+)$`)

// PaymentTerms describes when an invoice falls due. The payment period is a
// free-text field from the source system ("Net 30", "Due on receipt", ...);
// installments optionally split the total into several due dates.
type PaymentTerms struct {
	PaymentPeriod string        `json:"payment_period"`
	Installments  []Installment `json:"installments,omitempty"`
}

// Installment is one slice of an invoice total with its own offset
type Installment struct {
	Percentage float64 `json:"percentage"`
	DaysOffset int     `json:"days_offset"`
}

// Days resolves the payment period to a day count.
// "Due on receipt" means immediately; "Net N" means N days; anything
// else falls back to 30 days.
func (t PaymentTerms) Days() int {
	period := strings.TrimSpace(t.PaymentPeriod)
	if period == "" {
		return defaultPaymentDays
	}
	if strings.EqualFold(period, "due on receipt") {
		return 0
	}
	if m := netDaysPattern.FindStringSubmatch(period); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil && days >= 0 {
			return days
		}
	}
	return defaultPaymentDays
}

// DueDate returns the date the invoice falls due
func (t PaymentTerms) DueDate(invoiceDate time.Time) time.Time {
	return invoiceDate.AddDate(0, 0, t.Days())
}
