package banking

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// balanceTolerance absorbs rounding noise from parsed statements
var balanceTolerance = decimal.NewFromFloat(0.01)

// ValidationResult is the outcome of checking a statement's arithmetic
type ValidationResult struct {
	Status            ValidationStatus `json:"status"`
	CalculatedBalance decimal.Decimal  `json:"calculated_balance"`
	Discrepancy       decimal.Decimal  `json:"discrepancy"`
	TotalCredits      decimal.Decimal  `json:"total_credits"`
	TotalDebits       decimal.Decimal  `json:"total_debits"`
	Notes             string           `json:"notes"`
}

// ValidateBalance checks that starting balance plus credits minus debits
// equals the reported ending balance within tolerance. Nil transaction
// amounts count as zero; legitimate data never produces an error.
func ValidateBalance(starting, ending decimal.Decimal, txns []Transaction) ValidationResult {
	totalCredits := decimal.Zero
	totalDebits := decimal.Zero
	for i := range txns {
		totalCredits = totalCredits.Add(txns[i].Credit())
		totalDebits = totalDebits.Add(txns[i].Debit())
	}

	calculated := starting.Add(totalCredits).Sub(totalDebits)
	discrepancy := ending.Sub(calculated).Abs()

	result := ValidationResult{
		CalculatedBalance: calculated,
		Discrepancy:       discrepancy,
		TotalCredits:      totalCredits,
		TotalDebits:       totalDebits,
	}

	if discrepancy.LessThanOrEqual(balanceTolerance) {
		result.Status = ValidationPassed
		result.Notes = "Balance validation passed"
		return result
	}

	result.Status = ValidationFailed
	result.Notes = fmt.Sprintf(
		"Calculated balance %s differs from reported ending balance %s by %s",
		calculated.StringFixed(2), ending.StringFixed(2), discrepancy.StringFixed(2),
	)
	return result
}
