package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// CurrencySortFields contains allowed sort fields for currencies
var CurrencySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"is_active":  true,
}

// ExchangeRateSortFields contains allowed sort fields for exchange rates
var ExchangeRateSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"base_code":      true,
	"target_code":    true,
	"rate":           true,
	"effective_date": true,
}

// RecurringPaymentSortFields contains allowed sort fields for recurring payments
var RecurringPaymentSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"amount":        true,
	"direction":     true,
	"frequency":     true,
	"start_date":    true,
	"next_due_date": true,
	"is_active":     true,
}

// StatementSortFields contains allowed sort fields for bank statements
var StatementSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"bank_name":         true,
	"account_number":    true,
	"period_start":      true,
	"period_end":        true,
	"ending_balance":    true,
	"validation_status": true,
}

// TransactionSortFields contains allowed sort fields for bank transactions
var TransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"transaction_date": true,
	"credit_amount":    true,
	"debit_amount":     true,
	"entity_name":      true,
	"category":         true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"invoice_date":   true,
	"total_amount":   true,
	"currency":       true,
	"status":         true,
}

// PartnerSortFields contains allowed sort fields for customers and suppliers
var PartnerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"country":    true,
	"is_active":  true,
}

// ProjectionSortFields contains allowed sort fields for cashflow projections
var ProjectionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"type":             true,
	"projection_date":  true,
	"projected_amount": true,
	"confidence":       true,
	"status":           true,
}

// MatchSortFields contains allowed sort fields for transaction matches
var MatchSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"match_score": true,
	"status":      true,
	"verified_at": true,
}
