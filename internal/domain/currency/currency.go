// Package currency contains the currency catalog, exchange rates and the
// conversion resolver used to express amounts in the reporting currency.
package currency

import (
	"strings"

	"github.com/qayed/backend/internal/domain/shared"
)

// Currency represents a supported currency in the catalog
type Currency struct {
	shared.BaseAggregateRoot
	Code           string
	Name           string
	Symbol         string
	IsBaseCurrency bool
	DecimalPlaces  int
	IsActive       bool
}

// NewCurrency creates a new currency entry
func NewCurrency(code, name, symbol string, decimalPlaces int) (*Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return nil, shared.NewDomainError("INVALID_INPUT", "currency code must be a 3-letter ISO 4217 code")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "currency name is required")
	}
	if decimalPlaces < 0 || decimalPlaces > 6 {
		return nil, shared.NewDomainError("INVALID_INPUT", "decimal places must be between 0 and 6")
	}

	return &Currency{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		Symbol:            symbol,
		DecimalPlaces:     decimalPlaces,
		IsActive:          true,
	}, nil
}

// MarkAsBase flags this currency as the reporting base currency.
// Exactly one currency carries the flag; the repository enforces uniqueness.
func (c *Currency) MarkAsBase() {
	c.IsBaseCurrency = true
}

// Activate enables the currency for new rates and conversions
func (c *Currency) Activate() {
	c.IsActive = true
}

// Deactivate disables the currency. The base currency cannot be deactivated.
func (c *Currency) Deactivate() error {
	if c.IsBaseCurrency {
		return shared.NewDomainError("INVALID_STATE", "base currency cannot be deactivated")
	}
	c.IsActive = false
	return nil
}

// Update changes the descriptive fields
func (c *Currency) Update(name, symbol string, decimalPlaces int) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_INPUT", "currency name is required")
	}
	if decimalPlaces < 0 || decimalPlaces > 6 {
		return shared.NewDomainError("INVALID_INPUT", "decimal places must be between 0 and 6")
	}
	c.Name = strings.TrimSpace(name)
	c.Symbol = symbol
	c.DecimalPlaces = decimalPlaces
	return nil
}
