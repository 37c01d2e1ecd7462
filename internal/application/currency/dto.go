package currency

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qayed/backend/internal/domain/currency"
)

// CreateCurrencyRequest is the payload for adding a currency to the catalog
type CreateCurrencyRequest struct {
	Code          string `json:"code" binding:"required,len=3"`
	Name          string `json:"name" binding:"required"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int    `json:"decimal_places" binding:"min=0,max=6"`
	IsBase        bool   `json:"is_base"`
}

// UpdateCurrencyRequest is the payload for changing a currency's fields
type UpdateCurrencyRequest struct {
	Name          string `json:"name" binding:"required"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int    `json:"decimal_places" binding:"min=0,max=6"`
	IsActive      *bool  `json:"is_active"`
}

// CurrencyResponse is the API shape of a catalog currency
type CurrencyResponse struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	IsBaseCurrency bool      `json:"is_base_currency"`
	DecimalPlaces  int       `json:"decimal_places"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToCurrencyResponse maps a domain currency to its API shape
func ToCurrencyResponse(c *currency.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:             c.ID,
		Code:           c.Code,
		Name:           c.Name,
		Symbol:         c.Symbol,
		IsBaseCurrency: c.IsBaseCurrency,
		DecimalPlaces:  c.DecimalPlaces,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// CreateRateRequest is the payload for recording an exchange rate
type CreateRateRequest struct {
	BaseCode      string          `json:"base_code" binding:"required,len=3"`
	TargetCode    string          `json:"target_code" binding:"required,len=3"`
	Rate          decimal.Decimal `json:"rate" binding:"required"`
	EffectiveDate time.Time       `json:"effective_date" binding:"required"`
	Source        string          `json:"source"`
}

// UpdateRateRequest is the payload for correcting a recorded rate
type UpdateRateRequest struct {
	Rate     decimal.Decimal `json:"rate" binding:"required"`
	IsActive *bool           `json:"is_active"`
}

// RateResponse is the API shape of an exchange rate
type RateResponse struct {
	ID            uuid.UUID       `json:"id"`
	BaseCode      string          `json:"base_code"`
	TargetCode    string          `json:"target_code"`
	Rate          decimal.Decimal `json:"rate"`
	InverseRate   decimal.Decimal `json:"inverse_rate"`
	EffectiveDate time.Time       `json:"effective_date"`
	Source        string          `json:"source"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToRateResponse maps a domain exchange rate to its API shape
func ToRateResponse(r *currency.ExchangeRate) RateResponse {
	return RateResponse{
		ID:            r.ID,
		BaseCode:      r.BaseCode,
		TargetCode:    r.TargetCode,
		Rate:          r.Rate,
		InverseRate:   r.InverseRate,
		EffectiveDate: r.EffectiveDate,
		Source:        string(r.Source),
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
	}
}

// ConversionResponse is the API shape of a conversion result
type ConversionResponse struct {
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	Path            string          `json:"path"`
	EffectiveDate   time.Time       `json:"effective_date"`
	Cached          bool            `json:"cached"`
}

// ToConversionResponse maps a conversion result to its API shape
func ToConversionResponse(c *currency.Conversion, cached bool) ConversionResponse {
	return ConversionResponse{
		OriginalAmount:  c.OriginalAmount,
		ConvertedAmount: c.ConvertedAmount,
		FromCurrency:    c.FromCurrency,
		ToCurrency:      c.ToCurrency,
		ExchangeRate:    c.ExchangeRate,
		Path:            string(c.Path),
		EffectiveDate:   c.EffectiveDate,
		Cached:          cached,
	}
}
