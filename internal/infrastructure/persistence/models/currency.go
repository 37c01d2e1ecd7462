package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/currency"
	"github.com/shopspring/decimal"
)

// CurrencyModel is the persistence model for currencies
type CurrencyModel struct {
	AggregateModel
	Code           string `gorm:"type:varchar(3);not null;uniqueIndex"`
	Name           string `gorm:"type:varchar(100);not null"`
	Symbol         string `gorm:"type:varchar(10)"`
	IsBaseCurrency bool   `gorm:"not null;default:false"`
	DecimalPlaces  int    `gorm:"not null;default:2"`
	IsActive       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for CurrencyModel
func (CurrencyModel) TableName() string {
	return "currencies"
}

// ToDomain converts CurrencyModel to domain Currency
func (m *CurrencyModel) ToDomain() *currency.Currency {
	c := &currency.Currency{
		Code:           m.Code,
		Name:           m.Name,
		Symbol:         m.Symbol,
		IsBaseCurrency: m.IsBaseCurrency,
		DecimalPlaces:  m.DecimalPlaces,
		IsActive:       m.IsActive,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// CurrencyModelFromDomain creates a CurrencyModel from domain Currency
func CurrencyModelFromDomain(c *currency.Currency) *CurrencyModel {
	m := &CurrencyModel{
		Code:           c.Code,
		Name:           c.Name,
		Symbol:         c.Symbol,
		IsBaseCurrency: c.IsBaseCurrency,
		DecimalPlaces:  c.DecimalPlaces,
		IsActive:       c.IsActive,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// ExchangeRateModel is the persistence model for exchange rates
type ExchangeRateModel struct {
	AggregateModel
	BaseCurrencyID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_rates_pair_date,priority:1"`
	TargetCurrencyID uuid.UUID       `gorm:"type:uuid;not null;index:idx_rates_pair_date,priority:2"`
	BaseCode         string          `gorm:"type:varchar(3);not null;index"`
	TargetCode       string          `gorm:"type:varchar(3);not null;index"`
	Rate             decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	InverseRate      decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	EffectiveDate    time.Time       `gorm:"not null;index:idx_rates_pair_date,priority:3"`
	Source           string          `gorm:"type:varchar(20);not null"`
	IsActive         bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for ExchangeRateModel
func (ExchangeRateModel) TableName() string {
	return "currency_rates"
}

// ToDomain converts ExchangeRateModel to domain ExchangeRate
func (m *ExchangeRateModel) ToDomain() *currency.ExchangeRate {
	r := &currency.ExchangeRate{
		BaseCurrencyID:   m.BaseCurrencyID,
		TargetCurrencyID: m.TargetCurrencyID,
		BaseCode:         m.BaseCode,
		TargetCode:       m.TargetCode,
		Rate:             m.Rate,
		InverseRate:      m.InverseRate,
		EffectiveDate:    m.EffectiveDate,
		Source:           currency.RateSource(m.Source),
		IsActive:         m.IsActive,
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)
	return r
}

// ExchangeRateModelFromDomain creates an ExchangeRateModel from domain ExchangeRate
func ExchangeRateModelFromDomain(r *currency.ExchangeRate) *ExchangeRateModel {
	m := &ExchangeRateModel{
		BaseCurrencyID:   r.BaseCurrencyID,
		TargetCurrencyID: r.TargetCurrencyID,
		BaseCode:         r.BaseCode,
		TargetCode:       r.TargetCode,
		Rate:             r.Rate,
		InverseRate:      r.InverseRate,
		EffectiveDate:    r.EffectiveDate,
		Source:           string(r.Source),
		IsActive:         r.IsActive,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
