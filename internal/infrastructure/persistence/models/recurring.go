package models

import (
	"time"

	"github.com/qayed/backend/internal/domain/recurring"
	"github.com/shopspring/decimal"
)

// RecurringPaymentModel is the persistence model for recurring payments
type RecurringPaymentModel struct {
	CompanyAggregateModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	Direction   string          `gorm:"type:varchar(10);not null"`
	Frequency   string          `gorm:"type:varchar(20);not null"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     *time.Time
	DayOfMonth  *int
	DayOfWeek   *int
	NextDueDate time.Time `gorm:"not null;index"`
	IsActive    bool      `gorm:"not null;default:true;index"`
}

// TableName returns the table name for RecurringPaymentModel
func (RecurringPaymentModel) TableName() string {
	return "recurring_payments"
}

// ToDomain converts RecurringPaymentModel to domain Payment
func (m *RecurringPaymentModel) ToDomain() *recurring.Payment {
	p := &recurring.Payment{
		Name:        m.Name,
		Description: m.Description,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Direction:   recurring.Direction(m.Direction),
		Frequency:   recurring.Frequency(m.Frequency),
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		DayOfMonth:  m.DayOfMonth,
		DayOfWeek:   m.DayOfWeek,
		NextDueDate: m.NextDueDate,
		IsActive:    m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// RecurringPaymentModelFromDomain creates a RecurringPaymentModel from domain Payment
func RecurringPaymentModelFromDomain(p *recurring.Payment) *RecurringPaymentModel {
	m := &RecurringPaymentModel{
		Name:        p.Name,
		Description: p.Description,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Direction:   string(p.Direction),
		Frequency:   string(p.Frequency),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		DayOfMonth:  p.DayOfMonth,
		DayOfWeek:   p.DayOfWeek,
		NextDueDate: p.NextDueDate,
		IsActive:    p.IsActive,
	}
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	return m
}
