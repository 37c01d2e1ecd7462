package models

import (
	"github.com/qayed/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for customers
type CustomerModel struct {
	CompanyAggregateModel
	Name                string `gorm:"type:varchar(300);not null;index"`
	Country             string `gorm:"type:varchar(100)"`
	ContactEmail        string `gorm:"type:varchar(300)"`
	DefaultPaymentTerms string `gorm:"type:varchar(100)"`
	IsActive            bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for CustomerModel
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts CustomerModel to domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	c := &partner.Customer{
		Name:                m.Name,
		Country:             m.Country,
		ContactEmail:        m.ContactEmail,
		DefaultPaymentTerms: m.DefaultPaymentTerms,
		IsActive:            m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&c.CompanyAggregateRoot)
	return c
}

// CustomerModelFromDomain creates a CustomerModel from domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:                c.Name,
		Country:             c.Country,
		ContactEmail:        c.ContactEmail,
		DefaultPaymentTerms: c.DefaultPaymentTerms,
		IsActive:            c.IsActive,
	}
	m.FromDomainCompanyAggregateRoot(c.CompanyAggregateRoot)
	return m
}

// SupplierModel is the persistence model for suppliers
type SupplierModel struct {
	CompanyAggregateModel
	Name                string `gorm:"type:varchar(300);not null;index"`
	Country             string `gorm:"type:varchar(100)"`
	ContactEmail        string `gorm:"type:varchar(300)"`
	DefaultPaymentTerms string `gorm:"type:varchar(100)"`
	IsActive            bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for SupplierModel
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts SupplierModel to domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	s := &partner.Supplier{
		Name:                m.Name,
		Country:             m.Country,
		ContactEmail:        m.ContactEmail,
		DefaultPaymentTerms: m.DefaultPaymentTerms,
		IsActive:            m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&s.CompanyAggregateRoot)
	return s
}

// SupplierModelFromDomain creates a SupplierModel from domain Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		Name:                s.Name,
		Country:             s.Country,
		ContactEmail:        s.ContactEmail,
		DefaultPaymentTerms: s.DefaultPaymentTerms,
		IsActive:            s.IsActive,
	}
	m.FromDomainCompanyAggregateRoot(s.CompanyAggregateRoot)
	return m
}
