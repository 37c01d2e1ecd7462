package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/projection"
	"github.com/shopspring/decimal"
)

// ProjectionModel is the persistence model for cashflow projections.
// The (company_id, type, source_kind, source_id, projection_date) tuple
// carries a unique index (idx_projection_source, created by migration)
// so refreshes are idempotent at the database level.
type ProjectionModel struct {
	CompanyAggregateModel
	Type            string          `gorm:"type:varchar(30);not null;index"`
	ProjectionDate  time.Time       `gorm:"not null;index"`
	ProjectedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	Confidence      decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PROJECTED';index"`
	SourceKind      string          `gorm:"type:varchar(30);not null"`
	SourceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description     string          `gorm:"type:text"`
}

// TableName returns the table name for ProjectionModel
func (ProjectionModel) TableName() string {
	return "cashflow_projections"
}

// ToDomain converts ProjectionModel to domain Projection
func (m *ProjectionModel) ToDomain() *projection.Projection {
	p := &projection.Projection{
		Type:            projection.Type(m.Type),
		ProjectionDate:  m.ProjectionDate,
		ProjectedAmount: m.ProjectedAmount,
		Currency:        m.Currency,
		Confidence:      m.Confidence,
		Status:          projection.Status(m.Status),
		Source: projection.Source{
			Kind: projection.SourceKind(m.SourceKind),
			ID:   m.SourceID,
		},
		Description: m.Description,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// ProjectionModelFromDomain creates a ProjectionModel from domain Projection
func ProjectionModelFromDomain(p *projection.Projection) *ProjectionModel {
	m := &ProjectionModel{
		Type:            string(p.Type),
		ProjectionDate:  p.ProjectionDate,
		ProjectedAmount: p.ProjectedAmount,
		Currency:        p.Currency,
		Confidence:      p.Confidence,
		Status:          string(p.Status),
		SourceKind:      string(p.Source.Kind),
		SourceID:        p.Source.ID,
		Description:     p.Description,
	}
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	return m
}
