package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/billing"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements billing.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds an invoice by ID within a company
func (r *GormInvoiceRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	return r.findAll(invoiceConditions(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter), filter)
}

// FindAllForCompany finds all invoices for a company
func (r *GormInvoiceRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("company_id = ?", companyID)
	return r.findAll(invoiceConditions(query, filter), filter)
}

func (r *GormInvoiceRepository) findAll(query *gorm.DB, filter shared.Filter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := pageAndOrder(query, filter, "invoice_date DESC").Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return fromModels(invoiceModels, (*models.InvoiceModel).ToDomain), nil
}

// FindOpenForCompany returns every open invoice for the company
func (r *GormInvoiceRepository) FindOpenForCompany(ctx context.Context, companyID uuid.UUID) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, billing.InvoiceStatusOpen).
		Order("invoice_date ASC").
		Find(&invoiceModels).Error
	if err != nil {
		return nil, err
	}
	return fromModels(invoiceModels, (*models.InvoiceModel).ToDomain), nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Save(models.InvoiceModelFromDomain(invoice)).Error
}

// Delete deletes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id))
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := invoiceConditions(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountForCompany counts invoices for a company matching the filter
func (r *GormInvoiceRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("company_id = ?", companyID)
	err := invoiceConditions(query, filter).Count(&count).Error
	return count, err
}

// invoiceConditions translates the filter's search term and key/value
// pairs into WHERE clauses, without pagination or ordering.
func invoiceConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		case "date_from":
			query = query.Where("invoice_date >= ?", value)
		case "date_until":
			query = query.Where("invoice_date <= ?", value)
		case "receivables_only":
			if value == true {
				query = query.Where("customer_id IS NOT NULL")
			}
		case "payables_only":
			if value == true {
				query = query.Where("supplier_id IS NOT NULL")
			}
		}
	}

	return query
}

// Ensure GormInvoiceRepository implements billing.Repository
var _ billing.Repository = (*GormInvoiceRepository)(nil)
