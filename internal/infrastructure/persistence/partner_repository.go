package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/partner"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/persistence/models"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a customer by ID within a company
func (r *GormCustomerRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	return r.findAll(partnerConditions(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter), filter)
}

// FindAllForCompany finds all customers for a company
func (r *GormCustomerRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("company_id = ?", companyID)
	return r.findAll(partnerConditions(query, filter), filter)
}

func (r *GormCustomerRepository) findAll(query *gorm.DB, filter shared.Filter) ([]partner.Customer, error) {
	var customerModels []models.CustomerModel
	if err := pageAndOrder(query, filter, "name ASC").Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return fromModels(customerModels, (*models.CustomerModel).ToDomain), nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error
}

// Delete deletes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id))
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := partnerConditions(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountForCompany counts customers for a company matching the filter
func (r *GormCustomerRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("company_id = ?", companyID)
	err := partnerConditions(query, filter).Count(&count).Error
	return count, err
}

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a supplier by ID within a company
func (r *GormSupplierRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	return r.findAll(partnerConditions(r.db.WithContext(ctx).Model(&models.SupplierModel{}), filter), filter)
}

// FindAllForCompany finds all suppliers for a company
func (r *GormSupplierRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]partner.Supplier, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{}).Where("company_id = ?", companyID)
	return r.findAll(partnerConditions(query, filter), filter)
}

func (r *GormSupplierRepository) findAll(query *gorm.DB, filter shared.Filter) ([]partner.Supplier, error) {
	var supplierModels []models.SupplierModel
	if err := pageAndOrder(query, filter, "name ASC").Find(&supplierModels).Error; err != nil {
		return nil, err
	}
	return fromModels(supplierModels, (*models.SupplierModel).ToDomain), nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(models.SupplierModelFromDomain(supplier)).Error
}

// Delete deletes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.SupplierModel{}, "id = ?", id))
}

// Count counts suppliers matching the filter
func (r *GormSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := partnerConditions(r.db.WithContext(ctx).Model(&models.SupplierModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountForCompany counts suppliers for a company matching the filter
func (r *GormSupplierRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{}).Where("company_id = ?", companyID)
	err := partnerConditions(query, filter).Count(&count).Error
	return count, err
}

// partnerConditions translates the filter into WHERE clauses for a
// customer or supplier query. Both tables share the same column set.
func partnerConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR contact_email ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "country":
			query = query.Where("country = ?", value)
		}
	}

	return query
}

// Ensure the repositories implement their interfaces
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
