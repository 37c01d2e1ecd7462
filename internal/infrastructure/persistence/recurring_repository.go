package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/recurring"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/persistence/models"
)

// GormRecurringPaymentRepository implements recurring.Repository using GORM
type GormRecurringPaymentRepository struct {
	db *gorm.DB
}

// NewGormRecurringPaymentRepository creates a new GormRecurringPaymentRepository
func NewGormRecurringPaymentRepository(db *gorm.DB) *GormRecurringPaymentRepository {
	return &GormRecurringPaymentRepository{db: db}
}

// FindByID finds a recurring payment by its ID
func (r *GormRecurringPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*recurring.Payment, error) {
	var model models.RecurringPaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a recurring payment by ID within a company
func (r *GormRecurringPaymentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*recurring.Payment, error) {
	var model models.RecurringPaymentModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all recurring payments matching the filter
func (r *GormRecurringPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]recurring.Payment, error) {
	return r.findAll(recurringConditions(r.db.WithContext(ctx).Model(&models.RecurringPaymentModel{}), filter), filter)
}

// FindAllForCompany finds all recurring payments for a company
func (r *GormRecurringPaymentRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]recurring.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.RecurringPaymentModel{}).Where("company_id = ?", companyID)
	return r.findAll(recurringConditions(query, filter), filter)
}

func (r *GormRecurringPaymentRepository) findAll(query *gorm.DB, filter shared.Filter) ([]recurring.Payment, error) {
	var paymentModels []models.RecurringPaymentModel
	if err := pageAndOrder(query, filter, "next_due_date ASC").Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return fromModels(paymentModels, (*models.RecurringPaymentModel).ToDomain), nil
}

// FindActiveForCompany finds every active recurring payment for a company
func (r *GormRecurringPaymentRepository) FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]recurring.Payment, error) {
	var paymentModels []models.RecurringPaymentModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_active = true", companyID).
		Order("next_due_date ASC").
		Find(&paymentModels).Error
	if err != nil {
		return nil, err
	}
	return fromModels(paymentModels, (*models.RecurringPaymentModel).ToDomain), nil
}

// Save creates or updates a recurring payment
func (r *GormRecurringPaymentRepository) Save(ctx context.Context, payment *recurring.Payment) error {
	return r.db.WithContext(ctx).Save(models.RecurringPaymentModelFromDomain(payment)).Error
}

// SaveWithLock saves a recurring payment with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormRecurringPaymentRepository) SaveWithLock(ctx context.Context, payment *recurring.Payment) error {
	model := models.RecurringPaymentModelFromDomain(payment)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The recurring payment has been modified by another transaction")
	}
	return nil
}

// Delete deletes a recurring payment
func (r *GormRecurringPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.RecurringPaymentModel{}, "id = ?", id))
}

// Count counts recurring payments matching the filter
func (r *GormRecurringPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := recurringConditions(r.db.WithContext(ctx).Model(&models.RecurringPaymentModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountForCompany counts recurring payments for a company matching the filter
func (r *GormRecurringPaymentRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.RecurringPaymentModel{}).Where("company_id = ?", companyID)
	err := recurringConditions(query, filter).Count(&count).Error
	return count, err
}

// recurringConditions translates the filter into WHERE clauses, without
// pagination or ordering.
func recurringConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "direction":
			query = query.Where("direction = ?", value)
		case "frequency":
			query = query.Where("frequency = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		case "due_before":
			query = query.Where("next_due_date <= ?", value)
		}
	}

	return query
}

// Ensure GormRecurringPaymentRepository implements recurring.Repository
var _ recurring.Repository = (*GormRecurringPaymentRepository)(nil)
