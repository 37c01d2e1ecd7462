package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/currency"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/persistence/models"
)

// GormCurrencyRepository implements currency.Repository using GORM
type GormCurrencyRepository struct {
	db *gorm.DB
}

// NewGormCurrencyRepository creates a new GormCurrencyRepository
func NewGormCurrencyRepository(db *gorm.DB) *GormCurrencyRepository {
	return &GormCurrencyRepository{db: db}
}

// FindByID finds a currency by its ID
func (r *GormCurrencyRepository) FindByID(ctx context.Context, id uuid.UUID) (*currency.Currency, error) {
	var model models.CurrencyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a currency by its ISO code
func (r *GormCurrencyRepository) FindByCode(ctx context.Context, code string) (*currency.Currency, error) {
	var model models.CurrencyModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindBase finds the base currency
func (r *GormCurrencyRepository) FindBase(ctx context.Context) (*currency.Currency, error) {
	var model models.CurrencyModel
	err := r.db.WithContext(ctx).
		Where("is_base_currency = true").
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindActive finds all active currencies
func (r *GormCurrencyRepository) FindActive(ctx context.Context) ([]currency.Currency, error) {
	var currencyModels []models.CurrencyModel
	err := r.db.WithContext(ctx).
		Where("is_active = true").
		Order("code ASC").
		Find(&currencyModels).Error
	if err != nil {
		return nil, err
	}
	return fromModels(currencyModels, (*models.CurrencyModel).ToDomain), nil
}

// FindAll finds all currencies matching the filter
func (r *GormCurrencyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]currency.Currency, error) {
	var currencyModels []models.CurrencyModel
	query := currencyConditions(r.db.WithContext(ctx).Model(&models.CurrencyModel{}), filter)
	if err := pageAndOrder(query, filter, "code ASC").Find(&currencyModels).Error; err != nil {
		return nil, err
	}
	return fromModels(currencyModels, (*models.CurrencyModel).ToDomain), nil
}

// Save creates or updates a currency
func (r *GormCurrencyRepository) Save(ctx context.Context, c *currency.Currency) error {
	return r.db.WithContext(ctx).Save(models.CurrencyModelFromDomain(c)).Error
}

// Delete deletes a currency
func (r *GormCurrencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.CurrencyModel{}, "id = ?", id))
}

// Count counts currencies matching the filter
func (r *GormCurrencyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := currencyConditions(r.db.WithContext(ctx).Model(&models.CurrencyModel{}), filter).
		Count(&count).Error
	return count, err
}

// currencyConditions translates the filter into WHERE clauses, without
// pagination or ordering.
func currencyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "is_base_currency":
			query = query.Where("is_base_currency = ?", value)
		}
	}

	return query
}

// GormExchangeRateRepository implements currency.RateRepository using GORM
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// FindByID finds an exchange rate by its ID
func (r *GormExchangeRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*currency.ExchangeRate, error) {
	var model models.ExchangeRateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindEffective finds the most recent active rate for the pair whose
// effective date is on or before asOf
func (r *GormExchangeRateRepository) FindEffective(ctx context.Context, baseCode, targetCode string, asOf time.Time) (*currency.ExchangeRate, error) {
	var model models.ExchangeRateModel
	err := r.db.WithContext(ctx).
		Where("base_code = ? AND target_code = ? AND effective_date <= ? AND is_active = true",
			strings.ToUpper(baseCode), strings.ToUpper(targetCode), asOf).
		Order("effective_date DESC").
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindLatestPerPair returns the newest active rate for every currency pair
func (r *GormExchangeRateRepository) FindLatestPerPair(ctx context.Context) ([]currency.ExchangeRate, error) {
	var rateModels []models.ExchangeRateModel
	err := r.db.WithContext(ctx).
		Where("is_active = true AND (base_code, target_code, effective_date) IN (?)",
			r.db.Model(&models.ExchangeRateModel{}).
				Select("base_code, target_code, MAX(effective_date)").
				Where("is_active = true").
				Group("base_code, target_code"),
		).
		Order("base_code ASC, target_code ASC").
		Find(&rateModels).Error
	if err != nil {
		return nil, err
	}
	return fromModels(rateModels, (*models.ExchangeRateModel).ToDomain), nil
}

// FindAll finds all exchange rates matching the filter
func (r *GormExchangeRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]currency.ExchangeRate, error) {
	var rateModels []models.ExchangeRateModel
	query := rateConditions(r.db.WithContext(ctx).Model(&models.ExchangeRateModel{}), filter)
	if err := pageAndOrder(query, filter, "effective_date DESC").Find(&rateModels).Error; err != nil {
		return nil, err
	}
	return fromModels(rateModels, (*models.ExchangeRateModel).ToDomain), nil
}

// Save creates or updates an exchange rate
func (r *GormExchangeRateRepository) Save(ctx context.Context, rate *currency.ExchangeRate) error {
	return r.db.WithContext(ctx).Save(models.ExchangeRateModelFromDomain(rate)).Error
}

// Delete deletes an exchange rate
func (r *GormExchangeRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.ExchangeRateModel{}, "id = ?", id))
}

// Count counts exchange rates matching the filter
func (r *GormExchangeRateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := rateConditions(r.db.WithContext(ctx).Model(&models.ExchangeRateModel{}), filter).
		Count(&count).Error
	return count, err
}

// rateConditions translates the filter into WHERE clauses, without
// pagination or ordering.
func rateConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "base_code":
			query = query.Where("base_code = ?", value)
		case "target_code":
			query = query.Where("target_code = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		}
	}

	return query
}

// Ensure the repositories implement their interfaces
var _ currency.Repository = (*GormCurrencyRepository)(nil)
var _ currency.RateRepository = (*GormExchangeRateRepository)(nil)
