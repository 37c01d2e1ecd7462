package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/banking"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/persistence/models"
)

// GormStatementRepository implements banking.StatementRepository using GORM
type GormStatementRepository struct {
	db *gorm.DB
}

// NewGormStatementRepository creates a new GormStatementRepository
func NewGormStatementRepository(db *gorm.DB) *GormStatementRepository {
	return &GormStatementRepository{db: db}
}

// FindByID finds a statement by its ID, transactions included
func (r *GormStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.Statement, error) {
	var model models.StatementModel
	err := r.db.WithContext(ctx).
		Preload("Transactions").
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a statement by ID within a company
func (r *GormStatementRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*banking.Statement, error) {
	var model models.StatementModel
	err := r.db.WithContext(ctx).
		Preload("Transactions").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all statements matching the filter
func (r *GormStatementRepository) FindAll(ctx context.Context, filter shared.Filter) ([]banking.Statement, error) {
	return r.findAll(statementConditions(r.db.WithContext(ctx).Model(&models.StatementModel{}), filter), filter)
}

// FindAllForCompany finds all statements for a company. Transactions are
// not preloaded on listings.
func (r *GormStatementRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]banking.Statement, error) {
	query := r.db.WithContext(ctx).Model(&models.StatementModel{}).Where("company_id = ?", companyID)
	return r.findAll(statementConditions(query, filter), filter)
}

func (r *GormStatementRepository) findAll(query *gorm.DB, filter shared.Filter) ([]banking.Statement, error) {
	var statementModels []models.StatementModel
	if err := pageAndOrder(query, filter, "period_end DESC").Find(&statementModels).Error; err != nil {
		return nil, err
	}
	return fromModels(statementModels, (*models.StatementModel).ToDomain), nil
}

// FindLatestPerAccount returns the newest statement for each account of the
// company, by statement period end
func (r *GormStatementRepository) FindLatestPerAccount(ctx context.Context, companyID uuid.UUID) ([]banking.Statement, error) {
	var statementModels []models.StatementModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND (account_number, period_end) IN (?)", companyID,
			r.db.Model(&models.StatementModel{}).
				Select("account_number, MAX(period_end)").
				Where("company_id = ?", companyID).
				Group("account_number"),
		).
		Order("account_number ASC").
		Find(&statementModels).Error
	if err != nil {
		return nil, err
	}
	return fromModels(statementModels, (*models.StatementModel).ToDomain), nil
}

// Save creates or updates a statement together with its transactions
func (r *GormStatementRepository) Save(ctx context.Context, statement *banking.Statement) error {
	return r.db.WithContext(ctx).Save(models.StatementModelFromDomain(statement)).Error
}

// SaveWithLock saves a statement with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormStatementRepository) SaveWithLock(ctx context.Context, statement *banking.Statement) error {
	model := models.StatementModelFromDomain(statement)
	result := r.db.WithContext(ctx).
		Model(model).
		Omit("Transactions").
		Where("id = ? AND version = ?", statement.ID, statement.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The statement has been modified by another transaction")
	}
	return nil
}

// Delete deletes a statement; its transactions cascade
func (r *GormStatementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.StatementModel{}, "id = ?", id))
}

// Count counts statements matching the filter
func (r *GormStatementRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := statementConditions(r.db.WithContext(ctx).Model(&models.StatementModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountForCompany counts statements for a company matching the filter
func (r *GormStatementRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.StatementModel{}).Where("company_id = ?", companyID)
	err := statementConditions(query, filter).Count(&count).Error
	return count, err
}

// statementConditions translates the filter into WHERE clauses, without
// pagination or ordering.
func statementConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("bank_name ILIKE ? OR account_number ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "account_number":
			query = query.Where("account_number = ?", value)
		case "bank_name":
			query = query.Where("bank_name = ?", value)
		case "validation_status":
			query = query.Where("validation_status = ?", value)
		case "currency":
			query = query.Where("account_currency = ?", value)
		case "period_end_after":
			query = query.Where("period_end >= ?", value)
		case "period_end_before":
			query = query.Where("period_end <= ?", value)
		}
	}

	return query
}

// GormTransactionRepository implements banking.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByStatement finds all transactions of a statement in date order
func (r *GormTransactionRepository) FindByStatement(ctx context.Context, statementID uuid.UUID) ([]banking.Transaction, error) {
	var transactionModels []models.TransactionModel
	err := r.db.WithContext(ctx).
		Where("statement_id = ?", statementID).
		Order("transaction_date ASC, created_at ASC").
		Find(&transactionModels).Error
	if err != nil {
		return nil, err
	}
	return fromModels(transactionModels, (*models.TransactionModel).ToDomain), nil
}

// FindAllForCompany finds all transactions for a company
func (r *GormTransactionRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]banking.Transaction, error) {
	var transactionModels []models.TransactionModel
	query := transactionConditions(
		r.db.WithContext(ctx).Model(&models.TransactionModel{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := pageAndOrder(query, filter, "transaction_date DESC").Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	return fromModels(transactionModels, (*models.TransactionModel).ToDomain), nil
}

// CountForCompany counts transactions for a company
func (r *GormTransactionRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Where("company_id = ?", companyID)
	err := transactionConditions(query, filter).Count(&count).Error
	return count, err
}

// transactionConditions translates the filter into WHERE clauses, without
// pagination or ordering.
func transactionConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ? OR entity_name ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "statement_id":
			query = query.Where("statement_id = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "entity_name":
			query = query.Where("entity_name = ?", value)
		case "date_from":
			query = query.Where("transaction_date >= ?", value)
		case "date_until":
			query = query.Where("transaction_date <= ?", value)
		case "credits_only":
			if value == true {
				query = query.Where("credit_amount IS NOT NULL")
			}
		case "debits_only":
			if value == true {
				query = query.Where("debit_amount IS NOT NULL")
			}
		}
	}

	return query
}

// Ensure the repositories implement their interfaces
var _ banking.StatementRepository = (*GormStatementRepository)(nil)
var _ banking.TransactionRepository = (*GormTransactionRepository)(nil)
