package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/matching"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/persistence/models"
)

// GormMatchRepository implements matching.Repository using GORM
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a new GormMatchRepository
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// FindByID finds a match by its ID
func (r *GormMatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*matching.Match, error) {
	var model models.MatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a match by ID within a company
func (r *GormMatchRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*matching.Match, error) {
	var model models.MatchModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all matches matching the filter
func (r *GormMatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]matching.Match, error) {
	return r.findAll(matchConditions(r.db.WithContext(ctx).Model(&models.MatchModel{}), filter), filter)
}

// FindAllForCompany finds all matches for a company
func (r *GormMatchRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]matching.Match, error) {
	query := r.db.WithContext(ctx).Model(&models.MatchModel{}).Where("company_id = ?", companyID)
	return r.findAll(matchConditions(query, filter), filter)
}

func (r *GormMatchRepository) findAll(query *gorm.DB, filter shared.Filter) ([]matching.Match, error) {
	var matchModels []models.MatchModel
	if err := pageAndOrder(query, filter, "match_score DESC").Find(&matchModels).Error; err != nil {
		return nil, err
	}
	return fromModels(matchModels, (*models.MatchModel).ToDomain), nil
}

// ResetRejected reverts every rejected match of the company to pending and
// returns the number of affected rows. Verification fields are cleared so
// the matches re-enter the review queue clean.
func (r *GormMatchRepository) ResetRejected(ctx context.Context, companyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MatchModel{}).
		Where("company_id = ? AND status = ?", companyID, matching.MatchStatusRejected).
		Updates(map[string]interface{}{
			"status":      matching.MatchStatusPending,
			"verified_at": nil,
			"verified_by": nil,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StatsForCompany computes review-queue statistics on demand
func (r *GormMatchRepository) StatsForCompany(ctx context.Context, companyID uuid.UUID) (*matching.Stats, error) {
	var stats matching.Stats
	if err := r.db.WithContext(ctx).
		Model(&models.MatchModel{}).
		Select(
			"COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE status = 'PENDING') AS pending, "+
				"COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved, "+
				"COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected, "+
				"COUNT(*) FILTER (WHERE status = 'DISPUTED') AS disputed, "+
				"COALESCE(AVG(match_score) FILTER (WHERE status = 'PENDING'), 0) AS avg_pending_score").
		Where("company_id = ?", companyID).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// Save creates or updates a match
func (r *GormMatchRepository) Save(ctx context.Context, match *matching.Match) error {
	return r.db.WithContext(ctx).Save(models.MatchModelFromDomain(match)).Error
}

// SaveWithLock saves a match with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormMatchRepository) SaveWithLock(ctx context.Context, match *matching.Match) error {
	model := models.MatchModelFromDomain(match)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", match.ID, match.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The match has been modified by another transaction")
	}
	return nil
}

// Delete deletes a match
func (r *GormMatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.MatchModel{}, "id = ?", id))
}

// Count counts matches matching the filter
func (r *GormMatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := matchConditions(r.db.WithContext(ctx).Model(&models.MatchModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountForCompany counts matches for a company matching the filter
func (r *GormMatchRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.MatchModel{}).Where("company_id = ?", companyID)
	err := matchConditions(query, filter).Count(&count).Error
	return count, err
}

// matchConditions translates the filter into WHERE clauses, without
// pagination or ordering.
func matchConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("match_reason ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "transaction_id":
			query = query.Where("transaction_id = ?", value)
		case "invoice_id":
			query = query.Where("invoice_id = ?", value)
		case "min_score":
			query = query.Where("match_score >= ?", value)
		}
	}

	return query
}

// Ensure GormMatchRepository implements matching.Repository
var _ matching.Repository = (*GormMatchRepository)(nil)
