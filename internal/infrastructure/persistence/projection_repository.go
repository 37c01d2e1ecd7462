package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/projection"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/persistence/models"
)

// GormProjectionRepository implements projection.Repository using GORM
type GormProjectionRepository struct {
	db *gorm.DB
}

// NewGormProjectionRepository creates a new GormProjectionRepository
func NewGormProjectionRepository(db *gorm.DB) *GormProjectionRepository {
	return &GormProjectionRepository{db: db}
}

// FindByID finds a projection by its ID
func (r *GormProjectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*projection.Projection, error) {
	var model models.ProjectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a projection by ID within a company
func (r *GormProjectionRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*projection.Projection, error) {
	var model models.ProjectionModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all projections matching the filter
func (r *GormProjectionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]projection.Projection, error) {
	return r.findAll(projectionConditions(r.db.WithContext(ctx).Model(&models.ProjectionModel{}), filter), filter)
}

// FindAllForCompany finds all projections for a company
func (r *GormProjectionRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]projection.Projection, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectionModel{}).Where("company_id = ?", companyID)
	return r.findAll(projectionConditions(query, filter), filter)
}

func (r *GormProjectionRepository) findAll(query *gorm.DB, filter shared.Filter) ([]projection.Projection, error) {
	var projectionModels []models.ProjectionModel
	if err := pageAndOrder(query, filter, "projection_date ASC").Find(&projectionModels).Error; err != nil {
		return nil, err
	}
	return fromModels(projectionModels, (*models.ProjectionModel).ToDomain), nil
}

// FindInWindow returns non-cancelled projections dated within [from, until]
func (r *GormProjectionRepository) FindInWindow(ctx context.Context, companyID uuid.UUID, from, until time.Time) ([]projection.Projection, error) {
	var projectionModels []models.ProjectionModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND projection_date >= ? AND projection_date <= ? AND status <> ?",
			companyID, from, until, projection.StatusCancelled).
		Order("projection_date ASC").
		Find(&projectionModels).Error
	if err != nil {
		return nil, err
	}
	return fromModels(projectionModels, (*models.ProjectionModel).ToDomain), nil
}

// FindBySource returns the projection for a source on a given date
func (r *GormProjectionRepository) FindBySource(ctx context.Context, companyID uuid.UUID, projType projection.Type, source projection.Source, date time.Time) (*projection.Projection, error) {
	var model models.ProjectionModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND type = ? AND source_kind = ? AND source_id = ? AND projection_date = ?",
			companyID, projType, source.Kind, source.ID, date).
		First(&model).Error
	if err != nil {
		return nil, asDomainErr(err)
	}
	return model.ToDomain(), nil
}

// DeleteProjectedInWindow removes PROJECTED entries in the window so a forced
// refresh can regenerate them from scratch
func (r *GormProjectionRepository) DeleteProjectedInWindow(ctx context.Context, companyID uuid.UUID, from, until time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND projection_date >= ? AND projection_date <= ? AND status = ?",
			companyID, from, until, projection.StatusProjected).
		Delete(&models.ProjectionModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteBySourceID removes all projections derived from a source record
func (r *GormProjectionRepository) DeleteBySourceID(ctx context.Context, companyID uuid.UUID, kind projection.SourceKind, sourceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND source_kind = ? AND source_id = ?", companyID, kind, sourceID).
		Delete(&models.ProjectionModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SummarizeByType aggregates amounts per type within the window
func (r *GormProjectionRepository) SummarizeByType(ctx context.Context, companyID uuid.UUID, from, until time.Time) ([]projection.TypeSummary, error) {
	var summaries []projection.TypeSummary
	if err := r.db.WithContext(ctx).
		Model(&models.ProjectionModel{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(projected_amount), 0) AS amount").
		Where("company_id = ? AND projection_date >= ? AND projection_date <= ? AND status <> ?",
			companyID, from, until, projection.StatusCancelled).
		Group("type").
		Order("type ASC").
		Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// Save creates or updates a projection
func (r *GormProjectionRepository) Save(ctx context.Context, p *projection.Projection) error {
	return r.db.WithContext(ctx).Save(models.ProjectionModelFromDomain(p)).Error
}

// Delete deletes a projection
func (r *GormProjectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireRows(r.db.WithContext(ctx).Delete(&models.ProjectionModel{}, "id = ?", id))
}

// Count counts projections matching the filter
func (r *GormProjectionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := projectionConditions(r.db.WithContext(ctx).Model(&models.ProjectionModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountForCompany counts projections for a company matching the filter
func (r *GormProjectionRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProjectionModel{}).Where("company_id = ?", companyID)
	err := projectionConditions(query, filter).Count(&count).Error
	return count, err
}

// projectionConditions translates the filter into WHERE clauses, without
// pagination or ordering.
func projectionConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "source_kind":
			query = query.Where("source_kind = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		case "date_from":
			query = query.Where("projection_date >= ?", value)
		case "date_until":
			query = query.Where("projection_date <= ?", value)
		}
	}

	return query
}

// Ensure GormProjectionRepository implements projection.Repository
var _ projection.Repository = (*GormProjectionRepository)(nil)
