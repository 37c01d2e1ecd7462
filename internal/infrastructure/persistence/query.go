package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/qayed/backend/internal/domain/shared"
)

// asDomainErr translates gorm's not-found sentinel into the shared
// domain error; anything else passes through untouched.
func asDomainErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// requireRows converts a zero-row write result into ErrNotFound.
func requireRows(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// pageAndOrder applies the filter's page window and ordering.
// defaultOrder takes over when the caller did not pick a column.
func pageAndOrder(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if filter.OrderBy == "" {
		return query.Order(defaultOrder)
	}
	dir := "ASC"
	if strings.EqualFold(filter.OrderDir, "desc") {
		dir = "DESC"
	}
	return query.Order(filter.OrderBy + " " + dir)
}

// fromModels maps a slice of persistence models onto domain values.
func fromModels[M, D any](ms []M, toDomain func(*M) *D) []D {
	out := make([]D, len(ms))
	for i := range ms {
		out[i] = *toDomain(&ms[i])
	}
	return out
}
