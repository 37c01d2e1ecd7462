package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGormDB creates a gorm.DB backed by a mocked SQL connection
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormCurrencyRepository_FindByCode(t *testing.T) {
	t.Run("finds currency by code", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCurrencyRepository(gormDB)

		currencyID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "code", "name", "symbol", "is_base_currency", "decimal_places", "is_active"}).
			AddRow(currencyID, "EGP", "Egyptian Pound", "E£", true, 2, true)

		mock.ExpectQuery(`SELECT \* FROM "currencies" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("EGP", 1).
			WillReturnRows(rows)

		c, err := repo.FindByCode(context.Background(), "egp")

		assert.NoError(t, err)
		assert.NotNil(t, c)
		assert.Equal(t, "EGP", c.Code)
		assert.True(t, c.IsBaseCurrency)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown code", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCurrencyRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "currencies" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("XXX", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		c, err := repo.FindByCode(context.Background(), "XXX")

		assert.Error(t, err)
		assert.Nil(t, c)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExchangeRateRepository_FindEffective(t *testing.T) {
	t.Run("returns the newest rate dated on or before the given day", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormExchangeRateRepository(gormDB)

		rateID := uuid.New()
		baseID := uuid.New()
		targetID := uuid.New()
		asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		effective := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{
			"id", "base_currency_id", "target_currency_id", "base_code", "target_code",
			"rate", "inverse_rate", "effective_date", "source", "is_active",
		}).AddRow(
			rateID, baseID, targetID, "USD", "EGP",
			decimal.NewFromInt(50), decimal.NewFromFloat(0.02), effective, "MANUAL", true,
		)

		mock.ExpectQuery(`SELECT \* FROM "currency_rates" WHERE base_code = \$1 AND target_code = \$2 AND effective_date <= \$3 AND is_active = true ORDER BY effective_date DESC,.* LIMIT .*`).
			WithArgs("USD", "EGP", asOf, 1).
			WillReturnRows(rows)

		rate, err := repo.FindEffective(context.Background(), "usd", "egp", asOf)

		assert.NoError(t, err)
		assert.NotNil(t, rate)
		assert.Equal(t, "USD", rate.BaseCode)
		assert.True(t, rate.Rate.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, effective, rate.EffectiveDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when no rate covers the day", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormExchangeRateRepository(gormDB)

		asOf := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "currency_rates" WHERE base_code = \$1 AND target_code = \$2 AND effective_date <= \$3 AND is_active = true ORDER BY effective_date DESC,.* LIMIT .*`).
			WithArgs("GBP", "SAR", asOf, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		rate, err := repo.FindEffective(context.Background(), "GBP", "SAR", asOf)

		assert.Error(t, err)
		assert.Nil(t, rate)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
