package projection

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestProjection(t *testing.T, projType Type, day time.Time, amount string) *Projection {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	p, err := New(uuid.New(), projType, day, amt, "EGP", decimal.NewFromFloat(0.8),
		Source{Kind: SourceInvoice, ID: uuid.New()}, "")
	require.NoError(t, err)
	return p
}

func TestNewProjectionValidation(t *testing.T) {
	companyID := uuid.New()
	src := Source{Kind: SourceInvoice, ID: uuid.New()}

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := New(companyID, Type("WISHFUL"), date(2024, 1, 1), decimal.NewFromInt(1),
			"EGP", decimal.NewFromFloat(0.5), src, "")
		assert.Error(t, err)
	})

	t.Run("rejects missing source", func(t *testing.T) {
		_, err := New(companyID, TypeCustomerReceivable, date(2024, 1, 1), decimal.NewFromInt(1),
			"EGP", decimal.NewFromFloat(0.5), Source{}, "")
		assert.Error(t, err)
	})

	t.Run("rejects confidence out of range", func(t *testing.T) {
		_, err := New(companyID, TypeCustomerReceivable, date(2024, 1, 1), decimal.NewFromInt(1),
			"EGP", decimal.NewFromFloat(1.5), src, "")
		assert.Error(t, err)
	})

	t.Run("rejects sign mismatch", func(t *testing.T) {
		_, err := New(companyID, TypeCustomerReceivable, date(2024, 1, 1), decimal.NewFromInt(-1),
			"EGP", decimal.NewFromFloat(0.5), src, "")
		assert.Error(t, err)

		_, err = New(companyID, TypeSupplierPayable, date(2024, 1, 1), decimal.NewFromInt(1),
			"EGP", decimal.NewFromFloat(0.5), src, "")
		assert.Error(t, err)
	})
}

func TestProjectionStatusTransitions(t *testing.T) {
	p := createTestProjection(t, TypeCustomerReceivable, date(2024, 2, 1), "1000")

	require.NoError(t, p.Confirm())
	assert.Equal(t, StatusConfirmed, p.Status)

	// confirming twice is an invalid transition
	assert.Error(t, p.Confirm())

	require.NoError(t, p.Realize())
	assert.Error(t, p.Cancel())
}

func TestProjectionCancelBlocksRealize(t *testing.T) {
	p := createTestProjection(t, TypeCustomerReceivable, date(2024, 2, 1), "1000")

	require.NoError(t, p.Cancel())
	assert.Error(t, p.Realize())
}

func TestDailyPositions(t *testing.T) {
	projections := []Projection{
		*createTestProjection(t, TypeCustomerReceivable, date(2024, 1, 2), "1000"),
		*createTestProjection(t, TypeRecurringOutflow, date(2024, 1, 2), "-400"),
		*createTestProjection(t, TypeSupplierPayable, date(2024, 1, 3), "-100"),
	}

	positions := DailyPositions(decimal.NewFromInt(500), projections, date(2024, 1, 1), date(2024, 1, 3))
	require.Len(t, positions, 3)

	assert.Equal(t, "500", positions[0].OpeningBalance.String())
	assert.Equal(t, "500", positions[0].ClosingBalance.String())

	assert.Equal(t, "1000", positions[1].Inflows.String())
	assert.Equal(t, "400", positions[1].Outflows.String())
	assert.Equal(t, "1100", positions[1].ClosingBalance.String())

	assert.Equal(t, "1100", positions[2].OpeningBalance.String())
	assert.Equal(t, "1000", positions[2].ClosingBalance.String())
}

func TestDailyPositionsExcludesCancelled(t *testing.T) {
	p := createTestProjection(t, TypeCustomerReceivable, date(2024, 1, 1), "1000")
	require.NoError(t, p.Cancel())

	positions := DailyPositions(decimal.Zero, []Projection{*p}, date(2024, 1, 1), date(2024, 1, 1))
	require.Len(t, positions, 1)
	assert.True(t, positions[0].ClosingBalance.IsZero())
}

func TestDailyPositionsEmptyWindow(t *testing.T) {
	assert.Nil(t, DailyPositions(decimal.Zero, nil, date(2024, 1, 2), date(2024, 1, 1)))
}
