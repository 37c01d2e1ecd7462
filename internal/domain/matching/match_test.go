package matching

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestMatch(t *testing.T) *Match {
	t.Helper()
	m, err := NewMatch(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromFloat(0.92), "amount and date match")
	require.NoError(t, err)
	return m
}

func TestNewMatch(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		m := createTestMatch(t)
		assert.Equal(t, MatchStatusPending, m.Status)
		assert.Nil(t, m.VerifiedAt)
		assert.Nil(t, m.VerifiedBy)
	})

	t.Run("rejects nil references", func(t *testing.T) {
		_, err := NewMatch(uuid.New(), uuid.Nil, uuid.New(), decimal.NewFromFloat(0.5), "")
		assert.Error(t, err)
	})

	t.Run("rejects score out of range", func(t *testing.T) {
		_, err := NewMatch(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromFloat(1.2), "")
		assert.Error(t, err)
	})
}

func TestMatchApprove(t *testing.T) {
	m := createTestMatch(t)
	reviewer := uuid.New()

	require.NoError(t, m.Approve(reviewer))
	assert.Equal(t, MatchStatusApproved, m.Status)
	require.NotNil(t, m.VerifiedAt)
	assert.Equal(t, &reviewer, m.VerifiedBy)
	require.Len(t, m.GetDomainEvents(), 1)
	assert.Equal(t, EventMatchApproved, m.GetDomainEvents()[0].EventType())
}

func TestMatchTerminalStates(t *testing.T) {
	reviewer := uuid.New()

	t.Run("approve on rejected match fails with invalid state", func(t *testing.T) {
		m := createTestMatch(t)
		require.NoError(t, m.Reject(reviewer))

		err := m.Approve(reviewer)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("approved match cannot be rejected or disputed", func(t *testing.T) {
		m := createTestMatch(t)
		require.NoError(t, m.Approve(reviewer))
		assert.Error(t, m.Reject(reviewer))
		assert.Error(t, m.Dispute(reviewer))
	})

	t.Run("disputed match cannot be approved", func(t *testing.T) {
		m := createTestMatch(t)
		require.NoError(t, m.Dispute(reviewer))
		assert.Error(t, m.Approve(reviewer))
	})
}

func TestMatchResetToPending(t *testing.T) {
	reviewer := uuid.New()

	t.Run("rejected match resets", func(t *testing.T) {
		m := createTestMatch(t)
		require.NoError(t, m.Reject(reviewer))

		require.NoError(t, m.ResetToPending())
		assert.Equal(t, MatchStatusPending, m.Status)
		assert.Nil(t, m.VerifiedAt)
		assert.Nil(t, m.VerifiedBy)
	})

	t.Run("approved match cannot reset", func(t *testing.T) {
		m := createTestMatch(t)
		require.NoError(t, m.Approve(reviewer))
		assert.Error(t, m.ResetToPending())
	})

	t.Run("pending match cannot reset", func(t *testing.T) {
		m := createTestMatch(t)
		assert.Error(t, m.ResetToPending())
	})
}
