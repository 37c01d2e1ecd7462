package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	matchingapp "github.com/qayed/backend/internal/application/matching"
	"github.com/qayed/backend/internal/domain/matching"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/interfaces/http/dto"
)

// stubMatchRepo is an in-memory matching.Repository for handler tests
type stubMatchRepo struct {
	byID map[uuid.UUID]*matching.Match
}

func newStubMatchRepo() *stubMatchRepo {
	return &stubMatchRepo{byID: make(map[uuid.UUID]*matching.Match)}
}

func (r *stubMatchRepo) FindByID(_ context.Context, id uuid.UUID) (*matching.Match, error) {
	if m, ok := r.byID[id]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubMatchRepo) FindAll(_ context.Context, _ shared.Filter) ([]matching.Match, error) {
	out := make([]matching.Match, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubMatchRepo) Save(_ context.Context, m *matching.Match) error {
	r.byID[m.ID] = m
	return nil
}

func (r *stubMatchRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *stubMatchRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.byID)), nil
}

func (r *stubMatchRepo) CountForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, m := range r.byID {
		if m.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (r *stubMatchRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*matching.Match, error) {
	m, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *stubMatchRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]matching.Match, error) {
	var out []matching.Match
	for _, m := range r.byID {
		if m.CompanyID == companyID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMatchRepo) ResetRejected(_ context.Context, companyID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.byID {
		if m.CompanyID == companyID && m.Status == matching.MatchStatusRejected {
			if err := m.ResetToPending(); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func (r *stubMatchRepo) StatsForCompany(_ context.Context, companyID uuid.UUID) (*matching.Stats, error) {
	stats := &matching.Stats{}
	for _, m := range r.byID {
		if m.CompanyID != companyID {
			continue
		}
		stats.Total++
		switch m.Status {
		case matching.MatchStatusPending:
			stats.Pending++
		case matching.MatchStatusApproved:
			stats.Approved++
		case matching.MatchStatusRejected:
			stats.Rejected++
		case matching.MatchStatusDisputed:
			stats.Disputed++
		}
	}
	return stats, nil
}

func (r *stubMatchRepo) SaveWithLock(ctx context.Context, m *matching.Match) error {
	return r.Save(ctx, m)
}

// setupMatchRouter wires a MatchHandler behind a gin engine with the
// authenticated identity injected the way the JWT middleware would.
func setupMatchRouter(repo *stubMatchRepo, companyID, userID uuid.UUID) *gin.Engine {
	service := matchingapp.NewMatchService(repo)
	h := NewMatchHandler(service)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("jwt_company_id", companyID.String())
		if userID != uuid.Nil {
			c.Set("jwt_user_id", userID.String())
		}
		c.Next()
	})

	engine.GET("/matches", h.List)
	engine.GET("/matches/:id", h.GetByID)
	engine.POST("/matches/:id/approve", h.Approve)
	engine.POST("/matches/:id/reject", h.Reject)
	engine.POST("/matches/:id/dispute", h.Dispute)
	engine.POST("/matches/reset-rejected", h.ResetRejected)
	engine.GET("/stats", h.Stats)
	return engine
}

func seedMatch(t *testing.T, repo *stubMatchRepo, companyID uuid.UUID) *matching.Match {
	t.Helper()
	m, err := matching.NewMatch(companyID, uuid.New(), uuid.New(),
		decimal.NewFromFloat(0.87), "amount and date aligned")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), m))
	return m
}

func decodeMatchResponse(t *testing.T, w *httptest.ResponseRecorder) (dto.Response, matchingapp.MatchResponse) {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var match matchingapp.MatchResponse
	require.NoError(t, json.Unmarshal(raw, &match))
	return resp, match
}

func TestMatchHandlerList(t *testing.T) {
	companyID := uuid.New()
	repo := newStubMatchRepo()
	seedMatch(t, repo, companyID)
	seedMatch(t, repo, companyID)
	seedMatch(t, repo, uuid.New()) // other company, must not leak

	engine := setupMatchRouter(repo, companyID, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/matches", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total, "total must not include other companies")
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
}

func TestMatchHandlerGetByID(t *testing.T) {
	companyID := uuid.New()
	repo := newStubMatchRepo()
	m := seedMatch(t, repo, companyID)

	engine := setupMatchRouter(repo, companyID, uuid.New())

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/matches/"+m.ID.String(), nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		resp, match := decodeMatchResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, m.ID, match.ID)
		assert.Equal(t, string(matching.MatchStatusPending), match.Status)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/matches/"+uuid.New().String(), nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("invalid id format", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/matches/not-a-uuid", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMatchHandlerApprove(t *testing.T) {
	companyID := uuid.New()
	reviewerID := uuid.New()
	repo := newStubMatchRepo()
	m := seedMatch(t, repo, companyID)

	engine := setupMatchRouter(repo, companyID, reviewerID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/matches/"+m.ID.String()+"/approve", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp, match := decodeMatchResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, string(matching.MatchStatusApproved), match.Status)
	require.NotNil(t, match.VerifiedBy)
	assert.Equal(t, reviewerID, *match.VerifiedBy)
	assert.NotNil(t, match.VerifiedAt)
}

func TestMatchHandlerApproveNonPending(t *testing.T) {
	companyID := uuid.New()
	repo := newStubMatchRepo()
	m := seedMatch(t, repo, companyID)
	require.NoError(t, m.Reject(uuid.New()))

	engine := setupMatchRouter(repo, companyID, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/matches/"+m.ID.String()+"/approve", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
}

func TestMatchHandlerReviewRequiresIdentity(t *testing.T) {
	companyID := uuid.New()
	repo := newStubMatchRepo()
	m := seedMatch(t, repo, companyID)

	// No reviewer identity in context and no fallback header
	engine := setupMatchRouter(repo, companyID, uuid.Nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/matches/"+m.ID.String()+"/dispute", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The match must be untouched
	stored, err := repo.FindByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, matching.MatchStatusPending, stored.Status)
}

func TestMatchHandlerResetRejected(t *testing.T) {
	companyID := uuid.New()
	repo := newStubMatchRepo()
	m1 := seedMatch(t, repo, companyID)
	m2 := seedMatch(t, repo, companyID)
	seedMatch(t, repo, companyID) // stays pending
	require.NoError(t, m1.Reject(uuid.New()))
	require.NoError(t, m2.Reject(uuid.New()))

	engine := setupMatchRouter(repo, companyID, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/matches/reset-rejected", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                      `json:"success"`
		Data    matchingapp.ResetResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.Data.ResetCount)
}

func TestMatchHandlerStats(t *testing.T) {
	companyID := uuid.New()
	repo := newStubMatchRepo()
	seedMatch(t, repo, companyID)
	approved := seedMatch(t, repo, companyID)
	require.NoError(t, approved.Approve(uuid.New()))
	disputed := seedMatch(t, repo, companyID)
	require.NoError(t, disputed.Dispute(uuid.New()))

	engine := setupMatchRouter(repo, companyID, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/stats", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                      `json:"success"`
		Data    matchingapp.StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(3), resp.Data.Total)
	assert.Equal(t, int64(1), resp.Data.Pending)
	assert.Equal(t, int64(1), resp.Data.Approved)
	assert.Equal(t, int64(1), resp.Data.Disputed)
	assert.Equal(t, int64(0), resp.Data.Rejected)
}
