package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	matchingapp "github.com/qayed/backend/internal/application/matching"
)

// MatchHandler handles transaction-invoice match review API endpoints
type MatchHandler struct {
	BaseHandler
	matchService *matchingapp.MatchService
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(matchService *matchingapp.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// List godoc
// @ID           listMatches
// @Summary      List matches in the review queue
// @Tags         matching
// @Produce      json
// @Param        status query string false "Match status" Enums(PENDING, APPROVED, REJECTED, DISPUTED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]matchingapp.MatchResponse]
// @Security     BearerAuth
// @Router       /matching/matches [get]
func (h *MatchHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	if status := c.Query("status"); status != "" {
		filter.Filters = map[string]interface{}{"status": status}
	}

	matches, total, err := h.matchService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, matches, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getMatchById
// @Summary      Get match by ID
// @Tags         matching
// @Produce      json
// @Param        id path string true "Match ID" format(uuid)
// @Success      200 {object} APIResponse[matchingapp.MatchResponse]
// @Security     BearerAuth
// @Router       /matching/matches/{id} [get]
func (h *MatchHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid match ID format")
		return
	}

	match, err := h.matchService.GetByID(c.Request.Context(), companyID, matchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, match)
}

// Approve godoc
// @ID           approveMatch
// @Summary      Approve a pending match
// @Tags         matching
// @Produce      json
// @Param        id path string true "Match ID" format(uuid)
// @Success      200 {object} APIResponse[matchingapp.MatchResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /matching/matches/{id}/approve [post]
func (h *MatchHandler) Approve(c *gin.Context) {
	h.review(c, h.matchService.Approve)
}

// Reject godoc
// @ID           rejectMatch
// @Summary      Reject a pending match
// @Tags         matching
// @Produce      json
// @Param        id path string true "Match ID" format(uuid)
// @Success      200 {object} APIResponse[matchingapp.MatchResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /matching/matches/{id}/reject [post]
func (h *MatchHandler) Reject(c *gin.Context) {
	h.review(c, h.matchService.Reject)
}

// Dispute godoc
// @ID           disputeMatch
// @Summary      Dispute a pending match
// @Tags         matching
// @Produce      json
// @Param        id path string true "Match ID" format(uuid)
// @Success      200 {object} APIResponse[matchingapp.MatchResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /matching/matches/{id}/dispute [post]
func (h *MatchHandler) Dispute(c *gin.Context) {
	h.review(c, h.matchService.Dispute)
}

// review runs one reviewer decision against a match. The reviewer is taken
// from the JWT claims.
func (h *MatchHandler) review(c *gin.Context, decide func(ctx context.Context, companyID, id, reviewerID uuid.UUID) (*matchingapp.MatchResponse, error)) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid match ID format")
		return
	}

	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Reviewer identity required")
		return
	}

	match, err := decide(c.Request.Context(), companyID, matchID, reviewerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, match)
}

// ResetRejected godoc
// @ID           resetRejectedMatches
// @Summary      Reset all rejected matches to pending
// @Tags         matching
// @Produce      json
// @Success      200 {object} APIResponse[matchingapp.ResetResponse]
// @Security     BearerAuth
// @Router       /matching/matches/reset-rejected [post]
func (h *MatchHandler) ResetRejected(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	result, err := h.matchService.ResetRejected(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Stats godoc
// @ID           matchStats
// @Summary      Summarize the match review queue
// @Tags         matching
// @Produce      json
// @Success      200 {object} APIResponse[matchingapp.StatsResponse]
// @Security     BearerAuth
// @Router       /matching/stats [get]
func (h *MatchHandler) Stats(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	stats, err := h.matchService.Stats(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
