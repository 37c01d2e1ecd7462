package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cashflowapp "github.com/qayed/backend/internal/application/cashflow"
)

// RecurringPaymentHandler handles recurring payment API endpoints
type RecurringPaymentHandler struct {
	BaseHandler
	recurringService *cashflowapp.RecurringService
}

// NewRecurringPaymentHandler creates a new RecurringPaymentHandler
func NewRecurringPaymentHandler(recurringService *cashflowapp.RecurringService) *RecurringPaymentHandler {
	return &RecurringPaymentHandler{recurringService: recurringService}
}

// Create godoc
// @ID           createRecurringPayment
// @Summary      Create a recurring payment schedule
// @Tags         cashflow
// @Accept       json
// @Produce      json
// @Param        request body cashflowapp.CreatePaymentRequest true "Recurring payment creation request"
// @Success      201 {object} APIResponse[cashflowapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /cashflow/recurring-payments [post]
func (h *RecurringPaymentHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req cashflowapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.recurringService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetByID godoc
// @ID           getRecurringPaymentById
// @Summary      Get recurring payment by ID
// @Tags         cashflow
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[cashflowapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /cashflow/recurring-payments/{id} [get]
func (h *RecurringPaymentHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.recurringService.GetByID(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @ID           listRecurringPayments
// @Summary      List recurring payments
// @Tags         cashflow
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]cashflowapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /cashflow/recurring-payments [get]
func (h *RecurringPaymentHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	payments, total, err := h.recurringService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateRecurringPayment
// @Summary      Update a recurring payment schedule
// @Tags         cashflow
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body cashflowapp.UpdatePaymentRequest true "Recurring payment update request"
// @Success      200 {object} APIResponse[cashflowapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /cashflow/recurring-payments/{id} [put]
func (h *RecurringPaymentHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req cashflowapp.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.recurringService.Update(c.Request.Context(), companyID, paymentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Activate godoc
// @ID           activateRecurringPayment
// @Summary      Activate a recurring payment
// @Tags         cashflow
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[cashflowapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /cashflow/recurring-payments/{id}/activate [post]
func (h *RecurringPaymentHandler) Activate(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.recurringService.Activate(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Deactivate godoc
// @ID           deactivateRecurringPayment
// @Summary      Deactivate a recurring payment
// @Tags         cashflow
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[cashflowapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /cashflow/recurring-payments/{id}/deactivate [post]
func (h *RecurringPaymentHandler) Deactivate(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.recurringService.Deactivate(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Delete godoc
// @ID           deleteRecurringPayment
// @Summary      Delete a recurring payment
// @Tags         cashflow
// @Param        id path string true "Payment ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /cashflow/recurring-payments/{id} [delete]
func (h *RecurringPaymentHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	if err := h.recurringService.Delete(c.Request.Context(), companyID, paymentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ProjectionHandler handles cashflow projection API endpoints
type ProjectionHandler struct {
	BaseHandler
	projectionService *cashflowapp.ProjectionService
}

// NewProjectionHandler creates a new ProjectionHandler
func NewProjectionHandler(projectionService *cashflowapp.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{projectionService: projectionService}
}

// List godoc
// @ID           listProjections
// @Summary      List cashflow projections
// @Tags         cashflow
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]cashflowapp.ProjectionResponse]
// @Security     BearerAuth
// @Router       /cashflow/projections [get]
func (h *ProjectionHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	projections, total, err := h.projectionService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, projections, total, filter.Page, filter.PageSize)
}

// Refresh godoc
// @ID           refreshProjections
// @Summary      Rebuild projections over a window
// @Description  Regenerates projection rows from invoices, recurring payments and bank obligations
// @Tags         cashflow
// @Accept       json
// @Produce      json
// @Param        request body cashflowapp.RefreshRequest true "Refresh window"
// @Success      200 {object} APIResponse[cashflowapp.RefreshResult]
// @Security     BearerAuth
// @Router       /cashflow/projections/refresh [post]
func (h *ProjectionHandler) Refresh(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req cashflowapp.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.projectionService.Refresh(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// windowQuery binds the from/until window shared by summary and positions
type windowQuery struct {
	From  string `form:"from"`
	Until string `form:"until"`
}

// resolve parses the query dates, defaulting to today plus twelve months
func (q windowQuery) resolve() (time.Time, time.Time, error) {
	from := time.Now().Truncate(24 * time.Hour)
	if q.From != "" {
		parsed, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}

	until := from.AddDate(0, 12, 0)
	if q.Until != "" {
		parsed, err := time.Parse("2006-01-02", q.Until)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		until = parsed
	}

	return from, until, nil
}

// Summary godoc
// @ID           projectionSummary
// @Summary      Summarize projections by type over a window
// @Tags         cashflow
// @Produce      json
// @Param        from query string false "Window start (YYYY-MM-DD), defaults to today"
// @Param        until query string false "Window end (YYYY-MM-DD), defaults to +12 months"
// @Success      200 {object} APIResponse[cashflowapp.SummaryResponse]
// @Security     BearerAuth
// @Router       /cashflow/projections/summary [get]
func (h *ProjectionHandler) Summary(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var q windowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	from, until, err := q.resolve()
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	summary, err := h.projectionService.Summary(c.Request.Context(), companyID, from, until)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// Positions godoc
// @ID           dailyPositions
// @Summary      Forecast daily cash positions over a window
// @Tags         cashflow
// @Produce      json
// @Param        from query string false "Window start (YYYY-MM-DD), defaults to today"
// @Param        until query string false "Window end (YYYY-MM-DD), defaults to +12 months"
// @Success      200 {object} APIResponse[[]cashflowapp.PositionResponse]
// @Security     BearerAuth
// @Router       /cashflow/positions [get]
func (h *ProjectionHandler) Positions(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var q windowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	from, until, err := q.resolve()
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	positions, err := h.projectionService.DailyPositions(c.Request.Context(), companyID, from, until)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, positions)
}
