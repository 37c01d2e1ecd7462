package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	currencyapp "github.com/qayed/backend/internal/application/currency"
)

// CurrencyHandler handles currency catalog and exchange rate API endpoints
type CurrencyHandler struct {
	BaseHandler
	currencyService   *currencyapp.CurrencyService
	rateService       *currencyapp.RateService
	conversionService *currencyapp.ConversionService
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(
	currencyService *currencyapp.CurrencyService,
	rateService *currencyapp.RateService,
	conversionService *currencyapp.ConversionService,
) *CurrencyHandler {
	return &CurrencyHandler{
		currencyService:   currencyService,
		rateService:       rateService,
		conversionService: conversionService,
	}
}

// CreateCurrency godoc
// @ID           createCurrency
// @Summary      Add a currency to the catalog
// @Tags         currency
// @Accept       json
// @Produce      json
// @Param        request body currencyapp.CreateCurrencyRequest true "Currency creation request"
// @Success      201 {object} APIResponse[currencyapp.CurrencyResponse]
// @Security     BearerAuth
// @Router       /currency/currencies [post]
func (h *CurrencyHandler) CreateCurrency(c *gin.Context) {
	var req currencyapp.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.currencyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetCurrency godoc
// @ID           getCurrencyById
// @Summary      Get currency by ID
// @Tags         currency
// @Produce      json
// @Param        id path string true "Currency ID" format(uuid)
// @Success      200 {object} APIResponse[currencyapp.CurrencyResponse]
// @Security     BearerAuth
// @Router       /currency/currencies/{id} [get]
func (h *CurrencyHandler) GetCurrency(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid currency ID format")
		return
	}

	resp, err := h.currencyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListCurrencies godoc
// @ID           listCurrencies
// @Summary      List catalog currencies
// @Tags         currency
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]currencyapp.CurrencyResponse]
// @Security     BearerAuth
// @Router       /currency/currencies [get]
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	currencies, total, err := h.currencyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, currencies, total, filter.Page, filter.PageSize)
}

// UpdateCurrency godoc
// @ID           updateCurrency
// @Summary      Update a currency
// @Tags         currency
// @Accept       json
// @Produce      json
// @Param        id path string true "Currency ID" format(uuid)
// @Param        request body currencyapp.UpdateCurrencyRequest true "Currency update request"
// @Success      200 {object} APIResponse[currencyapp.CurrencyResponse]
// @Security     BearerAuth
// @Router       /currency/currencies/{id} [put]
func (h *CurrencyHandler) UpdateCurrency(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid currency ID format")
		return
	}

	var req currencyapp.UpdateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.currencyService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeleteCurrency godoc
// @ID           deleteCurrency
// @Summary      Deactivate a currency
// @Tags         currency
// @Param        id path string true "Currency ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /currency/currencies/{id} [delete]
func (h *CurrencyHandler) DeleteCurrency(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid currency ID format")
		return
	}

	if err := h.currencyService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateRate godoc
// @ID           createRate
// @Summary      Record an exchange rate
// @Tags         currency
// @Accept       json
// @Produce      json
// @Param        request body currencyapp.CreateRateRequest true "Rate creation request"
// @Success      201 {object} APIResponse[currencyapp.RateResponse]
// @Security     BearerAuth
// @Router       /currency/rates [post]
func (h *CurrencyHandler) CreateRate(c *gin.Context) {
	var req currencyapp.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.rateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetRate godoc
// @ID           getRateById
// @Summary      Get exchange rate by ID
// @Tags         currency
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Success      200 {object} APIResponse[currencyapp.RateResponse]
// @Security     BearerAuth
// @Router       /currency/rates/{id} [get]
func (h *CurrencyHandler) GetRate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate ID format")
		return
	}

	resp, err := h.rateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListRates godoc
// @ID           listRates
// @Summary      List exchange rates
// @Tags         currency
// @Produce      json
// @Param        latest query bool false "Return only the latest rate per pair"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]currencyapp.RateResponse]
// @Security     BearerAuth
// @Router       /currency/rates [get]
func (h *CurrencyHandler) ListRates(c *gin.Context) {
	if c.Query("latest") == "true" {
		rates, err := h.rateService.ListLatest(c.Request.Context())
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, rates)
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	rates, total, err := h.rateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, rates, total, filter.Page, filter.PageSize)
}

// UpdateRate godoc
// @ID           updateRate
// @Summary      Correct a recorded exchange rate
// @Tags         currency
// @Accept       json
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Param        request body currencyapp.UpdateRateRequest true "Rate update request"
// @Success      200 {object} APIResponse[currencyapp.RateResponse]
// @Security     BearerAuth
// @Router       /currency/rates/{id} [put]
func (h *CurrencyHandler) UpdateRate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate ID format")
		return
	}

	var req currencyapp.UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.rateService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeleteRate godoc
// @ID           deleteRate
// @Summary      Deactivate an exchange rate
// @Tags         currency
// @Param        id path string true "Rate ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /currency/rates/{id} [delete]
func (h *CurrencyHandler) DeleteRate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate ID format")
		return
	}

	if err := h.rateService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ConvertQuery represents the query parameters for a conversion
type ConvertQuery struct {
	Amount float64 `form:"amount" binding:"required"`
	From   string  `form:"from" binding:"required,len=3"`
	To     string  `form:"to" binding:"required,len=3"`
	Date   string  `form:"date"`
}

// Convert godoc
// @ID           convertCurrency
// @Summary      Convert an amount between currencies
// @Description  Resolves identity, direct, inverse or cross rates as of a date
// @Tags         currency
// @Produce      json
// @Param        amount query number true "Amount to convert"
// @Param        from query string true "Source currency code"
// @Param        to query string true "Target currency code"
// @Param        date query string false "Effective date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[currencyapp.ConversionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /currency/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	var q ConvertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	asOf := time.Now()
	if q.Date != "" {
		parsed, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	amount := decimal.NewFromFloat(q.Amount)
	resp, err := h.conversionService.Convert(c.Request.Context(), amount, q.From, q.To, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
