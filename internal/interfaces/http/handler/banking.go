package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bankingapp "github.com/qayed/backend/internal/application/banking"
)

// StatementHandler handles bank statement API endpoints
type StatementHandler struct {
	BaseHandler
	statementService *bankingapp.StatementService
}

// NewStatementHandler creates a new StatementHandler
func NewStatementHandler(statementService *bankingapp.StatementService) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// Create godoc
// @ID           createStatement
// @Summary      Record a bank statement manually
// @Tags         banking
// @Accept       json
// @Produce      json
// @Param        request body bankingapp.CreateStatementRequest true "Statement creation request"
// @Success      201 {object} APIResponse[bankingapp.StatementResponse]
// @Security     BearerAuth
// @Router       /banking/statements [post]
func (h *StatementHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req bankingapp.CreateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.statementService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, statement)
}

// GetByID godoc
// @ID           getStatementById
// @Summary      Get bank statement by ID
// @Tags         banking
// @Produce      json
// @Param        id path string true "Statement ID" format(uuid)
// @Success      200 {object} APIResponse[bankingapp.StatementResponse]
// @Security     BearerAuth
// @Router       /banking/statements/{id} [get]
func (h *StatementHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.statementService.GetByID(c.Request.Context(), companyID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// List godoc
// @ID           listStatements
// @Summary      List bank statements
// @Tags         banking
// @Produce      json
// @Param        search query string false "Search term (bank name, account number)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]bankingapp.StatementResponse]
// @Security     BearerAuth
// @Router       /banking/statements [get]
func (h *StatementHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	statements, total, err := h.statementService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, statements, total, filter.Page, filter.PageSize)
}

// Validate godoc
// @ID           validateStatement
// @Summary      Run balance validation on a statement
// @Description  Checks starting balance plus credits minus debits against the ending balance
// @Tags         banking
// @Produce      json
// @Param        id path string true "Statement ID" format(uuid)
// @Success      200 {object} APIResponse[bankingapp.ValidationResponse]
// @Security     BearerAuth
// @Router       /banking/statements/{id}/validate [post]
func (h *StatementHandler) Validate(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	result, err := h.statementService.Validate(c.Request.Context(), companyID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListTransactions godoc
// @ID           listTransactions
// @Summary      List statement transactions
// @Tags         banking
// @Produce      json
// @Param        search query string false "Search term (description, entity name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]bankingapp.TransactionResponse]
// @Security     BearerAuth
// @Router       /banking/transactions [get]
func (h *StatementHandler) ListTransactions(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	transactions, total, err := h.statementService.ListTransactions(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, transactions, total, filter.Page, filter.PageSize)
}

// DocumentURL godoc
// @ID           statementDocumentUrl
// @Summary      Get a presigned download link for a statement document
// @Tags         banking
// @Produce      json
// @Param        id path string true "Statement ID" format(uuid)
// @Success      200 {object} APIResponse[bankingapp.DocumentURLResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /banking/statements/{id}/document [get]
func (h *StatementHandler) DocumentURL(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	resp, err := h.statementService.DocumentURL(c.Request.Context(), companyID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
