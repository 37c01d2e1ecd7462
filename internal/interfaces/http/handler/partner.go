package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qayed/backend/internal/domain/shared"

	partnerapp "github.com/qayed/backend/internal/application/partner"
)

// partnerService is implemented by both the customer and supplier
// application services; the CRUD surface is identical for the two.
type partnerService interface {
	Create(ctx context.Context, companyID uuid.UUID, req partnerapp.CreatePartnerRequest) (*partnerapp.PartnerResponse, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*partnerapp.PartnerResponse, error)
	List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]partnerapp.PartnerResponse, int64, error)
	Update(ctx context.Context, companyID, id uuid.UUID, req partnerapp.UpdatePartnerRequest) (*partnerapp.PartnerResponse, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

// partnerEndpoints carries the shared request handling; label names the
// partner kind in client-facing error messages.
type partnerEndpoints struct {
	BaseHandler
	service partnerService
	label   string
}

// partnerScope resolves the company and, when withID is set, the
// partner ID from the request. The second return reports whether the
// request was valid; errors are already written on failure.
func (h *partnerEndpoints) partnerScope(c *gin.Context, withID bool) (companyID, partnerID uuid.UUID, ok bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	if withID {
		if partnerID, err = uuid.Parse(c.Param("id")); err != nil {
			h.BadRequest(c, "Invalid "+h.label+" ID format")
			return
		}
	}
	ok = true
	return
}

func (h *partnerEndpoints) create(c *gin.Context) {
	companyID, _, ok := h.partnerScope(c, false)
	if !ok {
		return
	}

	var req partnerapp.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	partner, err := h.service.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, partner)
}

func (h *partnerEndpoints) getByID(c *gin.Context) {
	companyID, partnerID, ok := h.partnerScope(c, true)
	if !ok {
		return
	}

	partner, err := h.service.GetByID(c.Request.Context(), companyID, partnerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, partner)
}

func (h *partnerEndpoints) list(c *gin.Context) {
	companyID, _, ok := h.partnerScope(c, false)
	if !ok {
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	partners, total, err := h.service.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, partners, total, filter.Page, filter.PageSize)
}

func (h *partnerEndpoints) update(c *gin.Context) {
	companyID, partnerID, ok := h.partnerScope(c, true)
	if !ok {
		return
	}

	var req partnerapp.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	partner, err := h.service.Update(c.Request.Context(), companyID, partnerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, partner)
}

func (h *partnerEndpoints) delete(c *gin.Context) {
	companyID, partnerID, ok := h.partnerScope(c, true)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), companyID, partnerID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// CustomerHandler serves the customer endpoints.
type CustomerHandler struct {
	partnerEndpoints
}

func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{partnerEndpoints{service: customerService, label: "customer"}}
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a new customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreatePartnerRequest true "Customer creation request"
// @Success      201 {object} APIResponse[partnerapp.PartnerResponse]
// @Security     BearerAuth
// @Router       /partner/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) { h.create(c) }

// GetByID godoc
// @ID           getCustomerById
// @Summary      Get customer by ID
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.PartnerResponse]
// @Security     BearerAuth
// @Router       /partner/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) { h.getByID(c) }

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        search query string false "Search term (name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]partnerapp.PartnerResponse]
// @Security     BearerAuth
// @Router       /partner/customers [get]
func (h *CustomerHandler) List(c *gin.Context) { h.list(c) }

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body partnerapp.UpdatePartnerRequest true "Customer update request"
// @Success      200 {object} APIResponse[partnerapp.PartnerResponse]
// @Security     BearerAuth
// @Router       /partner/customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) { h.update(c) }

// Delete godoc
// @ID           deleteCustomer
// @Summary      Deactivate a customer
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /partner/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) { h.delete(c) }

// SupplierHandler serves the supplier endpoints.
type SupplierHandler struct {
	partnerEndpoints
}

func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{partnerEndpoints{service: supplierService, label: "supplier"}}
}

// Create godoc
// @ID           createSupplier
// @Summary      Create a new supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreatePartnerRequest true "Supplier creation request"
// @Success      201 {object} APIResponse[partnerapp.PartnerResponse]
// @Security     BearerAuth
// @Router       /partner/suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) { h.create(c) }

// GetByID godoc
// @ID           getSupplierById
// @Summary      Get supplier by ID
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.PartnerResponse]
// @Security     BearerAuth
// @Router       /partner/suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) { h.getByID(c) }

// List godoc
// @ID           listSuppliers
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Param        search query string false "Search term (name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]partnerapp.PartnerResponse]
// @Security     BearerAuth
// @Router       /partner/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) { h.list(c) }

// Update godoc
// @ID           updateSupplier
// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body partnerapp.UpdatePartnerRequest true "Supplier update request"
// @Success      200 {object} APIResponse[partnerapp.PartnerResponse]
// @Security     BearerAuth
// @Router       /partner/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) { h.update(c) }

// Delete godoc
// @ID           deleteSupplier
// @Summary      Deactivate a supplier
// @Tags         suppliers
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /partner/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) { h.delete(c) }
