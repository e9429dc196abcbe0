package handler

import (
	"net/http"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/service"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/pkg/pagination"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("/api/clients/:id/invoices", auth, h.ListInvoices)
}

// ListInvoices returns a paginated list of one client's invoices
// @Summary      List client invoices
// @Description  Read-only view of invoices issued to a client, newest first, optionally filtered by status
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id      path      string  true   "Client ID"
// @Param        status  query     string  false  "Filter by status (UNPAID, PAID, PAST_DUE, OVERDUE)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      403     {object}  response.Response
// @Router       /api/clients/{id}/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid client id"))
		return
	}
	params := pagination.Parse(c)

	invoices, total, err := h.invoiceService.ListClientInvoices(c.Request.Context(), clientID, actorFrom(c), service.InvoiceListFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, "invoices", invoices, params.Meta(total)))
}
