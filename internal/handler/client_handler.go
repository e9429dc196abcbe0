package handler

import (
	"net/http"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/service"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClientHandler struct {
	clientService    service.ClientService
	dashboardService service.DashboardService
}

func NewClientHandler(clientService service.ClientService, dashboardService service.DashboardService) *ClientHandler {
	return &ClientHandler{clientService: clientService, dashboardService: dashboardService}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	clients := router.Group("/api/clients", auth)
	{
		clients.GET("/:id/dashboard", h.GetDashboard)
		clients.PUT("/:id/annual-budget", h.UpdateAnnualBudget)
	}
}

// GetDashboard returns the client dashboard summary
// @Summary      Client dashboard
// @Description  Counts, invoice totals, remaining budget and recent activity for one client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=service.DashboardSummary}
// @Failure      403  {object}  response.Response
// @Router       /api/clients/{id}/dashboard [get]
func (h *ClientHandler) GetDashboard(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid client id"))
		return
	}
	if err := service.AuthorizeClientView(actorFrom(c), clientID); err != nil {
		writeError(c, err)
		return
	}

	summary := h.dashboardService.GetClientDashboardSummary(c.Request.Context(), clientID)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// UpdateAnnualBudget sets or clears the client's annual budget
// @Summary      Update annual budget
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Client ID"
// @Param        payload  body      service.UpdateAnnualBudgetRequest  true  "Annual budget, null to clear"
// @Success      200      {object}  response.Response{data=service.ClientResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/clients/{id}/annual-budget [put]
func (h *ClientHandler) UpdateAnnualBudget(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid client id"))
		return
	}

	var req service.UpdateAnnualBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.UpdateAnnualBudget(c.Request.Context(), clientID, actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}
