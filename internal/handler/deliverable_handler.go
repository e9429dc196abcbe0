package handler

import (
	"net/http"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/service"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeliverableHandler struct {
	deliverableService service.DeliverableService
}

func NewDeliverableHandler(deliverableService service.DeliverableService) *DeliverableHandler {
	return &DeliverableHandler{deliverableService: deliverableService}
}

func (h *DeliverableHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	projects := router.Group("/api/projects/:id/deliverables", auth)
	{
		projects.GET("", h.ListDeliverables)
		projects.POST("", h.CreateDeliverable)
	}

	deliverables := router.Group("/api/deliverables", auth)
	{
		deliverables.PUT("/:id", h.UpdateDeliverable)
		deliverables.PUT("/:id/status", h.SetDeliverableStatus)
	}
}

// CreateDeliverable attaches a deliverable to a project
// @Summary      Create deliverable
// @Tags         deliverables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Project ID"
// @Param        payload  body      service.CreateDeliverableRequest  true  "Deliverable"
// @Success      201      {object}  response.Response{data=service.DeliverableResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/projects/{id}/deliverables [post]
func (h *DeliverableHandler) CreateDeliverable(c *gin.Context) {
	var req service.CreateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	deliverable, err := h.deliverableService.CreateDeliverable(c.Request.Context(), c.Param("id"), actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, deliverable))
}

// ListDeliverables returns a project's deliverables with download links
// @Summary      List deliverables
// @Tags         deliverables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=[]service.DeliverableResponse}
// @Router       /api/projects/{id}/deliverables [get]
func (h *DeliverableHandler) ListDeliverables(c *gin.Context) {
	deliverables, err := h.deliverableService.ListDeliverables(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deliverables))
}

// UpdateDeliverable edits a deliverable
// @Summary      Update deliverable
// @Description  Admins may change any field; clients may only change status
// @Tags         deliverables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Deliverable ID"
// @Param        payload  body      service.UpdateDeliverableRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.DeliverableResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/deliverables/{id} [put]
func (h *DeliverableHandler) UpdateDeliverable(c *gin.Context) {
	var req service.UpdateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	deliverable, err := h.deliverableService.UpdateDeliverable(c.Request.Context(), c.Param("id"), actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deliverable))
}

// SetDeliverableStatus records an approval decision
// @Summary      Review deliverable
// @Description  Clients may set APPROVED or CHANGES_REQUESTED; admins may set any status
// @Tags         deliverables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                               true  "Deliverable ID"
// @Param        payload  body      service.SetDeliverableStatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=service.DeliverableResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/deliverables/{id}/status [put]
func (h *DeliverableHandler) SetDeliverableStatus(c *gin.Context) {
	var req service.SetDeliverableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	deliverable, err := h.deliverableService.SetDeliverableStatus(c.Request.Context(), c.Param("id"), actorFrom(c), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deliverable))
}
