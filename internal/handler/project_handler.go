package handler

import (
	"net/http"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/service"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/pkg/pagination"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService      service.ProjectService
	budgetService       service.BudgetService
	notificationService service.NotificationService
}

func NewProjectHandler(
	projectService service.ProjectService,
	budgetService service.BudgetService,
	notificationService service.NotificationService,
) *ProjectHandler {
	return &ProjectHandler{
		projectService:      projectService,
		budgetService:       budgetService,
		notificationService: notificationService,
	}
}

func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	projects := router.Group("/api/projects", auth)
	{
		projects.GET("", h.ListProjects)
		projects.POST("", h.CreateProject)
		projects.GET("/:id", h.GetProject)
		projects.PUT("/:id", h.UpdateProject)
		projects.PUT("/:id/budget", h.BudgetAction)
		projects.POST("/:id/cancel", h.CancelProject)
		projects.DELETE("/:id", h.DeleteProject)
		projects.GET("/:id/notifications", h.ListNotifications)
	}
}

// CreateProject creates a project request (CLIENT) or a project (ADMIN)
// @Summary      Create project
// @Description  Clients request a project, optionally with a budget; admins create projects directly with an explicit status
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProjectRequest  true  "Create Project Payload"
// @Success      201      {object}  response.Response{data=service.ProjectResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, project))
}

// ListProjects returns a paginated list of projects visible to the caller
// @Summary      List projects
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        client_id  query     string  false  "Filter by client (ADMIN and TEAM only)"
// @Param        status     query     string  false  "Filter by raw status"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /api/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := pagination.Parse(c)

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), actorFrom(c), service.ProjectListFilter{
		ClientID: c.Query("client_id"),
		Status:   c.Query("status"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, "projects", projects, params.Meta(total)))
}

// GetProject returns one project with its display status
// @Summary      Get project
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// UpdateProject changes the fields the caller's role may write
// @Summary      Update project
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Project ID"
// @Param        payload  body      service.UpdateProjectRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.ProjectResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("id"), actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// BudgetAction advances the budget negotiation
// @Summary      Budget negotiation step
// @Description  APPROVE, REJECT and COUNTER_PROPOSE are admin actions; ACCEPT_COUNTER is taken by the owning client
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Project ID"
// @Param        payload  body      service.BudgetActionRequest  true  "Budget action"
// @Success      200      {object}  response.Response{data=service.ProjectResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/projects/{id}/budget [put]
func (h *ProjectHandler) BudgetAction(c *gin.Context) {
	var req service.BudgetActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.budgetService.BudgetAction(c.Request.Context(), c.Param("id"), actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// CancelProject soft-cancels a project on behalf of its client
// @Summary      Cancel project
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/projects/{id}/cancel [post]
func (h *ProjectHandler) CancelProject(c *gin.Context) {
	project, err := h.projectService.CancelProject(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// DeleteProject physically removes a project that has no invoices or deliverables
// @Summary      Delete project
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// ListNotifications returns the activity log of a project, newest first
// @Summary      Project notifications
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Project ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/projects/{id}/notifications [get]
func (h *ProjectHandler) ListNotifications(c *gin.Context) {
	params := pagination.Parse(c)

	notifications, total, err := h.notificationService.ListProjectNotifications(
		c.Request.Context(), c.Param("id"), actorFrom(c), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, "notifications", notifications, params.Meta(total)))
}
