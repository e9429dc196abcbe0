package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateProjectRequest struct {
	ClientID            string  `json:"client_id"` // ADMIN only; CLIENT requests use the caller's client
	Title               string  `json:"title" binding:"required"`
	Description         string  `json:"description"`
	Status              string  `json:"status"`           // ADMIN only
	RequestedBudget     *string `json:"requested_budget"` // CLIENT only
	Notes               string  `json:"notes"`
	AccountManagerName  string  `json:"account_manager_name"`
	AccountManagerEmail string  `json:"account_manager_email"`
	DueDate             string  `json:"due_date"` // YYYY-MM-DD
}

// UpdateProjectRequest carries only the fields the caller wants to change.
type UpdateProjectRequest struct {
	Title               *string `json:"title"`
	Description         *string `json:"description"`
	Status              *string `json:"status"`
	ClientID            *string `json:"client_id"`
	Notes               *string `json:"notes"`
	AccountManagerName  *string `json:"account_manager_name"`
	AccountManagerEmail *string `json:"account_manager_email"`
	DueDate             *string `json:"due_date"`
}

type ProjectListFilter struct {
	ClientID string
	Status   string
	Page     int
	Limit    int
}

type ProjectResponse struct {
	ID                  string  `json:"id"`
	ClientID            string  `json:"client_id"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Status              string  `json:"status"`
	DisplayStatus       string  `json:"display_status"`
	RequestedBudget     *string `json:"requested_budget"`
	BudgetStatus        *string `json:"budget_status"`
	ProposedBudget      *string `json:"proposed_budget"`
	Notes               string  `json:"notes"`
	AccountManagerName  string  `json:"account_manager_name"`
	AccountManagerEmail string  `json:"account_manager_email"`
	DueDate             *string `json:"due_date"`
	CancelledAt         *string `json:"cancelled_at"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// --- Interface ---

type ProjectService interface {
	CreateProject(ctx context.Context, actor *Actor, req CreateProjectRequest) (ProjectResponse, error)
	GetProject(ctx context.Context, projectID string, actor *Actor) (ProjectResponse, error)
	ListProjects(ctx context.Context, actor *Actor, filter ProjectListFilter) ([]ProjectResponse, int64, error)
	UpdateProject(ctx context.Context, projectID string, actor *Actor, req UpdateProjectRequest) (ProjectResponse, error)
	CancelProject(ctx context.Context, projectID string, actor *Actor) (ProjectResponse, error)
	DeleteProject(ctx context.Context, projectID string, actor *Actor) error
}

type projectService struct {
	projectRepo     repository.ProjectRepository
	deliverableRepo repository.DeliverableRepository
	invoiceRepo     repository.InvoiceRepository
	txManager       repository.TransactionManager
	capabilities    *repository.CapabilityRegistry
	notifier        Notifier
	logger          *slog.Logger
	now             func() time.Time
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	deliverableRepo repository.DeliverableRepository,
	invoiceRepo repository.InvoiceRepository,
	txManager repository.TransactionManager,
	capabilities *repository.CapabilityRegistry,
	notifier Notifier,
	logger *slog.Logger,
) ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	if capabilities == nil {
		capabilities = repository.NewCapabilityRegistry(repository.SchemaCapabilities{})
	}
	return &projectService{
		projectRepo:     projectRepo,
		deliverableRepo: deliverableRepo,
		invoiceRepo:     invoiceRepo,
		txManager:       txManager,
		capabilities:    capabilities,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

// --- Implementation ---

func (s *projectService) CreateProject(ctx context.Context, actor *Actor, req CreateProjectRequest) (ProjectResponse, error) {
	if err := requireActor(actor); err != nil {
		return ProjectResponse{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return ProjectResponse{}, newError(KindInvalidInput, "title is required")
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return ProjectResponse{}, err
	}

	project := &model.Project{
		Title:       title,
		Description: req.Description,
		Notes:       req.Notes,
		DueDate:     dueDate,
	}

	switch actor.Role {
	case model.RoleClient:
		if actor.ClientID == nil {
			return ProjectResponse{}, newError(KindForbidden, "client account is not linked to a client")
		}
		if req.ClientID != "" && req.ClientID != actor.ClientID.String() {
			return ProjectResponse{}, newError(KindForbidden, "cannot request a project for another client")
		}
		if req.AccountManagerName != "" || req.AccountManagerEmail != "" {
			return ProjectResponse{}, newError(KindForbidden, "account manager fields are managed by the agency")
		}
		project.ClientID = *actor.ClientID
		project.Status = model.ProjectStatusRequestReceived

		if req.RequestedBudget != nil && strings.TrimSpace(*req.RequestedBudget) != "" {
			budget, parseErr := parsePositiveAmount("requested_budget", *req.RequestedBudget)
			if parseErr != nil {
				return ProjectResponse{}, parseErr
			}
			pending := model.BudgetStatusPending
			project.RequestedBudget = decimal.NewNullDecimal(budget)
			project.BudgetStatus = &pending
		}

	case model.RoleAdmin:
		if req.RequestedBudget != nil {
			return ProjectResponse{}, newError(KindForbidden, "requested budget can only be set by the client")
		}
		clientID, parseErr := uuid.Parse(req.ClientID)
		if parseErr != nil {
			return ProjectResponse{}, newError(KindInvalidInput, "invalid client_id")
		}
		if !model.IsValidProjectStatus(req.Status) {
			return ProjectResponse{}, newError(KindInvalidInput, "invalid status %q", req.Status)
		}
		project.ClientID = clientID
		project.Status = req.Status
		project.AccountManagerName = req.AccountManagerName
		project.AccountManagerEmail = req.AccountManagerEmail

	default:
		return ProjectResponse{}, newError(KindForbidden, "role %s may not create projects", actor.Role)
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return ProjectResponse{}, storeError("project", err)
	}

	if actor.IsClient() {
		msg := fmt.Sprintf("New project request: %s", project.Title)
		if project.RequestedBudget.Valid {
			msg = fmt.Sprintf("%s (requested budget %s)", msg, formatMoney(project.RequestedBudget.Decimal))
		}
		s.notifier.Notify(ctx, projectEvent(project, model.NotificationProjectRequested, msg))
	}

	return toProjectResponse(project), nil
}

func (s *projectService) GetProject(ctx context.Context, projectID string, actor *Actor) (ProjectResponse, error) {
	if err := requireActor(actor); err != nil {
		return ProjectResponse{}, err
	}
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return ProjectResponse{}, err
	}
	if err := authorizeProjectRead(actor, project); err != nil {
		return ProjectResponse{}, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) ListProjects(ctx context.Context, actor *Actor, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, 0, err
	}

	repoFilter := repository.ProjectFilter{Status: filter.Status, Page: filter.Page, Limit: filter.Limit}
	if actor.IsClient() {
		if actor.ClientID == nil {
			return nil, 0, newError(KindForbidden, "client account is not linked to a client")
		}
		repoFilter.ClientID = actor.ClientID
	} else if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, newError(KindInvalidInput, "invalid client_id")
		}
		repoFilter.ClientID = &clientID
	}

	projects, total, err := s.projectRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, storeError("projects", err)
	}

	result := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, toProjectResponse(&projects[i]))
	}
	return result, total, nil
}

func (s *projectService) UpdateProject(ctx context.Context, projectID string, actor *Actor, req UpdateProjectRequest) (ProjectResponse, error) {
	fields := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return ProjectResponse{}, newError(KindInvalidInput, "title cannot be empty")
		}
		fields["title"] = title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.AccountManagerName != nil {
		fields["account_manager_name"] = *req.AccountManagerName
	}
	if req.AccountManagerEmail != nil {
		fields["account_manager_email"] = *req.AccountManagerEmail
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.ClientID != nil {
		fields["client_id"] = *req.ClientID
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}

	if err := authorizeFields(actor, EntityProject, fieldNames(fields)); err != nil {
		return ProjectResponse{}, err
	}
	if len(fields) == 0 {
		return ProjectResponse{}, newError(KindInvalidInput, "no fields to update")
	}
	// The notes marker doubles as the cancellation signal on older schemas.
	if actor.IsClient() && req.Notes != nil && strings.Contains(*req.Notes, model.CancellationMarker) {
		return ProjectResponse{}, newError(KindForbidden, "clients cancel projects through the cancel action")
	}

	// Normalize typed values after the permission check so that a forbidden
	// field is reported as Forbidden rather than as malformed input.
	if req.Status != nil && !model.IsValidProjectStatus(*req.Status) {
		return ProjectResponse{}, newError(KindInvalidInput, "invalid status %q", *req.Status)
	}
	if req.ClientID != nil {
		clientID, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return ProjectResponse{}, newError(KindInvalidInput, "invalid client_id")
		}
		fields["client_id"] = clientID
	}
	if req.DueDate != nil {
		dueDate, err := parseOptionalDate(*req.DueDate)
		if err != nil {
			return ProjectResponse{}, err
		}
		if dueDate == nil {
			fields["due_date"] = nil
		} else {
			fields["due_date"] = *dueDate
		}
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return ProjectResponse{}, err
	}
	if actor.IsClient() && !actor.Owns(project.ClientID) {
		return ProjectResponse{}, newError(KindForbidden, "project belongs to another client")
	}
	if actor.IsClient() && project.IsCancelled() {
		return ProjectResponse{}, newError(KindInvalidState, "cancelled projects cannot be edited")
	}

	if _, err := s.projectRepo.UpdateFields(ctx, project.ID, nil, fields); err != nil {
		return ProjectResponse{}, storeError("project", err)
	}

	updated, err := s.projectRepo.FindByID(ctx, project.ID)
	if err != nil {
		return ProjectResponse{}, storeError("project", err)
	}
	return toProjectResponse(updated), nil
}

// DeleteProject physically removes a project. Only ADMIN may do this, and only
// while nothing billable or delivered hangs off it; otherwise it must be cancelled.
func (s *projectService) DeleteProject(ctx context.Context, projectID string, actor *Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return newError(KindForbidden, "only administrators can delete projects")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}

	// Notifications go with the project through the ON DELETE CASCADE key.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoices, err := s.invoiceRepo.CountByProject(txCtx, project.ID)
		if err != nil {
			return storeError("invoices", err)
		}
		deliverables, err := s.deliverableRepo.CountByProject(txCtx, project.ID)
		if err != nil {
			return storeError("deliverables", err)
		}
		if invoices > 0 || deliverables > 0 {
			return newError(KindInvalidState,
				"project has %d invoice(s) and %d deliverable(s); cancel it instead of deleting", invoices, deliverables)
		}
		if err := s.projectRepo.Delete(txCtx, project.ID); err != nil {
			return storeError("project", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "project deleted", "project_id", project.ID, "actor", actor.UserID)
	return nil
}

func (s *projectService) loadProject(ctx context.Context, projectID string) (*model.Project, error) {
	return loadProject(ctx, s.projectRepo, projectID)
}

// --- Helpers ---

func loadProject(ctx context.Context, repo repository.ProjectRepository, projectID string) (*model.Project, error) {
	id, err := uuid.Parse(projectID)
	if err != nil {
		return nil, newError(KindInvalidInput, "invalid project id")
	}
	project, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("project", err)
	}
	return project, nil
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	return names
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, newError(KindInvalidInput, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

func parsePositiveAmount(field, s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, newError(KindInvalidInput, "invalid %s: %v", field, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, newError(KindInvalidInput, "%s must be greater than zero", field)
	}
	return amount, nil
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func nullDecimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func toProjectResponse(p *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:                  p.ID.String(),
		ClientID:            p.ClientID.String(),
		Title:               p.Title,
		Description:         p.Description,
		Status:              p.Status,
		DisplayStatus:       p.DisplayStatus(),
		RequestedBudget:     nullDecimalString(p.RequestedBudget),
		BudgetStatus:        p.BudgetStatus,
		ProposedBudget:      nullDecimalString(p.ProposedBudget),
		Notes:               p.Notes,
		AccountManagerName:  p.AccountManagerName,
		AccountManagerEmail: p.AccountManagerEmail,
		CreatedAt:           p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           p.UpdatedAt.Format(time.RFC3339),
	}
	if p.DueDate != nil {
		s := p.DueDate.Format("2006-01-02")
		resp.DueDate = &s
	}
	if p.CancelledAt != nil {
		s := p.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}
