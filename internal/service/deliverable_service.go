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
)

// FileStore hands out time-limited download links for deliverable files.
type FileStore interface {
	PresignDownload(ctx context.Context, key string) (string, error)
}

// --- DTOs ---

type CreateDeliverableRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	FileKey     string `json:"file_key"`
}

// UpdateDeliverableRequest carries only the fields the caller wants to change.
type UpdateDeliverableRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	FileKey     *string `json:"file_key"`
	Status      *string `json:"status"`
}

type SetDeliverableStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type DeliverableResponse struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FileKey     string `json:"file_key,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// --- Interface ---

type DeliverableService interface {
	CreateDeliverable(ctx context.Context, projectID string, actor *Actor, req CreateDeliverableRequest) (DeliverableResponse, error)
	ListDeliverables(ctx context.Context, projectID string, actor *Actor) ([]DeliverableResponse, error)
	UpdateDeliverable(ctx context.Context, deliverableID string, actor *Actor, req UpdateDeliverableRequest) (DeliverableResponse, error)
	SetDeliverableStatus(ctx context.Context, deliverableID string, actor *Actor, status string) (DeliverableResponse, error)
}

type deliverableService struct {
	deliverableRepo repository.DeliverableRepository
	projectRepo     repository.ProjectRepository
	files           FileStore
	notifier        Notifier
	logger          *slog.Logger
}

// NewDeliverableService builds the approval workflow. files may be nil, in
// which case no download links are produced.
func NewDeliverableService(
	deliverableRepo repository.DeliverableRepository,
	projectRepo repository.ProjectRepository,
	files FileStore,
	notifier Notifier,
	logger *slog.Logger,
) DeliverableService {
	if logger == nil {
		logger = slog.Default()
	}
	return &deliverableService{
		deliverableRepo: deliverableRepo,
		projectRepo:     projectRepo,
		files:           files,
		notifier:        notifier,
		logger:          logger,
	}
}

// --- Implementation ---

func (s *deliverableService) CreateDeliverable(ctx context.Context, projectID string, actor *Actor, req CreateDeliverableRequest) (DeliverableResponse, error) {
	if err := authorizeFields(actor, EntityDeliverable, []string{"title", "description", "file_key"}); err != nil {
		return DeliverableResponse{}, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return DeliverableResponse{}, newError(KindInvalidInput, "title is required")
	}

	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return DeliverableResponse{}, err
	}
	if project.IsCancelled() {
		return DeliverableResponse{}, newError(KindInvalidState, "cannot add deliverables to a cancelled project")
	}

	deliverable := &model.Deliverable{
		ProjectID:   project.ID,
		Title:       title,
		Description: req.Description,
		FileKey:     strings.TrimSpace(req.FileKey),
		Status:      model.DeliverableAwaitingApproval,
	}
	if err := s.deliverableRepo.Create(ctx, deliverable); err != nil {
		return DeliverableResponse{}, storeError("deliverable", err)
	}
	return s.toResponse(ctx, deliverable), nil
}

func (s *deliverableService) ListDeliverables(ctx context.Context, projectID string, actor *Actor) ([]DeliverableResponse, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeProjectRead(actor, project); err != nil {
		return nil, err
	}

	deliverables, err := s.deliverableRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, storeError("deliverables", err)
	}

	result := make([]DeliverableResponse, 0, len(deliverables))
	for i := range deliverables {
		result = append(result, s.toResponse(ctx, &deliverables[i]))
	}
	return result, nil
}

func (s *deliverableService) UpdateDeliverable(ctx context.Context, deliverableID string, actor *Actor, req UpdateDeliverableRequest) (DeliverableResponse, error) {
	fields := make([]string, 0, 4)
	if req.Title != nil {
		fields = append(fields, "title")
	}
	if req.Description != nil {
		fields = append(fields, "description")
	}
	if req.FileKey != nil {
		fields = append(fields, "file_key")
	}
	if req.Status != nil {
		fields = append(fields, "status")
	}
	if err := authorizeFields(actor, EntityDeliverable, fields); err != nil {
		return DeliverableResponse{}, err
	}
	if len(fields) == 0 {
		return DeliverableResponse{}, newError(KindInvalidInput, "no fields to update")
	}

	// A status-only change goes through the approval workflow so that client
	// transitions are validated and announced the same way on every path.
	if len(fields) == 1 && req.Status != nil {
		return s.SetDeliverableStatus(ctx, deliverableID, actor, *req.Status)
	}

	deliverable, _, err := s.loadDeliverable(ctx, deliverableID)
	if err != nil {
		return DeliverableResponse{}, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return DeliverableResponse{}, newError(KindInvalidInput, "title cannot be empty")
		}
		deliverable.Title = title
	}
	if req.Description != nil {
		deliverable.Description = *req.Description
	}
	if req.FileKey != nil {
		deliverable.FileKey = strings.TrimSpace(*req.FileKey)
	}
	if req.Status != nil {
		if !model.IsValidDeliverableStatus(*req.Status) {
			return DeliverableResponse{}, newError(KindInvalidInput, "invalid deliverable status %q", *req.Status)
		}
		deliverable.Status = *req.Status
	}

	if err := s.deliverableRepo.Update(ctx, deliverable); err != nil {
		return DeliverableResponse{}, storeError("deliverable", err)
	}
	return s.toResponse(ctx, deliverable), nil
}

// SetDeliverableStatus records a review decision. CLIENT may only approve or
// request changes on awaiting deliverables of its own projects; ADMIN may set any status.
func (s *deliverableService) SetDeliverableStatus(ctx context.Context, deliverableID string, actor *Actor, status string) (DeliverableResponse, error) {
	if err := authorizeFields(actor, EntityDeliverable, []string{"status"}); err != nil {
		return DeliverableResponse{}, err
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if err := authorizeValue(actor, EntityDeliverable, "status", status); err != nil {
		return DeliverableResponse{}, err
	}
	if !model.IsValidDeliverableStatus(status) {
		return DeliverableResponse{}, newError(KindInvalidInput, "invalid deliverable status %q", status)
	}

	deliverable, project, err := s.loadDeliverable(ctx, deliverableID)
	if err != nil {
		return DeliverableResponse{}, err
	}
	if actor.IsClient() && !actor.Owns(project.ClientID) {
		return DeliverableResponse{}, newError(KindForbidden, "deliverable belongs to another client")
	}
	if actor.IsClient() && deliverable.Status != model.DeliverableAwaitingApproval {
		return DeliverableResponse{}, newError(KindInvalidState, "deliverable is %s, not awaiting approval", deliverable.Status)
	}

	previous := deliverable.Status
	deliverable.Status = status
	if err := s.deliverableRepo.Update(ctx, deliverable); err != nil {
		return DeliverableResponse{}, storeError("deliverable", err)
	}

	s.logger.InfoContext(ctx, "deliverable status changed",
		"deliverable_id", deliverable.ID, "from", previous, "to", status, "role", actor.Role)
	if actor.IsClient() {
		s.notifier.Notify(ctx, deliverableEvent(project, deliverable))
	}

	return s.toResponse(ctx, deliverable), nil
}

func (s *deliverableService) loadDeliverable(ctx context.Context, deliverableID string) (*model.Deliverable, *model.Project, error) {
	id, err := uuid.Parse(deliverableID)
	if err != nil {
		return nil, nil, newError(KindInvalidInput, "invalid deliverable id")
	}
	deliverable, err := s.deliverableRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, storeError("deliverable", err)
	}
	project, err := s.projectRepo.FindByID(ctx, deliverable.ProjectID)
	if err != nil {
		return nil, nil, storeError("project", err)
	}
	return deliverable, project, nil
}

func (s *deliverableService) toResponse(ctx context.Context, d *model.Deliverable) DeliverableResponse {
	resp := DeliverableResponse{
		ID:          d.ID.String(),
		ProjectID:   d.ProjectID.String(),
		Title:       d.Title,
		Description: d.Description,
		FileKey:     d.FileKey,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.Format(time.RFC3339),
	}
	if s.files != nil && d.FileKey != "" {
		url, err := s.files.PresignDownload(ctx, d.FileKey)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to presign deliverable file", "deliverable_id", d.ID, "error", err)
		} else {
			resp.DownloadURL = url
		}
	}
	return resp
}

func deliverableEvent(p *model.Project, d *model.Deliverable) Event {
	if d.Status == model.DeliverableApproved {
		return projectEvent(p, model.NotificationDeliverableApproved,
			fmt.Sprintf("Deliverable %q was approved", d.Title))
	}
	return projectEvent(p, model.NotificationChangesRequested,
		fmt.Sprintf("Changes requested on deliverable %q", d.Title))
}
