package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"
)

// cancelStrategy is one way of recording a client cancellation, from the
// newest schema shape down to the oldest.
type cancelStrategy struct {
	name                 string
	needsAuditColumns    bool
	needsCancelledStatus bool
}

var cancelStrategies = []cancelStrategy{
	{name: "status_with_audit", needsAuditColumns: true, needsCancelledStatus: true},
	{name: "status_only", needsCancelledStatus: true},
	{name: "notes_only"},
}

func (st cancelStrategy) supportedBy(caps repository.SchemaCapabilities) bool {
	if st.needsAuditColumns && caps.AuditColumns == repository.CapabilityUnsupported {
		return false
	}
	if st.needsCancelledStatus && caps.CancelledStatus == repository.CapabilityUnsupported {
		return false
	}
	return true
}

func (st cancelStrategy) fields(p *model.Project, actor *Actor, now time.Time) map[string]interface{} {
	fields := map[string]interface{}{
		"notes": p.Notes + cancellationMarker(now),
	}
	if st.needsCancelledStatus {
		fields["status"] = model.ProjectStatusCancelled
	}
	if st.needsAuditColumns {
		fields["cancelled_at"] = now
		fields["cancelled_by"] = actor.UserID
	}
	return fields
}

// cancellationMarker is the human-readable note appended on every cancellation path.
func cancellationMarker(now time.Time) string {
	return fmt.Sprintf("\n\n%s by client on %s]", model.CancellationMarker, now.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

// CancelProject soft-cancels a project on behalf of the client that owns it.
// The write degrades from the newest to the oldest schema shape; only
// schema-shape failures move on to the next strategy.
func (s *projectService) CancelProject(ctx context.Context, projectID string, actor *Actor) (ProjectResponse, error) {
	if err := requireActor(actor); err != nil {
		return ProjectResponse{}, err
	}
	if !actor.IsClient() {
		return ProjectResponse{}, newError(KindForbidden, "only the owning client can cancel a project")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return ProjectResponse{}, err
	}
	if !actor.Owns(project.ClientID) {
		return ProjectResponse{}, newError(KindForbidden, "project belongs to another client")
	}
	if project.Status == model.ProjectStatusCancelled {
		return toProjectResponse(project), nil
	}
	if project.Status == model.ProjectStatusCompleted {
		return ProjectResponse{}, newError(KindInvalidState, "completed projects cannot be cancelled")
	}

	now := s.now()
	applied, err := s.applyCancellation(ctx, project, actor, now)
	if err != nil {
		return ProjectResponse{}, err
	}

	updated, err := s.projectRepo.FindByID(ctx, project.ID)
	if err != nil {
		return ProjectResponse{}, storeError("project", err)
	}

	s.logger.InfoContext(ctx, "project cancelled", "project_id", project.ID, "strategy", applied)
	s.notifier.Notify(ctx, projectEvent(updated, model.NotificationProjectCancelled,
		fmt.Sprintf("Project %q was cancelled by the client", updated.Title)))

	return toProjectResponse(updated), nil
}

// applyCancellation runs the strategy cascade and returns the name of the one that stuck.
func (s *projectService) applyCancellation(ctx context.Context, project *model.Project, actor *Actor, now time.Time) (string, error) {
	var lastErr error
	for _, st := range cancelStrategies {
		if !st.supportedBy(s.capabilities.Snapshot()) {
			continue
		}

		rows, err := s.projectRepo.UpdateFields(ctx, project.ID, nil, st.fields(project, actor, now))
		if err == nil {
			if rows == 0 {
				return "", newError(KindNotFound, "project not found")
			}
			s.recordSupported(st)
			return st.name, nil
		}

		kind, isSchema := repository.SchemaErrorKindOf(err)
		if !isSchema {
			return "", &Error{Kind: KindPersistenceUnavailable, Message: "failed to cancel project", Err: err}
		}

		s.logger.WarnContext(ctx, "cancellation strategy not supported by schema",
			"project_id", project.ID, "strategy", st.name, "reason", kind.String(), "error", err)
		s.recordUnsupported(st, kind)
		lastErr = err
	}

	return "", &Error{Kind: KindCancellationFailed, Message: "no cancellation strategy succeeded", Err: lastErr}
}

func (s *projectService) recordSupported(st cancelStrategy) {
	if st.needsAuditColumns {
		s.capabilities.SetAuditColumns(repository.CapabilitySupported)
	}
	if st.needsCancelledStatus {
		s.capabilities.SetCancelledStatus(repository.CapabilitySupported)
	}
}

// recordUnsupported remembers what a failed attempt proved about the schema.
// A missing column only indicts the audit columns when the attempt used them.
func (s *projectService) recordUnsupported(st cancelStrategy, kind repository.SchemaErrorKind) {
	switch kind {
	case repository.MissingColumn:
		if st.needsAuditColumns {
			s.capabilities.SetAuditColumns(repository.CapabilityUnsupported)
		}
	case repository.RejectedValue:
		if st.needsCancelledStatus {
			s.capabilities.SetCancelledStatus(repository.CapabilityUnsupported)
		}
	}
}
