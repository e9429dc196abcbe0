package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/shopspring/decimal"
)

// Budget actions
const (
	BudgetActionApprove        = "APPROVE"
	BudgetActionReject         = "REJECT"
	BudgetActionCounterPropose = "COUNTER_PROPOSE"
	BudgetActionAcceptCounter  = "ACCEPT_COUNTER"
)

// budgetTransitions is the complete negotiation state machine:
// current budget status -> action -> next budget status.
var budgetTransitions = map[string]map[string]string{
	model.BudgetStatusPending: {
		BudgetActionApprove:        model.BudgetStatusApproved,
		BudgetActionReject:         model.BudgetStatusRejected,
		BudgetActionCounterPropose: model.BudgetStatusCounterProposed,
	},
	model.BudgetStatusCounterProposed: {
		BudgetActionAcceptCounter: model.BudgetStatusApproved,
	},
}

// budgetActionRoles names the single role allowed to perform each action.
var budgetActionRoles = map[string]string{
	BudgetActionApprove:        model.RoleAdmin,
	BudgetActionReject:         model.RoleAdmin,
	BudgetActionCounterPropose: model.RoleAdmin,
	BudgetActionAcceptCounter:  model.RoleClient,
}

// --- DTOs ---

type BudgetActionRequest struct {
	Action         string  `json:"action" binding:"required,oneof=APPROVE REJECT COUNTER_PROPOSE ACCEPT_COUNTER"`
	ProposedBudget *string `json:"proposed_budget"`
}

// --- Interface ---

type BudgetService interface {
	// BudgetAction applies one negotiation step and returns the updated project.
	BudgetAction(ctx context.Context, projectID string, actor *Actor, req BudgetActionRequest) (ProjectResponse, error)
}

type budgetService struct {
	projectRepo repository.ProjectRepository
	notifier    Notifier
	logger      *slog.Logger
}

func NewBudgetService(projectRepo repository.ProjectRepository, notifier Notifier, logger *slog.Logger) BudgetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &budgetService{projectRepo: projectRepo, notifier: notifier, logger: logger}
}

// --- Implementation ---

func (s *budgetService) BudgetAction(ctx context.Context, projectID string, actor *Actor, req BudgetActionRequest) (ProjectResponse, error) {
	if err := requireActor(actor); err != nil {
		return ProjectResponse{}, err
	}

	action := strings.ToUpper(strings.TrimSpace(req.Action))
	role, known := budgetActionRoles[action]
	if !known {
		return ProjectResponse{}, newError(KindInvalidInput, "unknown budget action %q", req.Action)
	}
	if actor.Role != role {
		return ProjectResponse{}, newError(KindForbidden, "role %s may not perform %s", actor.Role, action)
	}

	var proposed decimal.Decimal
	if action == BudgetActionCounterPropose {
		if req.ProposedBudget == nil {
			return ProjectResponse{}, newError(KindInvalidInput, "proposed_budget is required")
		}
		amount, err := parsePositiveAmount("proposed_budget", *req.ProposedBudget)
		if err != nil {
			return ProjectResponse{}, err
		}
		proposed = amount
	}

	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return ProjectResponse{}, err
	}
	if actor.IsClient() && !actor.Owns(project.ClientID) {
		return ProjectResponse{}, newError(KindForbidden, "project belongs to another client")
	}

	fields, err := budgetFields(project, action, proposed)
	if err != nil {
		return ProjectResponse{}, err
	}

	// Guard on the budget status we validated against so a concurrent
	// transition cannot be silently overwritten.
	guard := map[string]interface{}{"budget_status": project.CurrentBudgetStatus()}
	rows, err := s.projectRepo.UpdateFields(ctx, project.ID, guard, fields)
	if err != nil {
		return ProjectResponse{}, storeError("project", err)
	}
	if rows == 0 {
		if _, err := s.projectRepo.FindByID(ctx, project.ID); err != nil {
			return ProjectResponse{}, storeError("project", err)
		}
		return ProjectResponse{}, newError(KindInvalidState, "project was modified concurrently, reload and retry")
	}

	updated, err := s.projectRepo.FindByID(ctx, project.ID)
	if err != nil {
		return ProjectResponse{}, storeError("project", err)
	}

	s.logger.InfoContext(ctx, "budget transition applied",
		"project_id", project.ID, "action", action,
		"from", project.CurrentBudgetStatus(), "to", updated.CurrentBudgetStatus())
	s.notifier.Notify(ctx, budgetEvent(updated, action))

	return toProjectResponse(updated), nil
}

// budgetFields validates the transition against the snapshot and returns the
// complete set of columns to write together.
func budgetFields(p *model.Project, action string, proposed decimal.Decimal) (map[string]interface{}, error) {
	current := p.CurrentBudgetStatus()

	if action == BudgetActionAcceptCounter {
		if current != model.BudgetStatusCounterProposed || !p.ProposedBudget.Valid {
			return nil, newError(KindInvalidState, "No counter proposal to accept")
		}
	}
	if current == "" {
		return nil, newError(KindInvalidState, "project has no budget request")
	}

	next, ok := budgetTransitions[current][action]
	if !ok {
		return nil, newError(KindInvalidAction, "cannot %s a budget that is %s", action, current)
	}

	fields := map[string]interface{}{"budget_status": next}
	switch action {
	case BudgetActionApprove:
		fields["status"] = model.ProjectStatusConfirmed
	case BudgetActionCounterPropose:
		fields["proposed_budget"] = proposed
	case BudgetActionAcceptCounter:
		fields["requested_budget"] = p.ProposedBudget.Decimal
		fields["proposed_budget"] = nil
		fields["status"] = model.ProjectStatusConfirmed
	}
	return fields, nil
}

func budgetEvent(p *model.Project, action string) Event {
	switch action {
	case BudgetActionApprove:
		return projectEvent(p, model.NotificationBudgetApproved,
			fmt.Sprintf("Budget of %s approved for %q", moneyOrUnknown(p.RequestedBudget), p.Title))
	case BudgetActionReject:
		return projectEvent(p, model.NotificationBudgetRejected,
			fmt.Sprintf("Budget request for %q was rejected", p.Title))
	case BudgetActionCounterPropose:
		return projectEvent(p, model.NotificationBudgetCounterProposed,
			fmt.Sprintf("Counter proposal of %s sent for %q", moneyOrUnknown(p.ProposedBudget), p.Title))
	default:
		return projectEvent(p, model.NotificationBudgetCounterAccepted,
			fmt.Sprintf("Counter proposal of %s accepted for %q", moneyOrUnknown(p.RequestedBudget), p.Title))
	}
}

func moneyOrUnknown(d decimal.NullDecimal) string {
	if !d.Valid {
		return "an unspecified amount"
	}
	return formatMoney(d.Decimal)
}
