package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	recentProjectsLimit = 5
	recentInvoicesLimit = 3
	recentActivityLimit = 5
)

// --- DTOs ---

type InvoiceSummary struct {
	ID        string          `json:"id"`
	InvoiceNo string          `json:"invoice_no"`
	ProjectID *string         `json:"project_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	IssueDate *string         `json:"issue_date"`
	DueDate   *string         `json:"due_date"`
	CreatedAt string          `json:"created_at"`
}

type ActivityEntry struct {
	ID               string `json:"id"`
	ProjectID        string `json:"project_id"`
	NotificationType string `json:"notification_type"`
	Message          string `json:"message"`
	CreatedAt        string `json:"created_at"`
}

// DashboardSummary is the client-facing overview. Every list is non-nil.
type DashboardSummary struct {
	ClientID                 string            `json:"client_id"`
	ActiveProjectsCount      int               `json:"active_projects_count"`
	ProjectRequestsCount     int               `json:"project_requests_count"`
	CompletedProjectsCount   int               `json:"completed_projects_count"`
	PendingDeliverablesCount int               `json:"pending_deliverables_count"`
	InvoicesDueCount         int               `json:"invoices_due_count"`
	InvoicesDueTotal         decimal.Decimal   `json:"invoices_due_total"`
	SpentSoFar               decimal.Decimal   `json:"spent_so_far"`
	AnnualBudget             *decimal.Decimal  `json:"annual_budget"`
	RemainingBudget          *decimal.Decimal  `json:"remaining_budget"`
	RecentProjects           []ProjectResponse `json:"recent_projects"`
	RecentInvoices           []InvoiceSummary  `json:"recent_invoices"`
	RecentActivity           []ActivityEntry   `json:"recent_activity"`
}

// --- Interface ---

type DashboardService interface {
	// GetClientDashboardSummary never fails on a sub-fetch: each missing piece
	// degrades to its zero value and is only logged.
	GetClientDashboardSummary(ctx context.Context, clientID uuid.UUID) DashboardSummary
}

type dashboardService struct {
	clientRepo       repository.ClientRepository
	projectRepo      repository.ProjectRepository
	invoiceRepo      repository.InvoiceRepository
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

func NewDashboardService(
	clientRepo repository.ClientRepository,
	projectRepo repository.ProjectRepository,
	invoiceRepo repository.InvoiceRepository,
	notificationRepo repository.NotificationRepository,
	logger *slog.Logger,
) DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &dashboardService{
		clientRepo:       clientRepo,
		projectRepo:      projectRepo,
		invoiceRepo:      invoiceRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// --- Implementation ---

func (s *dashboardService) GetClientDashboardSummary(ctx context.Context, clientID uuid.UUID) DashboardSummary {
	var (
		client        *model.Client
		projects      []model.Project
		invoices      []model.Invoice
		notifications []model.Notification
	)

	// The sub-fetches touch disjoint data, so they run concurrently and
	// each one swallows its own failure.
	var g errgroup.Group
	g.Go(func() error {
		c, err := s.clientRepo.FindByID(ctx, clientID)
		if err != nil {
			s.softFail(ctx, "client", clientID, err)
			return nil
		}
		client = c
		return nil
	})
	g.Go(func() error {
		p, err := s.projectRepo.ListByClient(ctx, clientID, 0)
		if err != nil {
			s.softFail(ctx, "projects", clientID, err)
			return nil
		}
		projects = p
		return nil
	})
	g.Go(func() error {
		inv, err := s.invoiceRepo.ListByClient(ctx, clientID)
		if err != nil {
			s.softFail(ctx, "invoices", clientID, err)
			return nil
		}
		invoices = inv
		return nil
	})
	g.Go(func() error {
		n, err := s.notificationRepo.RecentByClient(ctx, clientID, recentActivityLimit)
		if err != nil {
			s.softFail(ctx, "notifications", clientID, err)
			return nil
		}
		notifications = n
		return nil
	})
	_ = g.Wait()

	return summarize(clientID, client, projects, invoices, notifications)
}

func (s *dashboardService) softFail(ctx context.Context, part string, clientID uuid.UUID, err error) {
	s.logger.WarnContext(ctx, "dashboard sub-fetch failed, using empty value",
		"part", part, "client_id", clientID, "error", err)
}

// summarize is the pure derivation over one snapshot of a client's data.
func summarize(clientID uuid.UUID, client *model.Client, projects []model.Project, invoices []model.Invoice, notifications []model.Notification) DashboardSummary {
	summary := DashboardSummary{
		ClientID:         clientID.String(),
		InvoicesDueTotal: decimal.Zero,
		SpentSoFar:       decimal.Zero,
		RecentProjects:   []ProjectResponse{},
		RecentInvoices:   []InvoiceSummary{},
		RecentActivity:   []ActivityEntry{},
	}

	for i := range projects {
		p := &projects[i]
		if p.IsCancelled() {
			continue
		}
		switch {
		case model.IsActiveStatus(p.Status):
			summary.ActiveProjectsCount++
		case p.Status == model.ProjectStatusRequestReceived:
			summary.ProjectRequestsCount++
		case p.Status == model.ProjectStatusCompleted:
			summary.CompletedProjectsCount++
		}
	}
	// Tracks projects still in production until deliverable-level counting exists.
	summary.PendingDeliverablesCount = summary.ActiveProjectsCount

	for i := range invoices {
		inv := &invoices[i]
		switch {
		case inv.IsDue():
			summary.InvoicesDueCount++
			summary.InvoicesDueTotal = summary.InvoicesDueTotal.Add(inv.Amount)
		case inv.Status == model.InvoiceStatusPaid:
			summary.SpentSoFar = summary.SpentSoFar.Add(inv.Amount)
		}
	}

	if client != nil && client.AnnualBudget.Valid {
		annual := client.AnnualBudget.Decimal
		remaining := annual.Sub(summary.SpentSoFar)
		summary.AnnualBudget = &annual
		summary.RemainingBudget = &remaining
	}

	recent := newestProjects(projects, recentProjectsLimit)
	for i := range recent {
		summary.RecentProjects = append(summary.RecentProjects, toProjectResponse(&recent[i]))
	}

	for _, inv := range newestInvoices(invoices, recentInvoicesLimit) {
		summary.RecentInvoices = append(summary.RecentInvoices, toInvoiceSummary(&inv))
	}

	for i := range notifications {
		if i == recentActivityLimit {
			break
		}
		summary.RecentActivity = append(summary.RecentActivity, toActivityEntry(&notifications[i]))
	}

	return summary
}

func newestProjects(projects []model.Project, limit int) []model.Project {
	sorted := append([]model.Project(nil), projects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// newestInvoices orders by RecencyKey descending. The keys are fixed-width
// ISO-8601 strings, so lexicographic order is chronological order.
func newestInvoices(invoices []model.Invoice, limit int) []model.Invoice {
	sorted := append([]model.Invoice(nil), invoices...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecencyKey() > sorted[j].RecencyKey()
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func toInvoiceSummary(inv *model.Invoice) InvoiceSummary {
	out := InvoiceSummary{
		ID:        inv.ID.String(),
		InvoiceNo: inv.InvoiceNo,
		Amount:    inv.Amount,
		Status:    inv.Status,
		CreatedAt: inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.ProjectID != nil {
		id := inv.ProjectID.String()
		out.ProjectID = &id
	}
	if inv.IssueDate != nil {
		d := inv.IssueDate.Format("2006-01-02")
		out.IssueDate = &d
	}
	if inv.DueDate != nil {
		d := inv.DueDate.Format("2006-01-02")
		out.DueDate = &d
	}
	return out
}

func toActivityEntry(n *model.Notification) ActivityEntry {
	return ActivityEntry{
		ID:               n.ID.String(),
		ProjectID:        n.ProjectID.String(),
		NotificationType: n.NotificationType,
		Message:          n.Message,
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
	}
}
