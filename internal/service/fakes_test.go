package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// --- projects ---

type updateCall struct {
	guard  map[string]interface{}
	fields map[string]interface{}
}

// fakeProjectRepo emulates the column and value checks of a Postgres schema
// that may be missing the newer cancellation shape.
type fakeProjectRepo struct {
	mu               sync.Mutex
	projects         map[uuid.UUID]*model.Project
	missingColumns   map[string]bool
	rejectedStatuses map[string]bool
	updateErr        error
	listErr          error
	findCalls        int
	updates          []updateCall
	beforeUpdate     func(p *model.Project)
}

func newFakeProjectRepo(projects ...*model.Project) *fakeProjectRepo {
	r := &fakeProjectRepo{
		projects:         make(map[uuid.UUID]*model.Project),
		missingColumns:   make(map[string]bool),
		rejectedStatuses: make(map[string]bool),
	}
	for _, p := range projects {
		r.put(p)
	}
	return r
}

func (r *fakeProjectRepo) put(p *model.Project) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	r.projects[p.ID] = &cp
}

func (r *fakeProjectRepo) get(id uuid.UUID) *model.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.projects[id]
	return &cp
}

func (r *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.put(p)
	return nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) List(_ context.Context, filter repository.ProjectFilter) ([]model.Project, int64, error) {
	all, err := r.ListByClient(context.Background(), uuid.Nil, 0)
	if err != nil {
		return nil, 0, err
	}
	var out []model.Project
	for _, p := range all {
		if filter.ClientID != nil && p.ClientID != *filter.ClientID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

// ListByClient with uuid.Nil returns every project.
func (r *fakeProjectRepo) ListByClient(_ context.Context, clientID uuid.UUID, limit int) ([]model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.Project
	for _, p := range r.projects {
		if clientID == uuid.Nil || p.ClientID == clientID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProjectRepo) UpdateFields(_ context.Context, id uuid.UUID, guard, fields map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, updateCall{guard: guard, fields: fields})

	if r.updateErr != nil {
		return 0, r.updateErr
	}
	for col := range fields {
		if r.missingColumns[col] {
			return 0, &repository.SchemaError{Kind: repository.MissingColumn, Err: fmt.Errorf("column %q does not exist", col)}
		}
	}
	if status, ok := fields["status"].(string); ok && r.rejectedStatuses[status] {
		return 0, &repository.SchemaError{Kind: repository.RejectedValue, Err: fmt.Errorf("invalid input value %q", status)}
	}

	stored, ok := r.projects[id]
	if !ok {
		return 0, nil
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(stored)
	}
	for col, want := range guard {
		if col == "budget_status" && stored.CurrentBudgetStatus() != want {
			return 0, nil
		}
	}

	next := *stored
	for col, v := range fields {
		applyColumn(&next, col, v)
	}
	next.UpdatedAt = time.Now()
	r.projects[id] = &next
	return 1, nil
}

func applyColumn(p *model.Project, col string, v interface{}) {
	switch col {
	case "title":
		p.Title = v.(string)
	case "description":
		p.Description = v.(string)
	case "status":
		p.Status = v.(string)
	case "client_id":
		p.ClientID = v.(uuid.UUID)
	case "notes":
		p.Notes = v.(string)
	case "account_manager_name":
		p.AccountManagerName = v.(string)
	case "account_manager_email":
		p.AccountManagerEmail = v.(string)
	case "due_date":
		if v == nil {
			p.DueDate = nil
		} else {
			t := v.(time.Time)
			p.DueDate = &t
		}
	case "budget_status":
		s := v.(string)
		p.BudgetStatus = &s
	case "requested_budget":
		p.RequestedBudget = decimal.NewNullDecimal(v.(decimal.Decimal))
	case "proposed_budget":
		if v == nil {
			p.ProposedBudget = decimal.NullDecimal{}
		} else {
			p.ProposedBudget = decimal.NewNullDecimal(v.(decimal.Decimal))
		}
	case "cancelled_at":
		t := v.(time.Time)
		p.CancelledAt = &t
	case "cancelled_by":
		u := v.(uuid.UUID)
		p.CancelledBy = &u
	default:
		panic("fake project repo: unknown column " + col)
	}
}

func (r *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

// --- deliverables ---

type fakeDeliverableRepo struct {
	mu           sync.Mutex
	deliverables map[uuid.UUID]*model.Deliverable
}

func newFakeDeliverableRepo(ds ...*model.Deliverable) *fakeDeliverableRepo {
	r := &fakeDeliverableRepo{deliverables: make(map[uuid.UUID]*model.Deliverable)}
	for _, d := range ds {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		cp := *d
		r.deliverables[d.ID] = &cp
	}
	return r
}

func (r *fakeDeliverableRepo) get(id uuid.UUID) *model.Deliverable {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.deliverables[id]
	return &cp
}

func (r *fakeDeliverableRepo) Create(_ context.Context, d *model.Deliverable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	cp := *d
	r.deliverables[d.ID] = &cp
	return nil
}

func (r *fakeDeliverableRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Deliverable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliverables[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDeliverableRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]model.Deliverable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Deliverable
	for _, d := range r.deliverables {
		if d.ProjectID == projectID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDeliverableRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	ds, _ := r.ListByProject(ctx, projectID)
	return int64(len(ds)), nil
}

func (r *fakeDeliverableRepo) Update(_ context.Context, d *model.Deliverable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.deliverables[d.ID] = &cp
	return nil
}

// --- invoices ---

type fakeInvoiceRepo struct {
	invoices []model.Invoice
	err      error
}

func (r *fakeInvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]model.Invoice, int64, error) {
	all, err := r.ListByClient(ctx, filter.ClientID)
	if err != nil {
		return nil, 0, err
	}
	var out []model.Invoice
	for _, inv := range all {
		if filter.Status == "" || inv.Status == filter.Status {
			out = append(out, inv)
		}
	}
	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(out) {
		return []model.Invoice{}, total, nil
	}
	end := start + filter.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeInvoiceRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]model.Invoice, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.ClientID == clientID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) CountByProject(_ context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	for _, inv := range r.invoices {
		if inv.ProjectID != nil && *inv.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

// --- notifications ---

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
	projectOwner  map[uuid.UUID]uuid.UUID
	createErr     error
	listErr       error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{projectOwner: make(map[uuid.UUID]uuid.UUID)}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	n.ID = uuid.New()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByProject(_ context.Context, projectID uuid.UUID, page, limit int) ([]model.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.notifications {
		if n.ProjectID == projectID {
			out = append(out, n)
		}
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return []model.Notification{}, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeNotificationRepo) RecentByClient(_ context.Context, clientID uuid.UUID, limit int) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.Notification
	for _, n := range r.notifications {
		if r.projectOwner[n.ProjectID] == clientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- clients ---

type fakeClientRepo struct {
	clients map[uuid.UUID]*model.Client
	err     error
}

func newFakeClientRepo(cs ...*model.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: make(map[uuid.UUID]*model.Client)}
	for _, c := range cs {
		cp := *c
		r.clients[c.ID] = &cp
	}
	return r
}

func (r *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) UpdateAnnualBudget(_ context.Context, id uuid.UUID, budget interface{}) error {
	c, ok := r.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	if budget == nil {
		c.AnnualBudget = decimal.NullDecimal{}
	} else {
		c.AnnualBudget = decimal.NewNullDecimal(budget.(decimal.Decimal))
	}
	return nil
}

// --- users ---

type fakeUserRepo struct {
	users map[string]*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range r.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

// --- infrastructure ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

// --- fixtures ---

func adminActor() *Actor {
	return &Actor{UserID: uuid.New(), Role: model.RoleAdmin}
}

func teamActor() *Actor {
	return &Actor{UserID: uuid.New(), Role: model.RoleTeam}
}

func clientActor(clientID uuid.UUID) *Actor {
	id := clientID
	return &Actor{UserID: uuid.New(), Role: model.RoleClient, ClientID: &id}
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pendingProject(clientID uuid.UUID, requested string) *model.Project {
	pending := model.BudgetStatusPending
	return &model.Project{
		ID:              uuid.New(),
		ClientID:        clientID,
		Title:           "Spring campaign",
		Status:          model.ProjectStatusRequestReceived,
		RequestedBudget: decimal.NewNullDecimal(dec(requested)),
		BudgetStatus:    &pending,
		CreatedAt:       time.Now(),
	}
}
