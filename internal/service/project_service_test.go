package service

import (
	"context"
	"testing"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectAsClient(t *testing.T) {
	clientID := uuid.New()
	f := newProjectFixture(repository.SchemaCapabilities{})

	resp, err := f.svc.CreateProject(context.Background(), clientActor(clientID), CreateProjectRequest{
		Title:           "  Brand film  ",
		Status:          model.ProjectStatusCompleted,
		RequestedBudget: strPtr("12500.50"),
		DueDate:         "2025-06-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "Brand film", resp.Title)
	assert.Equal(t, clientID.String(), resp.ClientID)
	assert.Equal(t, model.ProjectStatusRequestReceived, resp.Status)
	assert.Equal(t, model.DisplayStatusRequested, resp.DisplayStatus)
	assert.Equal(t, model.BudgetStatusPending, *resp.BudgetStatus)
	assert.Equal(t, "12500.50", *resp.RequestedBudget)
	assert.Equal(t, "2025-06-01", *resp.DueDate)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, model.NotificationProjectRequested, f.notifier.events[0].Type)
	assert.Contains(t, f.notifier.events[0].Message, "$12500.50")
}

func TestCreateProjectWithoutBudget(t *testing.T) {
	f := newProjectFixture(repository.SchemaCapabilities{})

	resp, err := f.svc.CreateProject(context.Background(), clientActor(uuid.New()), CreateProjectRequest{Title: "Podcast"})
	require.NoError(t, err)
	assert.Nil(t, resp.BudgetStatus)
	assert.Nil(t, resp.RequestedBudget)
}

func TestCreateProjectRejections(t *testing.T) {
	clientID := uuid.New()

	tests := []struct {
		name  string
		actor *Actor
		req   CreateProjectRequest
		want  error
	}{
		{name: "blank title", actor: clientActor(clientID), req: CreateProjectRequest{Title: "  "}, want: ErrInvalidInput},
		{name: "zero budget", actor: clientActor(clientID), req: CreateProjectRequest{Title: "x", RequestedBudget: strPtr("0")}, want: ErrInvalidInput},
		{name: "bad date", actor: clientActor(clientID), req: CreateProjectRequest{Title: "x", DueDate: "01/06/2025"}, want: ErrInvalidInput},
		{name: "other client", actor: clientActor(clientID), req: CreateProjectRequest{Title: "x", ClientID: uuid.NewString()}, want: ErrForbidden},
		{name: "client sets manager", actor: clientActor(clientID), req: CreateProjectRequest{Title: "x", AccountManagerName: "Sam"}, want: ErrForbidden},
		{name: "admin sets budget", actor: adminActor(), req: CreateProjectRequest{Title: "x", ClientID: clientID.String(), Status: model.ProjectStatusConfirmed, RequestedBudget: strPtr("1")}, want: ErrForbidden},
		{name: "admin bad status", actor: adminActor(), req: CreateProjectRequest{Title: "x", ClientID: clientID.String(), Status: "DONE"}, want: ErrInvalidInput},
		{name: "team", actor: teamActor(), req: CreateProjectRequest{Title: "x"}, want: ErrForbidden},
		{name: "anonymous", req: CreateProjectRequest{Title: "x"}, want: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProjectFixture(repository.SchemaCapabilities{})
			_, err := f.svc.CreateProject(context.Background(), tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.projects.projects)
		})
	}
}

func TestCreateProjectAsAdmin(t *testing.T) {
	clientID := uuid.New()
	f := newProjectFixture(repository.SchemaCapabilities{})

	resp, err := f.svc.CreateProject(context.Background(), adminActor(), CreateProjectRequest{
		ClientID:           clientID.String(),
		Title:              "Retainer",
		Status:             model.ProjectStatusInProduction,
		AccountManagerName: "Sam",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DisplayStatusInProgress, resp.DisplayStatus)
	assert.Equal(t, "Sam", resp.AccountManagerName)
	assert.Nil(t, resp.BudgetStatus)
	assert.Empty(t, f.notifier.events)
}

func TestGetAndListProjectsScopedToClient(t *testing.T) {
	clientA, clientB := uuid.New(), uuid.New()
	a := pendingProject(clientA, "100")
	b := pendingProject(clientB, "200")
	f := newProjectFixture(repository.SchemaCapabilities{}, a, b)
	ctx := context.Background()

	_, err := f.svc.GetProject(ctx, b.ID.String(), clientActor(clientA))
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err := f.svc.GetProject(ctx, b.ID.String(), teamActor())
	require.NoError(t, err)
	assert.Equal(t, b.ID.String(), resp.ID)

	list, total, err := f.svc.ListProjects(ctx, clientActor(clientA), ProjectListFilter{ClientID: clientB.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID.String(), list[0].ID)

	_, total, err = f.svc.ListProjects(ctx, adminActor(), ProjectListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestUpdateProjectFieldPermissions(t *testing.T) {
	clientID := uuid.New()
	p := pendingProject(clientID, "100")
	ctx := context.Background()

	t.Run("client edits description", func(t *testing.T) {
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		resp, err := f.svc.UpdateProject(ctx, p.ID.String(), clientActor(clientID), UpdateProjectRequest{
			Description: strPtr("Two days of filming"),
			DueDate:     strPtr("2025-09-30"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Two days of filming", resp.Description)
		assert.Equal(t, "2025-09-30", *resp.DueDate)
	})

	t.Run("client cannot change status", func(t *testing.T) {
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		_, err := f.svc.UpdateProject(ctx, p.ID.String(), clientActor(clientID), UpdateProjectRequest{
			Title:  strPtr("Renamed"),
			Status: strPtr("garbage"),
		})
		require.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, f.projects.updates)
		assert.Equal(t, p.Title, f.projects.get(p.ID).Title)
	})

	t.Run("client cannot touch another client's project", func(t *testing.T) {
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		_, err := f.svc.UpdateProject(ctx, p.ID.String(), clientActor(uuid.New()), UpdateProjectRequest{Notes: strPtr("x")})
		require.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, f.projects.updates)
	})

	t.Run("team is read only", func(t *testing.T) {
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		_, err := f.svc.UpdateProject(ctx, p.ID.String(), teamActor(), UpdateProjectRequest{Notes: strPtr("x")})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin moves project forward", func(t *testing.T) {
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		resp, err := f.svc.UpdateProject(ctx, p.ID.String(), adminActor(), UpdateProjectRequest{
			Status:             strPtr(model.ProjectStatusCompleted),
			AccountManagerName: strPtr("Robin"),
			DueDate:            strPtr(""),
		})
		require.NoError(t, err)
		assert.Equal(t, model.DisplayStatusCompleted, resp.DisplayStatus)
		assert.Equal(t, "Robin", resp.AccountManagerName)
		assert.Nil(t, resp.DueDate)
	})

	t.Run("admin invalid status", func(t *testing.T) {
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		_, err := f.svc.UpdateProject(ctx, p.ID.String(), adminActor(), UpdateProjectRequest{Status: strPtr("DONE")})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("nothing to update", func(t *testing.T) {
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		_, err := f.svc.UpdateProject(ctx, p.ID.String(), adminActor(), UpdateProjectRequest{})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUpdateProjectKeepsCancellationMarker(t *testing.T) {
	clientID := uuid.New()
	ctx := context.Background()
	notesOnly := repository.SchemaCapabilities{
		AuditColumns:    repository.CapabilityUnsupported,
		CancelledStatus: repository.CapabilityUnsupported,
	}

	t.Run("client cannot rewrite notes of a cancelled project", func(t *testing.T) {
		p := activeProject(clientID)
		f := newProjectFixture(notesOnly, p)
		_, err := f.svc.CancelProject(ctx, p.ID.String(), clientActor(clientID))
		require.NoError(t, err)
		f.projects.updates = nil

		_, err = f.svc.UpdateProject(ctx, p.ID.String(), clientActor(clientID), UpdateProjectRequest{Notes: strPtr("Shoot on location")})
		require.ErrorIs(t, err, ErrInvalidState)
		assert.Empty(t, f.projects.updates)
		assert.Equal(t, model.DisplayStatusCancelled, f.projects.get(p.ID).DisplayStatus())
	})

	t.Run("client cannot write the marker", func(t *testing.T) {
		p := activeProject(clientID)
		f := newProjectFixture(notesOnly, p)

		_, err := f.svc.UpdateProject(ctx, p.ID.String(), clientActor(clientID), UpdateProjectRequest{
			Notes: strPtr("Shoot on location" + wantMarker),
		})
		require.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, f.projects.updates)
		assert.Empty(t, f.notifier.events)
		assert.Equal(t, model.DisplayStatusInProgress, f.projects.get(p.ID).DisplayStatus())
	})

	t.Run("admin may still edit notes", func(t *testing.T) {
		p := activeProject(clientID)
		p.Notes += wantMarker
		f := newProjectFixture(notesOnly, p)

		resp, err := f.svc.UpdateProject(ctx, p.ID.String(), adminActor(), UpdateProjectRequest{Notes: strPtr("Restored by support")})
		require.NoError(t, err)
		assert.Equal(t, model.DisplayStatusInProgress, resp.DisplayStatus)
	})
}

func TestDeleteProject(t *testing.T) {
	clientID := uuid.New()
	ctx := context.Background()

	t.Run("admin deletes an empty project", func(t *testing.T) {
		p := pendingProject(clientID, "100")
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		require.NoError(t, f.notifications.Create(ctx, &model.Notification{ProjectID: p.ID, NotificationType: model.NotificationProjectRequested}))

		require.NoError(t, f.svc.DeleteProject(ctx, p.ID.String(), adminActor()))
		assert.Empty(t, f.projects.projects)
		// Activity rows are left to the foreign key cascade.
		assert.Len(t, f.notifications.notifications, 1)
	})

	t.Run("project with invoices must be cancelled instead", func(t *testing.T) {
		p := pendingProject(clientID, "100")
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		f.invoices.invoices = []model.Invoice{{ID: uuid.New(), ClientID: clientID, ProjectID: &p.ID, Amount: dec("50")}}

		err := f.svc.DeleteProject(ctx, p.ID.String(), adminActor())
		require.ErrorIs(t, err, ErrInvalidState)
		assert.Len(t, f.projects.projects, 1)
	})

	t.Run("project with deliverables must be cancelled instead", func(t *testing.T) {
		p := pendingProject(clientID, "100")
		f := newProjectFixture(repository.SchemaCapabilities{}, p)
		require.NoError(t, f.deliverables.Create(ctx, &model.Deliverable{ProjectID: p.ID, Title: "Cut 1"}))

		err := f.svc.DeleteProject(ctx, p.ID.String(), adminActor())
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("client cannot delete", func(t *testing.T) {
		p := pendingProject(clientID, "100")
		f := newProjectFixture(repository.SchemaCapabilities{}, p)

		err := f.svc.DeleteProject(ctx, p.ID.String(), clientActor(clientID))
		require.ErrorIs(t, err, ErrForbidden)
		assert.Len(t, f.projects.projects, 1)
	})

	t.Run("missing project", func(t *testing.T) {
		f := newProjectFixture(repository.SchemaCapabilities{})
		err := f.svc.DeleteProject(ctx, uuid.NewString(), adminActor())
		require.ErrorIs(t, err, ErrNotFound)
	})
}
