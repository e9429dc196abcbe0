package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanWriteField(t *testing.T) {
	tests := []struct {
		role, entity, field string
		want                bool
	}{
		{model.RoleAdmin, EntityProject, "status", true},
		{model.RoleAdmin, EntityProject, "account_manager_email", true},
		{model.RoleAdmin, EntityProject, "requested_budget", false},
		{model.RoleAdmin, EntityClient, "annual_budget", false},
		{model.RoleClient, EntityProject, "title", true},
		{model.RoleClient, EntityProject, "status", false},
		{model.RoleClient, EntityProject, "client_id", false},
		{model.RoleClient, EntityDeliverable, "status", true},
		{model.RoleClient, EntityDeliverable, "title", false},
		{model.RoleClient, EntityClient, "annual_budget", true},
		{model.RoleTeam, EntityProject, "notes", false},
		{model.RoleTeam, EntityDeliverable, "status", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanWriteField(tt.role, tt.entity, tt.field), "%s %s.%s", tt.role, tt.entity, tt.field)
	}
}

func TestAuthorizeFieldsReportsFirstSortedField(t *testing.T) {
	err := authorizeFields(clientActor(uuid.New()), EntityProject, []string{"title", "status", "client_id"})
	require.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "project.client_id")
}

func TestAuthorizeClientView(t *testing.T) {
	clientID := uuid.New()
	assert.NoError(t, AuthorizeClientView(adminActor(), clientID))
	assert.NoError(t, AuthorizeClientView(teamActor(), clientID))
	assert.NoError(t, AuthorizeClientView(clientActor(clientID), clientID))
	assert.ErrorIs(t, AuthorizeClientView(clientActor(uuid.New()), clientID), ErrForbidden)
	assert.ErrorIs(t, AuthorizeClientView(nil, clientID), ErrUnauthorized)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(storeError("project", repository.ErrNotFound)))
	assert.Equal(t, KindPersistenceUnavailable, KindOf(storeError("project", errStoreDown)))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

type panickingSink struct{}

func (panickingSink) Name() string { return "panicky" }

func (panickingSink) Deliver(context.Context, Event) error { panic("boom") }

type failingSink struct{}

func (failingSink) Name() string { return "failing" }

func (failingSink) Deliver(context.Context, Event) error { return errStoreDown }

func TestNotifierAbsorbsSinkFailures(t *testing.T) {
	store := newFakeNotificationRepo()
	n := NewNotifier(discardLogger(), panickingSink{}, failingSink{}, NewStoreSink(store))

	p := pendingProject(uuid.New(), "100")
	require.NotPanics(t, func() {
		n.Notify(context.Background(), projectEvent(p, model.NotificationBudgetApproved, "ok"))
	})

	require.Len(t, store.notifications, 1)
	stored := store.notifications[0]
	assert.Equal(t, p.ID, stored.ProjectID)
	assert.Equal(t, model.NotificationBudgetApproved, stored.NotificationType)
	assert.False(t, stored.CreatedAt.IsZero())
}
