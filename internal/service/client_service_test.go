package service

import (
	"context"
	"testing"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAnnualBudget(t *testing.T) {
	clientID := uuid.New()
	ctx := context.Background()

	newSvc := func() (ClientService, *fakeClientRepo) {
		repo := newFakeClientRepo(&model.Client{ID: clientID, Name: "Acme", AnnualBudget: decimal.NewNullDecimal(dec("1000"))})
		return NewClientService(repo, discardLogger()), repo
	}

	t.Run("owner sets budget", func(t *testing.T) {
		svc, repo := newSvc()
		resp, err := svc.UpdateAnnualBudget(ctx, clientID, clientActor(clientID), UpdateAnnualBudgetRequest{AnnualBudget: strPtr("48000")})
		require.NoError(t, err)
		assert.Equal(t, "48000.00", *resp.AnnualBudget)
		assert.True(t, repo.clients[clientID].AnnualBudget.Decimal.Equal(dec("48000")))
	})

	t.Run("empty clears", func(t *testing.T) {
		svc, repo := newSvc()
		resp, err := svc.UpdateAnnualBudget(ctx, clientID, clientActor(clientID), UpdateAnnualBudgetRequest{AnnualBudget: strPtr(" ")})
		require.NoError(t, err)
		assert.Nil(t, resp.AnnualBudget)
		assert.False(t, repo.clients[clientID].AnnualBudget.Valid)
	})

	t.Run("negative", func(t *testing.T) {
		svc, _ := newSvc()
		_, err := svc.UpdateAnnualBudget(ctx, clientID, clientActor(clientID), UpdateAnnualBudgetRequest{AnnualBudget: strPtr("-1")})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("other client", func(t *testing.T) {
		svc, repo := newSvc()
		_, err := svc.UpdateAnnualBudget(ctx, clientID, clientActor(uuid.New()), UpdateAnnualBudgetRequest{AnnualBudget: strPtr("1")})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.True(t, repo.clients[clientID].AnnualBudget.Decimal.Equal(dec("1000")))
	})

	t.Run("admin cannot set a client budget", func(t *testing.T) {
		svc, _ := newSvc()
		_, err := svc.UpdateAnnualBudget(ctx, clientID, adminActor(), UpdateAnnualBudgetRequest{AnnualBudget: strPtr("1")})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestListProjectNotifications(t *testing.T) {
	clientID := uuid.New()
	p := pendingProject(clientID, "100")
	projects := newFakeProjectRepo(p)
	notifications := newFakeNotificationRepo()
	for i := 0; i < 3; i++ {
		require.NoError(t, notifications.Create(context.Background(), &model.Notification{
			ProjectID:        p.ID,
			NotificationType: model.NotificationBudgetApproved,
			Message:          "approved",
		}))
	}
	svc := NewNotificationService(notifications, projects)
	ctx := context.Background()

	entries, total, err := svc.ListProjectNotifications(ctx, p.ID.String(), clientActor(clientID), 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, entries, 2)
	assert.Equal(t, model.NotificationBudgetApproved, entries[0].NotificationType)

	_, _, err = svc.ListProjectNotifications(ctx, p.ID.String(), clientActor(uuid.New()), 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListClientInvoices(t *testing.T) {
	clientID := uuid.New()
	repo := &fakeInvoiceRepo{invoices: []model.Invoice{
		{ID: uuid.New(), InvoiceNo: "INV-1", ClientID: clientID, Amount: dec("10"), Status: model.InvoiceStatusPaid},
		{ID: uuid.New(), InvoiceNo: "INV-2", ClientID: clientID, Amount: dec("20"), Status: model.InvoiceStatusUnpaid},
		{ID: uuid.New(), InvoiceNo: "INV-3", ClientID: uuid.New(), Amount: dec("30"), Status: model.InvoiceStatusUnpaid},
	}}
	svc := NewInvoiceService(repo)
	ctx := context.Background()

	list, total, err := svc.ListClientInvoices(ctx, clientID, clientActor(clientID), InvoiceListFilter{Status: "unpaid"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "INV-2", list[0].InvoiceNo)

	_, total, err = svc.ListClientInvoices(ctx, clientID, teamActor(), InvoiceListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, _, err = svc.ListClientInvoices(ctx, clientID, clientActor(uuid.New()), InvoiceListFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.ListClientInvoices(ctx, clientID, adminActor(), InvoiceListFilter{Status: "VOID"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
