package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UpdateAnnualBudgetRequest struct {
	// AnnualBudget is a non-negative decimal string; null or "" clears it.
	AnnualBudget *string `json:"annual_budget"`
}

type ClientResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ContactEmail string  `json:"contact_email"`
	AnnualBudget *string `json:"annual_budget"`
}

type ClientService interface {
	UpdateAnnualBudget(ctx context.Context, clientID uuid.UUID, actor *Actor, req UpdateAnnualBudgetRequest) (ClientResponse, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
	logger     *slog.Logger
}

func NewClientService(clientRepo repository.ClientRepository, logger *slog.Logger) ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &clientService{clientRepo: clientRepo, logger: logger}
}

// UpdateAnnualBudget lets the owning client set or clear the budget the
// dashboard measures spending against.
func (s *clientService) UpdateAnnualBudget(ctx context.Context, clientID uuid.UUID, actor *Actor, req UpdateAnnualBudgetRequest) (ClientResponse, error) {
	if err := authorizeFields(actor, EntityClient, []string{"annual_budget"}); err != nil {
		return ClientResponse{}, err
	}
	if !actor.Owns(clientID) {
		return ClientResponse{}, newError(KindForbidden, "only the owning client can change its annual budget")
	}

	var value interface{}
	if req.AnnualBudget != nil && strings.TrimSpace(*req.AnnualBudget) != "" {
		budget, err := decimal.NewFromString(strings.TrimSpace(*req.AnnualBudget))
		if err != nil {
			return ClientResponse{}, newError(KindInvalidInput, "invalid annual_budget: %v", err)
		}
		if budget.IsNegative() {
			return ClientResponse{}, newError(KindInvalidInput, "annual_budget cannot be negative")
		}
		value = budget
	}

	if err := s.clientRepo.UpdateAnnualBudget(ctx, clientID, value); err != nil {
		return ClientResponse{}, storeError("client", err)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return ClientResponse{}, storeError("client", err)
	}
	s.logger.InfoContext(ctx, "annual budget updated", "client_id", clientID, "cleared", value == nil)

	return ClientResponse{
		ID:           client.ID.String(),
		Name:         client.Name,
		ContactEmail: client.ContactEmail,
		AnnualBudget: nullDecimalString(client.AnnualBudget),
	}, nil
}
