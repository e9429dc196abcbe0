package service

import (
	"context"
	"strings"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
)

type InvoiceListFilter struct {
	Status string // UNPAID, PAID, PAST_DUE, OVERDUE or empty for all
	Page   int
	Limit  int
}

// InvoiceService exposes a client's invoices. Invoices are issued by billing,
// never written here.
type InvoiceService interface {
	ListClientInvoices(ctx context.Context, clientID uuid.UUID, actor *Actor, filter InvoiceListFilter) ([]InvoiceSummary, int64, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
}

func NewInvoiceService(invoiceRepo repository.InvoiceRepository) InvoiceService {
	return &invoiceService{invoiceRepo: invoiceRepo}
}

func (s *invoiceService) ListClientInvoices(ctx context.Context, clientID uuid.UUID, actor *Actor, filter InvoiceListFilter) ([]InvoiceSummary, int64, error) {
	if err := AuthorizeClientView(actor, clientID); err != nil {
		return nil, 0, err
	}

	status := strings.ToUpper(strings.TrimSpace(filter.Status))
	switch status {
	case "", model.InvoiceStatusUnpaid, model.InvoiceStatusPaid, model.InvoiceStatusPastDue, model.InvoiceStatusOverdue:
	default:
		return nil, 0, newError(KindInvalidInput, "invalid invoice status %q", filter.Status)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repository.InvoiceFilter{
		ClientID: clientID,
		Status:   status,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, 0, storeError("invoices", err)
	}

	result := make([]InvoiceSummary, 0, len(invoices))
	for i := range invoices {
		result = append(result, toInvoiceSummary(&invoices[i]))
	}
	return result, total, nil
}
