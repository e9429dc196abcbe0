package repository

import (
	"context"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceFilter narrows a client's invoice listing. Status "" means any.
type InvoiceFilter struct {
	ClientID uuid.UUID
	Status   string
	Page     int
	Limit    int
}

type InvoiceRepository interface {
	// List pages through one client's invoices, newest issue date first.
	List(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, int64, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("client_id = ?", filter.ClientID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	if err := scope(db.Model(&model.Invoice{})).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit
	err := scope(db).
		Order("COALESCE(issue_date, created_at) desc").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return invoices, total, nil
}

func (r *invoiceRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := GetDB(ctx, r.db).Where("client_id = ?", clientID).Order("created_at desc").Find(&invoices).Error; err != nil {
		return nil, translate(err)
	}
	return invoices, nil
}

func (r *invoiceRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Invoice{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}
