package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus enum constants
const (
	InvoiceStatusUnpaid  = "UNPAID"
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusPastDue = "PAST_DUE"
	// InvoiceStatusOverdue is written by older deployments instead of PAST_DUE.
	InvoiceStatusOverdue = "OVERDUE"
)

// Invoice is a billing record issued to a client, optionally for one project.
// The engine only reads invoices.
type Invoice struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNo string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	ClientID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	ProjectID *uuid.UUID      `gorm:"type:uuid;index" json:"project_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status    string          `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"status"`
	IssueDate *time.Time      `gorm:"type:date" json:"issue_date"`
	DueDate   *time.Time      `gorm:"type:date" json:"due_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsDue reports whether the invoice still awaits payment.
// OVERDUE is the legacy spelling of PAST_DUE.
func (i *Invoice) IsDue() bool {
	switch i.Status {
	case InvoiceStatusUnpaid, InvoiceStatusPastDue, InvoiceStatusOverdue:
		return true
	}
	return false
}

// RecencyKey is the ISO-8601 string used to order invoices newest first:
// the issue date when present, the creation timestamp otherwise.
func (i *Invoice) RecencyKey() string {
	if i.IssueDate != nil {
		return i.IssueDate.UTC().Format("2006-01-02")
	}
	return i.CreatedAt.UTC().Format(time.RFC3339)
}
