package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is an agency customer owning projects and invoices.
type Client struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string              `gorm:"type:varchar(255);not null" json:"name"`
	ContactEmail string              `gorm:"type:varchar(255)" json:"contact_email"`
	AnnualBudget decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"annual_budget"` // set by the client, dashboard input only
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}
