package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStatus enum constants
const (
	ProjectStatusRequestReceived = "REQUEST_RECEIVED"
	ProjectStatusConfirmed       = "CONFIRMED"
	ProjectStatusInProduction    = "IN_PRODUCTION"
	ProjectStatusPostProduction  = "POST_PRODUCTION"
	ProjectStatusFinalReview     = "FINAL_REVIEW"
	ProjectStatusCompleted       = "COMPLETED"
	ProjectStatusCancelled       = "CANCELLED"
)

// BudgetStatus enum constants
const (
	BudgetStatusPending         = "PENDING"
	BudgetStatusApproved        = "APPROVED"
	BudgetStatusCounterProposed = "COUNTER_PROPOSED"
	BudgetStatusRejected        = "REJECTED"
)

// Display statuses shown to users instead of the raw enum
const (
	DisplayStatusRequested  = "Requested"
	DisplayStatusInProgress = "In Progress"
	DisplayStatusCompleted  = "Completed"
	DisplayStatusCancelled  = "Cancelled"
)

// CancellationMarker prefixes the note appended when a client cancels a project.
const CancellationMarker = "[CANCELLED"

// Project is the unit of engagement work requested by, and owned by, a client.
type Project struct {
	ID                  uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID            uuid.UUID           `gorm:"type:uuid;not null;index" json:"client_id"`
	Client              *Client             `gorm:"foreignKey:ClientID" json:"-"`
	Title               string              `gorm:"type:varchar(255);not null" json:"title"`
	Description         string              `gorm:"type:text" json:"description"`
	Status              string              `gorm:"type:varchar(30);not null;default:'REQUEST_RECEIVED';index" json:"status"`
	RequestedBudget     decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"requested_budget"`
	BudgetStatus        *string             `gorm:"type:varchar(30)" json:"budget_status"`
	ProposedBudget      decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"proposed_budget"`
	Notes               string              `gorm:"type:text" json:"notes"`
	AccountManagerName  string              `gorm:"type:varchar(255)" json:"account_manager_name"`
	AccountManagerEmail string              `gorm:"type:varchar(255)" json:"account_manager_email"`
	DueDate             *time.Time          `gorm:"type:date" json:"due_date"`
	CancelledAt         *time.Time          `json:"cancelled_at"`
	CancelledBy         *uuid.UUID          `gorm:"type:uuid" json:"cancelled_by"`
	CreatedAt           time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// ProjectStatuses lists every status an admin may assign.
var ProjectStatuses = []string{
	ProjectStatusRequestReceived,
	ProjectStatusConfirmed,
	ProjectStatusInProduction,
	ProjectStatusPostProduction,
	ProjectStatusFinalReview,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
}

// IsValidProjectStatus reports whether s is a known project status.
func IsValidProjectStatus(s string) bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsActiveStatus reports whether the raw status is one of the in-production states.
func IsActiveStatus(s string) bool {
	switch s {
	case ProjectStatusConfirmed, ProjectStatusInProduction, ProjectStatusPostProduction, ProjectStatusFinalReview:
		return true
	}
	return false
}

// IsCancelled is true when the status says so or when the notes carry the
// cancellation marker left by schemas that cannot store CANCELLED.
func (p *Project) IsCancelled() bool {
	return p.Status == ProjectStatusCancelled || strings.Contains(p.Notes, CancellationMarker)
}

// DisplayStatus derives the user-facing status. Callers rendering a project
// must use this rather than the raw Status.
func (p *Project) DisplayStatus() string {
	if p.IsCancelled() {
		return DisplayStatusCancelled
	}
	if p.Status == ProjectStatusCompleted {
		return DisplayStatusCompleted
	}
	if IsActiveStatus(p.Status) {
		return DisplayStatusInProgress
	}
	return DisplayStatusRequested
}

// CurrentBudgetStatus returns the budget status or "" when no budget was requested.
func (p *Project) CurrentBudgetStatus() string {
	if p.BudgetStatus == nil {
		return ""
	}
	return *p.BudgetStatus
}
