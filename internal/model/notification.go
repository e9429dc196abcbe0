package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by lifecycle transitions
const (
	NotificationProjectRequested      = "PROJECT_REQUESTED"
	NotificationBudgetApproved        = "BUDGET_APPROVED"
	NotificationBudgetRejected        = "BUDGET_REJECTED"
	NotificationBudgetCounterProposed = "BUDGET_COUNTER_PROPOSED"
	NotificationBudgetCounterAccepted = "BUDGET_COUNTER_ACCEPTED"
	NotificationProjectCancelled      = "PROJECT_CANCELLED"
	NotificationDeliverableApproved   = "APPROVED"
	NotificationChangesRequested      = "CHANGES_REQUESTED"
)

// Notification is an append-only activity entry. The application never updates
// or deletes rows; the database drops them when their project is hard-deleted.
type Notification struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID        uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project          *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	NotificationType string    `gorm:"type:varchar(50);not null;index" json:"notification_type"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}
