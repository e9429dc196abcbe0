package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliverableStatus enum constants
const (
	DeliverableAwaitingApproval = "AWAITING_APPROVAL"
	DeliverableApproved         = "APPROVED"
	DeliverableChangesRequested = "CHANGES_REQUESTED"
)

// Deliverable is a unit of client-facing output attached to a Project.
type Deliverable struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"-"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	FileKey     string    `gorm:"type:varchar(512)" json:"file_key"` // object storage key, optional
	Status      string    `gorm:"type:varchar(30);not null;default:'AWAITING_APPROVAL';index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsValidDeliverableStatus reports whether s is a known deliverable status.
func IsValidDeliverableStatus(s string) bool {
	switch s {
	case DeliverableAwaitingApproval, DeliverableApproved, DeliverableChangesRequested:
		return true
	}
	return false
}
