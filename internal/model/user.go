package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
	RoleTeam   = "TEAM"
)

// User is a portal login. CLIENT users are bound to exactly one Client.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name      string         `gorm:"type:varchar(255)" json:"name"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"`
	Role      string         `gorm:"type:varchar(20);not null" json:"role"` // ADMIN, CLIENT, TEAM
	ClientID  *uuid.UUID     `gorm:"type:uuid;index" json:"client_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor is the authenticated identity performing an operation, resolved from
// the request before any service is invoked.
type Actor struct {
	UserID   uuid.UUID
	Role     string
	ClientID *uuid.UUID // set for CLIENT actors
}

// IsAdmin reports whether the actor has the ADMIN role.
func (a *Actor) IsAdmin() bool { return a != nil && a.Role == RoleAdmin }

// IsClient reports whether the actor has the CLIENT role.
func (a *Actor) IsClient() bool { return a != nil && a.Role == RoleClient }

// Owns reports whether a CLIENT actor owns the given client id.
func (a *Actor) Owns(clientID uuid.UUID) bool {
	return a.IsClient() && a.ClientID != nil && *a.ClientID == clientID
}
