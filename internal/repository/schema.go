package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"gorm.io/gorm"
)

// Capability is a tri-state answer about the deployed schema.
type Capability int8

const (
	CapabilityUnknown Capability = iota
	CapabilitySupported
	CapabilityUnsupported
)

func (c Capability) String() string {
	switch c {
	case CapabilitySupported:
		return "supported"
	case CapabilityUnsupported:
		return "unsupported"
	}
	return "unknown"
}

func (c Capability) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCapability reads a config value: auto/empty, true/enabled/yes, false/disabled/no.
func ParseCapability(s string) (Capability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return CapabilityUnknown, nil
	case "true", "enabled", "yes", "supported":
		return CapabilitySupported, nil
	case "false", "disabled", "no", "unsupported":
		return CapabilityUnsupported, nil
	}
	return CapabilityUnknown, fmt.Errorf("invalid capability value %q (want auto, enabled or disabled)", s)
}

// SchemaCapabilities describes which shape of the projects table is deployed.
// Deployments are migrated incrementally, so the oldest shape has neither.
type SchemaCapabilities struct {
	AuditColumns    Capability `json:"audit_columns"`    // cancelled_at and cancelled_by exist
	CancelledStatus Capability `json:"cancelled_status"` // status accepts CANCELLED
}

// Merge returns c with every unknown capability taken from other.
func (c SchemaCapabilities) Merge(other SchemaCapabilities) SchemaCapabilities {
	if c.AuditColumns == CapabilityUnknown {
		c.AuditColumns = other.AuditColumns
	}
	if c.CancelledStatus == CapabilityUnknown {
		c.CancelledStatus = other.CancelledStatus
	}
	return c
}

// CapabilityRegistry holds the capabilities resolved at startup and whatever
// later statements reveal about them.
type CapabilityRegistry struct {
	mu   sync.RWMutex
	caps SchemaCapabilities
}

func NewCapabilityRegistry(initial SchemaCapabilities) *CapabilityRegistry {
	return &CapabilityRegistry{caps: initial}
}

func (r *CapabilityRegistry) Snapshot() SchemaCapabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caps
}

func (r *CapabilityRegistry) SetAuditColumns(c Capability) {
	r.mu.Lock()
	r.caps.AuditColumns = c
	r.mu.Unlock()
}

func (r *CapabilityRegistry) SetCancelledStatus(c Capability) {
	r.mu.Lock()
	r.caps.CancelledStatus = c
	r.mu.Unlock()
}

// DetectSchemaCapabilities inspects the Postgres catalog for the projects table.
// Anything it cannot determine is left unknown.
func DetectSchemaCapabilities(ctx context.Context, db *gorm.DB) (SchemaCapabilities, error) {
	var caps SchemaCapabilities
	db = db.WithContext(ctx)

	migrator := db.Migrator()
	if !migrator.HasTable(&model.Project{}) {
		return caps, &SchemaError{Kind: MissingTable, Err: fmt.Errorf("table projects does not exist")}
	}

	if migrator.HasColumn(&model.Project{}, "cancelled_at") && migrator.HasColumn(&model.Project{}, "cancelled_by") {
		caps.AuditColumns = CapabilitySupported
	} else {
		caps.AuditColumns = CapabilityUnsupported
	}

	status, err := detectCancelledStatus(db)
	if err != nil {
		return caps, fmt.Errorf("failed to inspect projects.status: %w", err)
	}
	caps.CancelledStatus = status
	return caps, nil
}

func detectCancelledStatus(db *gorm.DB) (Capability, error) {
	var column struct {
		DataType string
		UdtName  string
	}
	if err := db.Raw(`
		SELECT data_type, udt_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = 'projects' AND column_name = 'status'
	`).Scan(&column).Error; err != nil {
		return CapabilityUnknown, err
	}

	if column.DataType == "USER-DEFINED" {
		var found bool
		if err := db.Raw(`
			SELECT EXISTS (
				SELECT 1 FROM pg_enum e JOIN pg_type t ON t.oid = e.enumtypid
				WHERE t.typname = ? AND e.enumlabel = ?
			)
		`, column.UdtName, model.ProjectStatusCancelled).Scan(&found).Error; err != nil {
			return CapabilityUnknown, err
		}
		if found {
			return CapabilitySupported, nil
		}
		return CapabilityUnsupported, nil
	}

	var defs []string
	if err := db.Raw(`
		SELECT pg_get_constraintdef(c.oid) FROM pg_constraint c
		JOIN pg_class t ON t.oid = c.conrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY (c.conkey)
		WHERE t.relname = 'projects' AND c.contype = 'c' AND a.attname = 'status'
	`).Scan(&defs).Error; err != nil {
		return CapabilityUnknown, err
	}
	return capabilityFromCheckConstraints(defs), nil
}

// statusColumnRef matches the bare status column in a constraint definition,
// not budget_status or other *_status columns.
var statusColumnRef = regexp.MustCompile(`(^|[^a-z0-9_"])"?status"?($|[^a-z0-9_"])`)

// capabilityFromCheckConstraints decides from CHECK definitions whether the
// status column accepts CANCELLED. No constraint on status means any text goes.
func capabilityFromCheckConstraints(defs []string) Capability {
	for _, def := range defs {
		if !statusColumnRef.MatchString(strings.ToLower(def)) {
			continue
		}
		if !strings.Contains(def, "'"+model.ProjectStatusCancelled+"'") {
			return CapabilityUnsupported
		}
	}
	return CapabilitySupported
}

// ResolveSchemaCapabilities combines configured overrides with catalog
// detection. Overrides win; detection only runs when something is left unknown.
func ResolveSchemaCapabilities(ctx context.Context, db *gorm.DB, override SchemaCapabilities) (SchemaCapabilities, error) {
	if override.AuditColumns != CapabilityUnknown && override.CancelledStatus != CapabilityUnknown {
		return override, nil
	}
	detected, err := DetectSchemaCapabilities(ctx, db)
	return override.Merge(detected), err
}
