package service

import (
	"sort"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor = model.Actor

// Entities covered by the field permission table
const (
	EntityProject     = "project"
	EntityDeliverable = "deliverable"
	EntityClient      = "client"
)

type permissionKey struct {
	Role   string
	Entity string
	Field  string
}

// fieldPermissions is the single (role, entity, field) table consulted by every
// mutation path. Fields absent from the table are not writable by that role.
var fieldPermissions = buildPermissions(map[string]map[string][]string{
	model.RoleAdmin: {
		EntityProject: {
			"title", "description", "status", "client_id", "notes",
			"account_manager_name", "account_manager_email", "due_date",
		},
		EntityDeliverable: {"title", "description", "file_key", "status"},
	},
	model.RoleClient: {
		EntityProject:     {"title", "description", "notes", "due_date"},
		EntityDeliverable: {"status"},
		EntityClient:      {"annual_budget"},
	},
})

// valueRestrictions narrows the values a role may write into a permitted field.
var valueRestrictions = map[permissionKey][]string{
	{model.RoleClient, EntityDeliverable, "status"}: {model.DeliverableApproved, model.DeliverableChangesRequested},
}

func buildPermissions(spec map[string]map[string][]string) map[permissionKey]bool {
	table := make(map[permissionKey]bool)
	for role, entities := range spec {
		for entity, fields := range entities {
			for _, field := range fields {
				table[permissionKey{Role: role, Entity: entity, Field: field}] = true
			}
		}
	}
	return table
}

// CanWriteField reports whether role may modify entity.field.
func CanWriteField(role, entity, field string) bool {
	return fieldPermissions[permissionKey{Role: role, Entity: entity, Field: field}]
}

// authorizeFields fails with Forbidden on the first field the actor may not write.
// Fields are checked in sorted order so the error is deterministic.
func authorizeFields(actor *Actor, entity string, fields []string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	for _, f := range sorted {
		if !CanWriteField(actor.Role, entity, f) {
			return newError(KindForbidden, "role %s may not modify %s.%s", actor.Role, entity, f)
		}
	}
	return nil
}

// authorizeValue enforces valueRestrictions for a field the actor may already write.
func authorizeValue(actor *Actor, entity, field, value string) error {
	allowed, restricted := valueRestrictions[permissionKey{Role: actor.Role, Entity: entity, Field: field}]
	if !restricted {
		return nil
	}
	for _, v := range allowed {
		if v == value {
			return nil
		}
	}
	return newError(KindForbidden, "role %s may not set %s.%s to %q", actor.Role, entity, field, value)
}

// authorizeProjectRead lets ADMIN and TEAM read any project and CLIENT only its own.
func authorizeProjectRead(actor *Actor, project *model.Project) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsClient() && !actor.Owns(project.ClientID) {
		return newError(KindForbidden, "project belongs to another client")
	}
	return nil
}

// AuthorizeClientView checks that actor may read client-level data such as the dashboard.
func AuthorizeClientView(actor *Actor, clientID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeam:
		return nil
	case model.RoleClient:
		if actor.Owns(clientID) {
			return nil
		}
	}
	return newError(KindForbidden, "access to client %s denied", clientID)
}
