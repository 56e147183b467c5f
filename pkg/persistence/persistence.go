// Package persistence provides the data storage abstraction layer for
// documents, workflow catalogs, users, and the audit ledger.
package persistence

import (
	"context"

	"github.com/veridoc/veridoc/pkg/models"
)

// DocumentRepository stores controlled documents. Save replaces the whole
// document record; the workflow engine owns all mutation of revisions and
// approvals and commits them through Save as a single write. Delete exists
// only so the engine can undo a registration whose audit entry failed to
// commit; deleting an absent record is a no-op.
type DocumentRepository interface {
	Documents(ctx context.Context) ([]*models.ControlledDocument, error)
	DocumentByID(ctx context.Context, id string) (*models.ControlledDocument, error)
	SaveDocument(ctx context.Context, document *models.ControlledDocument) error
	DeleteDocument(ctx context.Context, id string) error
}

// WorkflowRepository provides read access to the workflow catalog. The
// engine never writes workflow definitions.
type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error)
	WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
}

// UserRepository provides read access to user profiles.
type UserRepository interface {
	Users(ctx context.Context) ([]*models.UserProfile, error)
	UserByID(ctx context.Context, id string) (*models.UserProfile, error)
}

// AuditLogRepository is the append-only audit ledger sink. Implementations
// must preserve append order for entries of the same entity and must never
// update or delete entries.
type AuditLogRepository interface {
	AppendAuditLog(ctx context.Context, entry *models.AuditLogEntry) error
	AuditLog(ctx context.Context) ([]*models.AuditLogEntry, error)
	AuditLogByEntityID(ctx context.Context, entityID string) ([]*models.AuditLogEntry, error)
}

// Persistence aggregates the repositories behind a single provider handle.
type Persistence interface {
	DocumentRepository() DocumentRepository
	WorkflowRepository() WorkflowRepository
	UserRepository() UserRepository
	AuditLogRepository() AuditLogRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
