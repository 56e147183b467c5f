package models

import "time"

// AuditLogEntry is one record in the append-only audit ledger. Entries are
// totally ordered by timestamp and never updated or deleted; every
// state-changing operation produces exactly one entry.
type AuditLogEntry struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actor_id"`
	ActorName string         `json:"actor_name"`
	ActorRole Role           `json:"actor_role"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
