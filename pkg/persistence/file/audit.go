package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/veridoc/veridoc/pkg/models"
)

// AuditLogRepository stores the audit ledger as an append-only JSON-lines
// file at <root>/audit.log. Appends happen under a mutex so entries for the
// same document keep their submission order.
type AuditLogRepository struct {
	root string
	mu   sync.Mutex
}

// NewAuditLogRepository creates a new audit ledger repository.
func NewAuditLogRepository(root string) *AuditLogRepository {
	return &AuditLogRepository{root: root}
}

func (ar *AuditLogRepository) path() string {
	return path.Join(ar.root, "audit.log")
}

// AppendAuditLog appends one entry to the ledger. Entries are never updated
// or deleted afterwards.
func (ar *AuditLogRepository) AppendAuditLog(ctx context.Context, entry *models.AuditLogEntry) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	if err := os.MkdirAll(ar.root, 0o755); err != nil {
		return fmt.Errorf("failed to create root directory: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	f, err := os.OpenFile(ar.path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// AuditLog returns every ledger entry in append order.
func (ar *AuditLogRepository) AuditLog(ctx context.Context) ([]*models.AuditLogEntry, error) {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	f, err := os.Open(ar.path())
	if err != nil {
		if os.IsNotExist(err) {
			return make([]*models.AuditLogEntry, 0), nil
		}

		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	entries := make([]*models.AuditLogEntry, 0)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry models.AuditLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit entry: %w", err)
		}

		entries = append(entries, &entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	return entries, nil
}

// AuditLogByEntityID returns the entries affecting one entity, in append
// order.
func (ar *AuditLogRepository) AuditLogByEntityID(ctx context.Context, entityID string) ([]*models.AuditLogEntry, error) {
	entries, err := ar.AuditLog(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.AuditLogEntry, 0)

	for _, entry := range entries {
		if entry.EntityID == entityID {
			filtered = append(filtered, entry)
		}
	}

	return filtered, nil
}
