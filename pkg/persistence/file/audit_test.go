package file

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc/veridoc/pkg/models"
)

func TestAuditLogRepository_AppendPreservesOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAuditLogRepository(t.TempDir())

	for i := range 5 {
		entry := &models.AuditLogEntry{
			ID:        fmt.Sprintf("entry-%d", i),
			Action:    fmt.Sprintf("Workflow step 'Step %d' approved", i),
			ActorID:   "u-qa",
			Entity:    "document",
			EntityID:  "doc-1",
			Timestamp: time.Now(),
		}
		require.NoError(t, repo.AppendAuditLog(ctx, entry))
	}

	entries, err := repo.AuditLog(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("entry-%d", i), entry.ID)
	}
}

func TestAuditLogRepository_FilterByEntity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAuditLogRepository(t.TempDir())

	require.NoError(t, repo.AppendAuditLog(ctx, &models.AuditLogEntry{ID: "e1", EntityID: "doc-1", Entity: "document"}))
	require.NoError(t, repo.AppendAuditLog(ctx, &models.AuditLogEntry{ID: "e2", EntityID: "doc-2", Entity: "document"}))
	require.NoError(t, repo.AppendAuditLog(ctx, &models.AuditLogEntry{ID: "e3", EntityID: "doc-1", Entity: "document"}))

	entries, err := repo.AuditLogByEntityID(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e3", entries[1].ID)
}

func TestAuditLogRepository_EmptyLedger(t *testing.T) {
	t.Parallel()

	repo := NewAuditLogRepository(t.TempDir())

	entries, err := repo.AuditLog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAuditLogRepository_ContextRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAuditLogRepository(t.TempDir())

	entry := &models.AuditLogEntry{
		ID:       "e1",
		Action:   "Lifecycle status updated to Effective",
		EntityID: "doc-1",
		Context: map[string]any{
			"lifecycleStatus": "Effective",
			"previousStatus":  "Draft",
		},
	}
	require.NoError(t, repo.AppendAuditLog(ctx, entry))

	entries, err := repo.AuditLog(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Effective", entries[0].Context["lifecycleStatus"])
}
