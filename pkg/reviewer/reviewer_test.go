package reviewer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc/veridoc/pkg/eventbus"
	"github.com/veridoc/veridoc/pkg/events"
	"github.com/veridoc/veridoc/pkg/log"
	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/persistence/file"
	"github.com/veridoc/veridoc/pkg/reviewer"
)

// capturingBus records published events for assertions.
type capturingBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *capturingBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)

	return nil
}

func (b *capturingBus) Handle(_ events.EventType, _ eventbus.EventHandler) {}

func (b *capturingBus) Subscribe(_ context.Context) error { return nil }

func (b *capturingBus) GenerateID() string { return "test" }

func (b *capturingBus) Close() error { return nil }

func (b *capturingBus) published() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]eventbus.Event(nil), b.events...)
}

func seedDocument(t *testing.T, repo *file.DocumentRepository, id string, status models.LifecycleStatus, nextReview time.Time) {
	t.Helper()

	document := &models.ControlledDocument{
		ID:              id,
		Title:           "SOP " + id,
		Number:          "SOP-" + id,
		LifecycleStatus: status,
		WorkflowID:      "wf-standard",
		Revisions: []models.Revision{
			{ID: "rev-" + id, VersionLabel: "1.0", Status: status, NextReviewDate: nextReview},
		},
	}
	require.NoError(t, repo.SaveDocument(context.Background(), document))
}

func TestReviewer_Scan(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	documentRepo := file.NewDocumentRepository(tempDir)
	now := time.Now()

	// Due within the window.
	seedDocument(t, documentRepo, "due", models.LifecycleEffective, now.Add(7*24*time.Hour))
	// Already overdue: still flagged.
	seedDocument(t, documentRepo, "overdue", models.LifecycleEffective, now.Add(-24*time.Hour))
	// Outside the window.
	seedDocument(t, documentRepo, "future", models.LifecycleEffective, now.Add(90*24*time.Hour))
	// Not effective: review dates only matter for in-force documents.
	seedDocument(t, documentRepo, "draft", models.LifecycleDraft, now.Add(24*time.Hour))

	bus := &capturingBus{}
	r := reviewer.NewReviewer(file.NewPersistence(tempDir), bus, log.WithModule("reviewer-test"), 30*24*time.Hour, "")

	require.NoError(t, r.Scan(context.Background()))

	published := bus.published()
	require.Len(t, published, 2)

	flagged := make(map[string]bool)

	for _, event := range published {
		due, ok := event.(events.ReviewDue)
		require.True(t, ok)
		assert.Equal(t, events.ReviewDueEvent, due.GetType())
		flagged[due.DocumentID] = true
	}

	assert.True(t, flagged["due"])
	assert.True(t, flagged["overdue"])
}

func TestReviewer_ScanWithoutBus(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	seedDocument(t, file.NewDocumentRepository(tempDir), "due", models.LifecycleEffective, time.Now())

	r := reviewer.NewReviewer(file.NewPersistence(tempDir), nil, log.WithModule("reviewer-test"), 30*24*time.Hour, "")

	// A nil bus means scan-only mode; the walk itself must still succeed.
	assert.NoError(t, r.Scan(context.Background()))
}
