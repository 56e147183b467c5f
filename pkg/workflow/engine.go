package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/veridoc/veridoc/pkg/eventbus"
	"github.com/veridoc/veridoc/pkg/events"
	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/otelhelper"
	"github.com/veridoc/veridoc/pkg/persistence"
)

// Engine orchestrates workflow progression and lifecycle transitions over
// the injected repositories. Every state-changing operation commits the
// document write and its audit entry together, serialized per document.
type Engine struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	tracer      trace.Tracer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventBus makes the engine publish domain events after successful
// commits. Publication is best-effort; a publish failure never fails the
// operation.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(e *Engine) {
		e.eventBus = bus
	}
}

// WithTracer enables span creation around engine operations.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// NewEngine creates an approval engine over the given persistence provider.
func NewEngine(p persistence.Persistence, logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		persistence: p,
		logger:      logger,
		tracer:      noop.NewTracerProvider().Tracer("workflow"),
		locks:       make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// lockFor returns the mutex serializing operations on one document.
// Concurrent submissions against the same document queue here; the loser
// re-resolves the pending step and fails ErrStepNotPending. Entries are
// retained for the process lifetime; the map grows with the document
// catalog, not with request volume.
func (e *Engine) lockFor(documentID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[documentID] = lock
	}

	return lock
}

// ProgressRequest is one decision submission for a (document, step,
// performer) triple.
type ProgressRequest struct {
	DocumentID  string            `json:"document_id"  validate:"required"`
	StepID      string            `json:"step_id"      validate:"required"`
	PerformerID string            `json:"performer_id" validate:"required"`
	Decision    models.Decision   `json:"decision"     validate:"required"`
	Comments    string            `json:"comments"`
	Signature   *SignaturePayload `json:"signature,omitempty"`
}

// ProgressResult is the outcome of a successful progression.
type ProgressResult struct {
	Document         *models.ControlledDocument `json:"document"`
	Revision         *models.Revision           `json:"revision"`
	Approval         *models.Approval           `json:"approval"`
	WorkflowComplete bool                       `json:"workflow_complete"`
	NextStep         *models.WorkflowStep       `json:"next_step,omitempty"`
	ReturnedToDraft  bool                       `json:"returned_to_draft"`
}

// Progress records a decision against the currently pending workflow step of
// the document's latest revision.
//
// Preconditions are checked in a fixed order and each failure is terminal:
// document, workflow, step and performer must resolve; the requested step
// must equal the pending step; the performer role must match the step role;
// a mandated signature must be present. On success exactly one Approval and
// one AuditLogEntry are appended together.
func (e *Engine) Progress(ctx context.Context, req ProgressRequest) (*ProgressResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.progress",
		attribute.String(otelhelper.DocumentIDKey, req.DocumentID),
		attribute.String(otelhelper.StepIDKey, req.StepID),
		attribute.String(otelhelper.PerformerKey, req.PerformerID),
		attribute.String(otelhelper.DecisionKey, string(req.Decision)),
	)
	defer span.End()

	logger := e.logger.With(
		"document_id", req.DocumentID,
		"step_id", req.StepID,
		"performer_id", req.PerformerID,
		"decision", req.Decision,
	)

	if !req.Decision.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDecision, req.Decision)
	}

	lock := e.lockFor(req.DocumentID)
	lock.Lock()
	defer lock.Unlock()

	document, err := e.persistence.DocumentRepository().DocumentByID(ctx, req.DocumentID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if document.WorkflowID == "" {
		return nil, ErrWorkflowNotConfigured
	}

	definition, err := e.persistence.WorkflowRepository().WorkflowByID(ctx, document.WorkflowID)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotConfigured, document.WorkflowID)
		}

		otelhelper.SetError(span, err)

		return nil, err
	}

	step := definition.StepByID(req.StepID)
	if step == nil {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, req.StepID)
	}

	performer, err := e.persistence.UserRepository().UserByID(ctx, req.PerformerID)
	if err != nil {
		if persistence.IsUserNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrPerformerNotRecognised, req.PerformerID)
		}

		otelhelper.SetError(span, err)

		return nil, err
	}

	revision := document.CurrentRevision()
	if revision == nil {
		return nil, ErrNoRevisions
	}

	pending := PendingStep(definition, revision)
	if pending == nil || pending.ID != step.ID {
		// Stale, out-of-order, or duplicate submission. Never silently
		// reorder: the caller must observe the current gate and retry.
		return nil, fmt.Errorf("%w: %s", ErrStepNotPending, req.StepID)
	}

	if !Authorize(step, performer) {
		return nil, fmt.Errorf("%w: step requires role %s, performer has %s",
			ErrNotAuthorized, step.Role, performer.Role)
	}

	now := time.Now()

	signature, err := ValidateSignature(step, req.Signature, performer, now)
	if err != nil {
		return nil, err
	}

	approval := models.Approval{
		ID:              uuid.New().String(),
		StepID:          step.ID,
		StepName:        step.Name,
		PerformedByID:   performer.ID,
		PerformedByName: performer.Name,
		Role:            performer.Role,
		Decision:        req.Decision,
		Comments:        req.Comments,
		PerformedAt:     now,
		Signature:       signature,
	}

	revision.Approvals = append(revision.Approvals, approval)

	returnedToDraft := false
	if req.Decision == models.DecisionRejected {
		// Rejection sends the revision back for rework. Document lifecycle
		// status is not auto-advanced; that stays an explicit human act.
		revision.Status = models.LifecycleDraft
		returnedToDraft = true
	}

	entry := &models.AuditLogEntry{
		ID:        uuid.New().String(),
		Action:    fmt.Sprintf("Workflow step '%s' %s", step.Name, req.Decision),
		ActorID:   performer.ID,
		ActorName: performer.Name,
		ActorRole: performer.Role,
		Entity:    "document",
		EntityID:  document.ID,
		Context: map[string]any{
			"stepId":   step.ID,
			"stepName": step.Name,
			"decision": string(req.Decision),
			"revision": revision.ID,
		},
		Timestamp: now,
	}

	if err := e.commit(ctx, document, entry); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	next := PendingStep(definition, revision)
	complete := next == nil

	logger.InfoContext(ctx, "Recorded workflow decision",
		"step_name", step.Name,
		"workflow_complete", complete,
	)

	e.publish(ctx, document.ID, events.ApprovalRecorded{
		BaseEvent:     events.NewBaseEvent(events.ApprovalRecordedEvent, document.ID),
		RevisionID:    revision.ID,
		StepID:        step.ID,
		StepName:      step.Name,
		Decision:      req.Decision,
		PerformedByID: performer.ID,
		Role:          performer.Role,
		Signed:        signature != nil,
	})

	if complete {
		e.publish(ctx, document.ID, events.WorkflowCompleted{
			BaseEvent:  events.NewBaseEvent(events.WorkflowCompletedEvent, document.ID),
			RevisionID: revision.ID,
			WorkflowID: definition.ID,
		})
	}

	return &ProgressResult{
		Document:         document,
		Revision:         revision,
		Approval:         &revision.Approvals[len(revision.Approvals)-1],
		WorkflowComplete: complete,
		NextStep:         next,
		ReturnedToDraft:  returnedToDraft,
	}, nil
}

// SetLifecycleStatus sets the document's business state.
//
// There is deliberately no workflow-completion precondition: any recognised
// actor may set any of the six statuses at any time, and setting the same
// status twice succeeds and produces two audit entries. See the engine tests
// for the documented consequences of the missing gate.
func (e *Engine) SetLifecycleStatus(ctx context.Context, documentID string, status models.LifecycleStatus, actorID string) (*models.ControlledDocument, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.set_lifecycle_status",
		attribute.String(otelhelper.DocumentIDKey, documentID),
		attribute.String(otelhelper.StatusKey, string(status)),
	)
	defer span.End()

	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLifecycleStatus, status)
	}

	lock := e.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()

	document, err := e.persistence.DocumentRepository().DocumentByID(ctx, documentID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	actor, err := e.persistence.UserRepository().UserByID(ctx, actorID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	previous := document.LifecycleStatus
	document.LifecycleStatus = status

	now := time.Now()
	entry := &models.AuditLogEntry{
		ID:        uuid.New().String(),
		Action:    fmt.Sprintf("Lifecycle status updated to %s", status),
		ActorID:   actor.ID,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Entity:    "document",
		EntityID:  document.ID,
		Context: map[string]any{
			"lifecycleStatus": string(status),
			"previousStatus":  string(previous),
		},
		Timestamp: now,
	}

	if err := e.commit(ctx, document, entry); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	e.logger.InfoContext(ctx, "Lifecycle status updated",
		"document_id", document.ID,
		"previous_status", previous,
		"new_status", status,
	)

	e.publish(ctx, document.ID, events.LifecycleChanged{
		BaseEvent:      events.NewBaseEvent(events.LifecycleChangedEvent, document.ID),
		PreviousStatus: previous,
		NewStatus:      status,
		ActorID:        actor.ID,
	})

	return document, nil
}

// commit writes the document and its audit entry as one logical transaction.
// If the ledger append fails, the previous document record is restored so
// neither side of the pair survives alone.
func (e *Engine) commit(ctx context.Context, document *models.ControlledDocument, entry *models.AuditLogEntry) error {
	previous, err := e.persistence.DocumentRepository().DocumentByID(ctx, document.ID)
	if err != nil {
		return err
	}

	if err := e.persistence.DocumentRepository().SaveDocument(ctx, document); err != nil {
		return err
	}

	if err := e.persistence.AuditLogRepository().AppendAuditLog(ctx, entry); err != nil {
		if restoreErr := e.persistence.DocumentRepository().SaveDocument(ctx, previous); restoreErr != nil {
			return fmt.Errorf("audit append failed: %w (restore also failed: %v)", err, restoreErr)
		}

		return fmt.Errorf("audit append failed: %w", err)
	}

	return nil
}

func (e *Engine) publish(ctx context.Context, documentID string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	if err := e.eventBus.Publish(ctx, documentID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(),
			"document_id", documentID,
			"error", err,
		)
	}
}
