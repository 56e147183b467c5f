package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/veridoc/veridoc/pkg/events"
	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/otelhelper"
	"github.com/veridoc/veridoc/pkg/persistence"
)

// CreateDocumentRequest carries everything needed to register a new
// controlled document with its initial Draft revision.
type CreateDocumentRequest struct {
	Title            string    `json:"title"            validate:"required"`
	Number           string    `json:"number"           validate:"required"`
	Category         string    `json:"category"`
	Security         string    `json:"security"`
	DocumentTypeID   string    `json:"document_type_id"`
	DocumentTypeName string    `json:"document_type_name"`
	WorkflowID       string    `json:"workflow_id"      validate:"required"`
	CreatedBy        string    `json:"created_by"       validate:"required"`
	VersionLabel     string    `json:"version_label"`
	ChangeSummary    string    `json:"change_summary"`
	EffectiveFrom    time.Time `json:"effective_from"`
	NextReviewDate   time.Time `json:"next_review_date"`
	Tags             []string  `json:"tags,omitempty"`
	LinkedDocuments  []string  `json:"linked_documents,omitempty"`
}

// CreateDocument registers a new document bound to a workflow definition,
// with one Draft revision carrying no approvals. The creator's identity is
// snapshotted onto the issuer fields, and the registration itself lands in
// the audit ledger.
func (e *Engine) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*models.ControlledDocument, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.create_document",
		attribute.String(otelhelper.WorkflowIDKey, req.WorkflowID),
	)
	defer span.End()

	definition, err := e.persistence.WorkflowRepository().WorkflowByID(ctx, req.WorkflowID)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotConfigured, req.WorkflowID)
		}

		otelhelper.SetError(span, err)

		return nil, err
	}

	creator, err := e.persistence.UserRepository().UserByID(ctx, req.CreatedBy)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	now := time.Now()

	versionLabel := req.VersionLabel
	if versionLabel == "" {
		versionLabel = "1.0"
	}

	changeSummary := req.ChangeSummary
	if changeSummary == "" {
		changeSummary = "Initial release"
	}

	effectiveFrom := req.EffectiveFrom
	if effectiveFrom.IsZero() {
		effectiveFrom = now
	}

	nextReviewDate := req.NextReviewDate
	if nextReviewDate.IsZero() {
		nextReviewDate = now.AddDate(1, 0, 0)
	}

	document := &models.ControlledDocument{
		ID:               uuid.New().String(),
		Title:            req.Title,
		Number:           req.Number,
		Category:         req.Category,
		IssuerRole:       creator.Role,
		IssuedBy:         creator.ID,
		IssuedByName:     creator.Name,
		CreatedBy:        creator.ID,
		CreatedByName:    creator.Name,
		CreatedAt:        now,
		IssuedAt:         now,
		Security:         req.Security,
		DocumentTypeID:   req.DocumentTypeID,
		DocumentTypeName: req.DocumentTypeName,
		LifecycleStatus:  models.LifecycleDraft,
		WorkflowID:       definition.ID,
		WorkflowName:     definition.Name,
		Tags:             req.Tags,
		LinkedDocuments:  req.LinkedDocuments,
		Revisions: []models.Revision{
			{
				ID:             uuid.New().String(),
				VersionLabel:   versionLabel,
				ChangeSummary:  changeSummary,
				EffectiveFrom:  effectiveFrom,
				NextReviewDate: nextReviewDate,
				Status:         models.LifecycleDraft,
				Approvals:      make([]models.Approval, 0),
			},
		},
	}

	entry := &models.AuditLogEntry{
		ID:        uuid.New().String(),
		Action:    "Document created",
		ActorID:   creator.ID,
		ActorName: creator.Name,
		ActorRole: creator.Role,
		Entity:    "document",
		EntityID:  document.ID,
		Context: map[string]any{
			"number":     document.Number,
			"title":      document.Title,
			"workflowId": document.WorkflowID,
		},
		Timestamp: now,
	}

	if err := e.persistence.DocumentRepository().SaveDocument(ctx, document); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	// Registration and its audit entry commit together. A failed append
	// removes the just-saved record so neither side survives alone.
	if err := e.persistence.AuditLogRepository().AppendAuditLog(ctx, entry); err != nil {
		otelhelper.SetError(span, err)

		if removeErr := e.persistence.DocumentRepository().DeleteDocument(ctx, document.ID); removeErr != nil {
			return nil, fmt.Errorf("audit append failed: %w (rollback also failed: %v)", err, removeErr)
		}

		return nil, fmt.Errorf("audit append failed: %w", err)
	}

	e.logger.InfoContext(ctx, "Document created",
		"document_id", document.ID,
		"number", document.Number,
		"workflow_id", document.WorkflowID,
	)

	e.publish(ctx, document.ID, events.DocumentCreated{
		BaseEvent:  events.NewBaseEvent(events.DocumentCreatedEvent, document.ID),
		Number:     document.Number,
		Title:      document.Title,
		WorkflowID: document.WorkflowID,
		CreatedBy:  creator.ID,
	})

	return document, nil
}
