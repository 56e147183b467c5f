// Package web provides the HTTP handlers and REST endpoints for document
// lifecycle management.
package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/veridoc/veridoc/pkg/persistence"
	"github.com/veridoc/veridoc/pkg/workflow"
)

type APIHandlers struct {
	engine      *workflow.Engine
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(engine *workflow.Engine, p persistence.Persistence, v *validator.Validate) *APIHandlers {
	return &APIHandlers{
		engine:      engine,
		persistence: p,
		validator:   v,
	}
}

func (h *APIHandlers) GetDocuments(c fiber.Ctx) error {
	documents, err := h.persistence.DocumentRepository().Documents(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"documents":   documents,
		"total_count": len(documents),
	})
}

func (h *APIHandlers) GetDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	document, err := h.persistence.DocumentRepository().DocumentByID(c.Context(), id)
	if err != nil {
		if persistence.IsDocumentNotFound(err) {
			return notFound(c, "Document not found")
		}

		return internalError(c, err)
	}

	return c.JSON(document)
}

func (h *APIHandlers) CreateDocument(c fiber.Ctx) error {
	var req workflow.CreateDocumentRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	document, err := h.engine.CreateDocument(c.Context(), req)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(document)
}

// ProgressWorkflow records one decision against the pending step of the
// document's current revision.
func (h *APIHandlers) ProgressWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	var body ProgressBody

	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(body); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	result, err := h.engine.Progress(c.Context(), workflow.ProgressRequest{
		DocumentID:  id,
		StepID:      body.StepID,
		PerformerID: body.PerformerID,
		Decision:    body.Decision,
		Comments:    body.Comments,
		Signature:   body.Signature,
	})
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(result)
}

// SetLifecycleStatus sets the document's business state. The transition is
// deliberately unguarded with respect to workflow completion.
func (h *APIHandlers) SetLifecycleStatus(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	var body LifecycleBody

	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(body); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	document, err := h.engine.SetLifecycleStatus(c.Context(), id, body.Status, body.ActorID)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(document)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.WorkflowRepository().Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetUsers(c fiber.Ctx) error {
	users, err := h.persistence.UserRepository().Users(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"users": users})
}

// GetAuditLog lists ledger entries, optionally filtered to one entity.
func (h *APIHandlers) GetAuditLog(c fiber.Ctx) error {
	entityID := c.Query("entity_id")

	if entityID != "" {
		entries, err := h.persistence.AuditLogRepository().AuditLogByEntityID(c.Context(), entityID)
		if err != nil {
			return internalError(c, err)
		}

		return c.JSON(fiber.Map{"entries": entries})
	}

	entries, err := h.persistence.AuditLogRepository().AuditLog(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"entries": entries})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
