package web

import (
	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/workflow"
)

// ProgressBody is the decision submission payload. The document comes from
// the URL path.
type ProgressBody struct {
	StepID      string                     `json:"step_id"      validate:"required"`
	PerformerID string                     `json:"performer_id" validate:"required"`
	Decision    models.Decision            `json:"decision"     validate:"required,oneof=approved rejected comment"`
	Comments    string                     `json:"comments"`
	Signature   *workflow.SignaturePayload `json:"signature,omitempty"`
}

// LifecycleBody is the lifecycle transition payload.
type LifecycleBody struct {
	Status  models.LifecycleStatus `json:"status"   validate:"required"`
	ActorID string                 `json:"actor_id" validate:"required"`
}
