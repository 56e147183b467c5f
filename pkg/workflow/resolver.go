// Package workflow implements the approval engine for controlled documents:
// pending-step resolution, role authorization, electronic-signature capture,
// decision recording, and lifecycle status transitions.
package workflow

import "github.com/veridoc/veridoc/pkg/models"

// PendingStep returns the first step in definition order that has no recorded
// approval on the revision, or nil when every step has been decided and the
// workflow is complete.
//
// Approvals always form a contiguous leading set of the step sequence, so the
// first gap is the single gating step. The function is pure; the engine
// re-evaluates it after every recorded approval.
func PendingStep(definition *models.WorkflowDefinition, revision *models.Revision) *models.WorkflowStep {
	for i := range definition.Steps {
		if revision.ApprovalForStep(definition.Steps[i].ID) == nil {
			return &definition.Steps[i]
		}
	}

	return nil
}

// IsComplete reports whether every step of the definition has a recorded
// approval on the revision.
func IsComplete(definition *models.WorkflowDefinition, revision *models.Revision) bool {
	return PendingStep(definition, revision) == nil
}

// Authorize reports whether the performer may act on the pending step. The
// rule is an exact role match: no delegation, no multi-role matching, no
// admin override. The presentation layer disables controls client-side using
// the same rule, but that is not a security boundary; the engine enforces it
// here regardless of client state.
func Authorize(step *models.WorkflowStep, performer *models.UserProfile) bool {
	return performer.Role == step.Role
}
