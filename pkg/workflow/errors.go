package workflow

import (
	"errors"

	"github.com/veridoc/veridoc/pkg/persistence"
)

// Errors returned by the approval engine. All of them are terminal for the
// single operation and recoverable by caller action; none leave partial
// state behind.
var (
	// ErrDocumentNotFound indicates the document id did not resolve.
	ErrDocumentNotFound = persistence.ErrDocumentNotFound

	// ErrPerformerNotRecognised indicates the performer id did not resolve.
	ErrPerformerNotRecognised = errors.New("performer not recognised")

	// ErrWorkflowNotConfigured indicates the document has no valid workflow binding.
	ErrWorkflowNotConfigured = errors.New("workflow not configured")

	// ErrStepNotFound indicates the step does not belong to the document's workflow.
	ErrStepNotFound = errors.New("workflow step not found")

	// ErrStepNotPending indicates the requested step is not the current gating
	// step for the revision: a stale, out-of-order, or duplicate submission.
	ErrStepNotPending = errors.New("workflow step is not pending")

	// ErrNotAuthorized indicates the performer role does not match the pending
	// step's required role.
	ErrNotAuthorized = errors.New("performer not authorized for this step")

	// ErrSignatureRequired indicates the step mandates an electronic signature
	// and none was supplied.
	ErrSignatureRequired = errors.New("electronic signature required for this step")

	// ErrInvalidDecision indicates the decision value is not one of
	// approved, rejected, comment.
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrInvalidLifecycleStatus indicates the requested status is not one of
	// the six recognised states.
	ErrInvalidLifecycleStatus = errors.New("invalid lifecycle status")

	// ErrNoRevisions indicates a document record with an empty revision list,
	// which violates the data model and cannot be progressed.
	ErrNoRevisions = errors.New("document has no revisions")
)

// IsValidationError checks if an error indicates a malformed request that
// should map to a 400-class response.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDecision) ||
		errors.Is(err, ErrInvalidLifecycleStatus) ||
		errors.Is(err, ErrSignatureRequired)
}

// IsNotFound checks if an error indicates an unresolvable reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrPerformerNotRecognised) ||
		errors.Is(err, ErrWorkflowNotConfigured) ||
		errors.Is(err, ErrStepNotFound) ||
		persistence.IsUserNotFound(err) ||
		persistence.IsWorkflowNotFound(err)
}
