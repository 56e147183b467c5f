package models

import "time"

// LifecycleStatus is the business state of a controlled document.
type LifecycleStatus string

const (
	LifecycleDraft      LifecycleStatus = "Draft"
	LifecycleInReview   LifecycleStatus = "In Review"
	LifecycleInApproval LifecycleStatus = "In Approval"
	LifecycleEffective  LifecycleStatus = "Effective"
	LifecycleSuperseded LifecycleStatus = "Superseded"
	LifecycleObsolete   LifecycleStatus = "Obsolete"
)

// ValidLifecycleStatuses lists every status a document may carry.
var ValidLifecycleStatuses = []LifecycleStatus{
	LifecycleDraft,
	LifecycleInReview,
	LifecycleInApproval,
	LifecycleEffective,
	LifecycleSuperseded,
	LifecycleObsolete,
}

// IsValid reports whether the status is one of the six recognised states.
func (s LifecycleStatus) IsValid() bool {
	for _, status := range ValidLifecycleStatuses {
		if s == status {
			return true
		}
	}

	return false
}

// Decision is the outcome a performer records against a workflow step.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionComment  Decision = "comment"
)

// IsValid reports whether the decision is one of the recognised outcomes.
func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected || d == DecisionComment
}

// ElectronicSignature is the durable evidence artifact captured when a step
// mandates signing. Signer identity is always snapshotted from the
// authenticated performer at validation time and never mutated afterwards.
type ElectronicSignature struct {
	ID                 string    `json:"id"`
	SignerID           string    `json:"signer_id"`
	SignerName         string    `json:"signer_name"`
	Role               Role      `json:"role"`
	SignedAt           time.Time `json:"signed_at"`
	ChallengeQuestion  string    `json:"challenge_question"`
	SignatureStatement string    `json:"signature_statement"`
}

// Approval records a performer's decision against one workflow step. The
// performer name and role are stored as copies, not references; approvals are
// append-only and never edited or removed.
type Approval struct {
	ID              string               `json:"id"`
	StepID          string               `json:"step_id"`
	StepName        string               `json:"step_name"`
	PerformedByID   string               `json:"performed_by_id"`
	PerformedByName string               `json:"performed_by_name"`
	Role            Role                 `json:"role"`
	Decision        Decision             `json:"decision"`
	Comments        string               `json:"comments,omitempty"`
	PerformedAt     time.Time            `json:"performed_at"`
	Signature       *ElectronicSignature `json:"signature,omitempty"`
}

// Revision is one versioned edition of a controlled document, carrying its
// own approval history ordered by time.
type Revision struct {
	ID             string          `json:"id"`
	VersionLabel   string          `json:"version_label"`
	ChangeSummary  string          `json:"change_summary"`
	EffectiveFrom  time.Time       `json:"effective_from"`
	NextReviewDate time.Time       `json:"next_review_date"`
	Status         LifecycleStatus `json:"status"`
	Approvals      []Approval      `json:"approvals"`
	Files          []string        `json:"files,omitempty"`
}

// ApprovalForStep returns the approval recorded for the given step, or nil
// when the step has not been decided yet.
func (r *Revision) ApprovalForStep(stepID string) *Approval {
	for i := range r.Approvals {
		if r.Approvals[i].StepID == stepID {
			return &r.Approvals[i]
		}
	}

	return nil
}

// ControlledDocument is a versioned artifact subject to formal review and
// approval before taking effect. A document is bound to exactly one workflow
// definition for its lifetime and always has at least one revision, ordered
// most-recent-first.
type ControlledDocument struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"              validate:"required"`
	Number           string          `json:"number"             validate:"required"`
	Category         string          `json:"category"`
	IssuerRole       Role            `json:"issuer_role"`
	IssuedBy         string          `json:"issued_by"`
	IssuedByName     string          `json:"issued_by_name"`
	CreatedBy        string          `json:"created_by"`
	CreatedByName    string          `json:"created_by_name"`
	CreatedAt        time.Time       `json:"created_at"`
	IssuedAt         time.Time       `json:"issued_at"`
	Security         string          `json:"security"`
	DocumentTypeID   string          `json:"document_type_id"`
	DocumentTypeName string          `json:"document_type_name"`
	LifecycleStatus  LifecycleStatus `json:"lifecycle_status"`
	WorkflowID       string          `json:"workflow_id"        validate:"required"`
	WorkflowName     string          `json:"workflow_name"`
	Tags             []string        `json:"tags,omitempty"`
	LinkedDocuments  []string        `json:"linked_documents,omitempty"`
	Revisions        []Revision      `json:"revisions"          validate:"required,min=1"`
}

// CurrentRevision returns the latest revision. Revisions are ordered
// most-recent-first, so this is always index zero.
func (d *ControlledDocument) CurrentRevision() *Revision {
	if len(d.Revisions) == 0 {
		return nil
	}

	return &d.Revisions[0]
}
