package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc/veridoc/pkg/log"
	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/persistence"
	"github.com/veridoc/veridoc/pkg/persistence/file"
	"github.com/veridoc/veridoc/pkg/workflow"
)

var errLedgerUnavailable = errors.New("ledger unavailable")

// failingAuditLog refuses every append while delegating reads.
type failingAuditLog struct {
	persistence.AuditLogRepository
}

func (f *failingAuditLog) AppendAuditLog(_ context.Context, _ *models.AuditLogEntry) error {
	return errLedgerUnavailable
}

// failingAuditPersistence wraps a provider with an audit ledger that cannot
// accept appends.
type failingAuditPersistence struct {
	persistence.Persistence
}

func (f *failingAuditPersistence) AuditLogRepository() persistence.AuditLogRepository {
	return &failingAuditLog{f.Persistence.AuditLogRepository()}
}

type fixture struct {
	engine      *workflow.Engine
	persistence *file.Persistence
	document    *models.ControlledDocument
}

// setupEngine seeds a three-step workflow [QA(sig), Manufacturing,
// Regulatory(sig)], four users, and one Draft document bound to it.
func setupEngine(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	tempDir := t.TempDir()

	workflowRepo := file.NewWorkflowRepository(tempDir)
	require.NoError(t, workflowRepo.SaveWorkflow(ctx, threeStepDefinition()))

	userRepo := file.NewUserRepository(tempDir)
	require.NoError(t, userRepo.SaveUsers(ctx, []*models.UserProfile{
		{ID: "u-qa", Name: "Priya Shah", Role: models.RoleQA},
		{ID: "u-mfg", Name: "Jonas Weber", Role: models.RoleManufacturing},
		{ID: "u-reg", Name: "Ana Costa", Role: models.RoleRegulatory},
		{ID: "u-admin", Name: "Sam Ortiz", Role: models.RoleAdmin},
	}))

	p := file.NewPersistence(tempDir)
	engine := workflow.NewEngine(p, log.WithModule("engine-test"))

	document, err := engine.CreateDocument(ctx, workflow.CreateDocumentRequest{
		Title:      "Tablet Compression SOP",
		Number:     "SOP-100",
		Category:   "Manufacturing",
		WorkflowID: "wf-standard",
		CreatedBy:  "u-qa",
	})
	require.NoError(t, err)

	return &fixture{engine: engine, persistence: p, document: document}
}

func (f *fixture) progress(ctx context.Context, stepID, performerID string, decision models.Decision, signature *workflow.SignaturePayload) (*workflow.ProgressResult, error) {
	return f.engine.Progress(ctx, workflow.ProgressRequest{
		DocumentID:  f.document.ID,
		StepID:      stepID,
		PerformerID: performerID,
		Decision:    decision,
		Signature:   signature,
	})
}

func (f *fixture) auditEntries(t *testing.T) []*models.AuditLogEntry {
	t.Helper()

	entries, err := f.persistence.AuditLogRepository().AuditLogByEntityID(context.Background(), f.document.ID)
	require.NoError(t, err)

	return entries
}

func TestEngine_CreateDocument(t *testing.T) {
	t.Parallel()

	f := setupEngine(t)
	doc := f.document

	assert.Equal(t, models.LifecycleDraft, doc.LifecycleStatus)
	assert.Equal(t, "Standard Approval", doc.WorkflowName)
	assert.Equal(t, "Priya Shah", doc.CreatedByName)
	assert.Equal(t, models.RoleQA, doc.IssuerRole)

	require.Len(t, doc.Revisions, 1)
	revision := doc.CurrentRevision()
	assert.Equal(t, "1.0", revision.VersionLabel)
	assert.Equal(t, "Initial release", revision.ChangeSummary)
	assert.Equal(t, models.LifecycleDraft, revision.Status)
	assert.Empty(t, revision.Approvals)

	// Registration itself is audited.
	entries := f.auditEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "Document created", entries[0].Action)
	assert.Equal(t, doc.ID, entries[0].EntityID)
}

func TestEngine_CreateDocument_FailedAuditAppendLeavesNoDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tempDir := t.TempDir()

	workflowRepo := file.NewWorkflowRepository(tempDir)
	require.NoError(t, workflowRepo.SaveWorkflow(ctx, threeStepDefinition()))

	userRepo := file.NewUserRepository(tempDir)
	require.NoError(t, userRepo.SaveUsers(ctx, []*models.UserProfile{
		{ID: "u-qa", Name: "Priya Shah", Role: models.RoleQA},
	}))

	p := file.NewPersistence(tempDir)
	engine := workflow.NewEngine(&failingAuditPersistence{p}, log.WithModule("engine-test"))

	_, err := engine.CreateDocument(ctx, workflow.CreateDocumentRequest{
		Title:      "Tablet Compression SOP",
		Number:     "SOP-100",
		WorkflowID: "wf-standard",
		CreatedBy:  "u-qa",
	})
	require.ErrorIs(t, err, errLedgerUnavailable)

	// Registration and its audit entry commit together: a failed append must
	// not leave the document record behind.
	documents, err := p.DocumentRepository().Documents(ctx)
	require.NoError(t, err)
	assert.Empty(t, documents)
}

func TestEngine_Progress_FailedAuditAppendRestoresDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	broken := workflow.NewEngine(&failingAuditPersistence{f.persistence}, log.WithModule("engine-test"))

	_, err := broken.Progress(ctx, workflow.ProgressRequest{
		DocumentID:  f.document.ID,
		StepID:      "s1",
		PerformerID: "u-qa",
		Decision:    models.DecisionApproved,
		Signature:   &workflow.SignaturePayload{},
	})
	require.ErrorIs(t, err, errLedgerUnavailable)

	doc, err := f.persistence.DocumentRepository().DocumentByID(ctx, f.document.ID)
	require.NoError(t, err)
	assert.Empty(t, doc.CurrentRevision().Approvals)
}

func TestEngine_Progress_ScenarioThreeSteps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	// Step 1 mandates a signature: QA approves with one.
	result, err := f.progress(ctx, "s1", "u-qa", models.DecisionApproved, &workflow.SignaturePayload{})
	require.NoError(t, err)
	assert.False(t, result.WorkflowComplete)
	require.NotNil(t, result.NextStep)
	assert.Equal(t, "s2", result.NextStep.ID)

	// QA cannot act on the Manufacturing step.
	_, err = f.progress(ctx, "s2", "u-qa", models.DecisionApproved, nil)
	assert.ErrorIs(t, err, workflow.ErrNotAuthorized)

	// Step 2 requires no signature.
	result, err = f.progress(ctx, "s2", "u-mfg", models.DecisionApproved, nil)
	require.NoError(t, err)
	require.NotNil(t, result.NextStep)
	assert.Equal(t, "s3", result.NextStep.ID)

	// Step 3 mandates a signature: submitting without one fails.
	_, err = f.progress(ctx, "s3", "u-reg", models.DecisionApproved, nil)
	assert.ErrorIs(t, err, workflow.ErrSignatureRequired)

	result, err = f.progress(ctx, "s3", "u-reg", models.DecisionApproved, &workflow.SignaturePayload{})
	require.NoError(t, err)
	assert.True(t, result.WorkflowComplete)
	assert.Nil(t, result.NextStep)

	// Structural completion does not touch lifecycle status: business
	// sign-off stays an explicit human act.
	doc, err := f.persistence.DocumentRepository().DocumentByID(ctx, f.document.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleDraft, doc.LifecycleStatus)
}

func TestEngine_Progress_SignatureBindsToPerformer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	// The payload carries no identity fields at all; whatever a client
	// claims, the stored signer is the authenticated performer.
	result, err := f.progress(ctx, "s1", "u-qa", models.DecisionApproved, &workflow.SignaturePayload{
		SignatureStatement: "Signed on behalf of someone else",
	})
	require.NoError(t, err)

	signature := result.Approval.Signature
	require.NotNil(t, signature)
	assert.Equal(t, "u-qa", signature.SignerID)
	assert.Equal(t, "Priya Shah", signature.SignerName)
	assert.Equal(t, models.RoleQA, signature.Role)
	assert.Equal(t, "Signed on behalf of someone else", signature.SignatureStatement)
}

func TestEngine_Progress_DoubleApprovalFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	_, err := f.progress(ctx, "s1", "u-qa", models.DecisionApproved, &workflow.SignaturePayload{})
	require.NoError(t, err)

	// Re-submitting the already-approved step is a stale request.
	_, err = f.progress(ctx, "s1", "u-qa", models.DecisionApproved, &workflow.SignaturePayload{})
	assert.ErrorIs(t, err, workflow.ErrStepNotPending)

	// Skipping ahead fails the same way.
	_, err = f.progress(ctx, "s3", "u-reg", models.DecisionApproved, &workflow.SignaturePayload{})
	assert.ErrorIs(t, err, workflow.ErrStepNotPending)
}

func TestEngine_Progress_RejectionReturnsRevisionToDraft(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	result, err := f.progress(ctx, "s1", "u-qa", models.DecisionRejected, &workflow.SignaturePayload{})
	require.NoError(t, err)
	assert.True(t, result.ReturnedToDraft)
	assert.Equal(t, models.LifecycleDraft, result.Revision.Status)

	// The rejection itself is part of the permanent approval history.
	require.Len(t, result.Revision.Approvals, 1)
	assert.Equal(t, models.DecisionRejected, result.Revision.Approvals[0].Decision)
}

func TestEngine_Progress_FailureTaxonomy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	tests := []struct {
		name    string
		req     workflow.ProgressRequest
		wantErr error
	}{
		{
			name: "unknown document",
			req: workflow.ProgressRequest{
				DocumentID: "missing", StepID: "s1", PerformerID: "u-qa", Decision: models.DecisionApproved,
			},
			wantErr: workflow.ErrDocumentNotFound,
		},
		{
			name: "step outside the bound workflow",
			req: workflow.ProgressRequest{
				DocumentID: f.document.ID, StepID: "s99", PerformerID: "u-qa", Decision: models.DecisionApproved,
			},
			wantErr: workflow.ErrStepNotFound,
		},
		{
			name: "unknown performer",
			req: workflow.ProgressRequest{
				DocumentID: f.document.ID, StepID: "s1", PerformerID: "ghost", Decision: models.DecisionApproved,
			},
			wantErr: workflow.ErrPerformerNotRecognised,
		},
		{
			name: "invalid decision value",
			req: workflow.ProgressRequest{
				DocumentID: f.document.ID, StepID: "s1", PerformerID: "u-qa", Decision: "signed-off",
			},
			wantErr: workflow.ErrInvalidDecision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Progress(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// None of the failures left partial state behind.
	doc, err := f.persistence.DocumentRepository().DocumentByID(ctx, f.document.ID)
	require.NoError(t, err)
	assert.Empty(t, doc.CurrentRevision().Approvals)
	assert.Len(t, f.auditEntries(t), 1) // document creation only
}

func TestEngine_Progress_AuditCompleteness(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	before := len(f.auditEntries(t))

	_, err := f.progress(ctx, "s1", "u-qa", models.DecisionApproved, &workflow.SignaturePayload{})
	require.NoError(t, err)

	entries := f.auditEntries(t)
	require.Len(t, entries, before+1)

	last := entries[len(entries)-1]
	assert.Equal(t, f.document.ID, last.EntityID)
	assert.Equal(t, "document", last.Entity)
	assert.Equal(t, "Workflow step 'QA Review' approved", last.Action)
	assert.Equal(t, "Priya Shah", last.ActorName)
	assert.Equal(t, models.RoleQA, last.ActorRole)
	assert.Equal(t, "s1", last.Context["stepId"])
}

func TestEngine_Progress_ConcurrentSubmissionsSerialize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	var wg sync.WaitGroup

	errs := make([]error, 2)

	for i := range errs {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, errs[i] = f.progress(ctx, "s1", "u-qa", models.DecisionApproved, &workflow.SignaturePayload{})
		}(i)
	}

	wg.Wait()

	// Exactly one submission wins the gate; the other observes the recorded
	// approval and fails as stale.
	successes := 0

	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, workflow.ErrStepNotPending)
		}
	}

	assert.Equal(t, 1, successes)

	doc, err := f.persistence.DocumentRepository().DocumentByID(ctx, f.document.ID)
	require.NoError(t, err)
	assert.Len(t, doc.CurrentRevision().Approvals, 1)
}

func TestEngine_SetLifecycleStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	doc, err := f.engine.SetLifecycleStatus(ctx, f.document.ID, models.LifecycleInReview, "u-admin")
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleInReview, doc.LifecycleStatus)

	entries := f.auditEntries(t)
	last := entries[len(entries)-1]
	assert.Equal(t, "Lifecycle status updated to In Review", last.Action)
	assert.Equal(t, "In Review", last.Context["lifecycleStatus"])
	assert.Equal(t, "Sam Ortiz", last.ActorName)
}

func TestEngine_SetLifecycleStatus_UnguardedByWorkflowCompletion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	// Documented behavior, not an accident of this test: there is no
	// precondition tying lifecycle transitions to workflow completion, so a
	// document with zero approvals can be marked Effective. Flagged as a
	// potential compliance gap; preserved until product says otherwise.
	doc, err := f.engine.SetLifecycleStatus(ctx, f.document.ID, models.LifecycleEffective, "u-admin")
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleEffective, doc.LifecycleStatus)
	assert.Empty(t, doc.CurrentRevision().Approvals)
}

func TestEngine_SetLifecycleStatus_IdempotentWithFullHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	before := len(f.auditEntries(t))

	_, err := f.engine.SetLifecycleStatus(ctx, f.document.ID, models.LifecycleObsolete, "u-admin")
	require.NoError(t, err)

	// Setting the same status again succeeds; history is not deduplicated.
	_, err = f.engine.SetLifecycleStatus(ctx, f.document.ID, models.LifecycleObsolete, "u-admin")
	require.NoError(t, err)

	assert.Len(t, f.auditEntries(t), before+2)
}

func TestEngine_SetLifecycleStatus_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupEngine(t)

	_, err := f.engine.SetLifecycleStatus(ctx, "missing", models.LifecycleEffective, "u-admin")
	assert.ErrorIs(t, err, workflow.ErrDocumentNotFound)

	_, err = f.engine.SetLifecycleStatus(ctx, f.document.ID, models.LifecycleEffective, "ghost")
	assert.Error(t, err)

	_, err = f.engine.SetLifecycleStatus(ctx, f.document.ID, "Archived", "u-admin")
	assert.ErrorIs(t, err, workflow.ErrInvalidLifecycleStatus)
}
