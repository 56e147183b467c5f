package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridoc/veridoc/pkg/models"
)

// Default compliance strings recorded when the submitter omits them.
const (
	DefaultChallengeQuestion  = "Password authenticated"
	DefaultSignatureStatement = "Approved via electronic signature"
)

// SignaturePayload is the client-submitted portion of an electronic
// signature. Any identity fields a client might send are deliberately absent:
// signer identity always comes from the authenticated performer.
type SignaturePayload struct {
	ChallengeQuestion  string `json:"challenge_question,omitempty"`
	SignatureStatement string `json:"signature_statement,omitempty"`
}

// ValidateSignature decides signature acceptance for one step.
//
// Steps without a signature mandate ignore any submitted payload entirely; it
// is neither required nor persisted. Steps with a mandate fail with
// ErrSignatureRequired when no payload was submitted. On acceptance the
// returned record is bound to the performer, with SignedAt set at validation
// time rather than trusted from the client.
func ValidateSignature(step *models.WorkflowStep, payload *SignaturePayload, performer *models.UserProfile, signedAt time.Time) (*models.ElectronicSignature, error) {
	if !step.RequiresSignature {
		return nil, nil
	}

	if payload == nil {
		return nil, ErrSignatureRequired
	}

	question := payload.ChallengeQuestion
	if question == "" {
		question = DefaultChallengeQuestion
	}

	statement := payload.SignatureStatement
	if statement == "" {
		statement = DefaultSignatureStatement
	}

	return &models.ElectronicSignature{
		ID:                 uuid.New().String(),
		SignerID:           performer.ID,
		SignerName:         performer.Name,
		Role:               performer.Role,
		SignedAt:           signedAt,
		ChallengeQuestion:  question,
		SignatureStatement: statement,
	}, nil
}
