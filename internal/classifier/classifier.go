// internal/classifier/classifier.go
package classifier

import (
	"context"

	apperrors "guest-router/internal/common/errors"
	"guest-router/internal/models"
)

// Intent values returned by the classifier service.
const (
	IntentTicketRequest = "ticket_request"
	IntentNotUnderstood = "not_understood"
)

// Sentinel errors for the classifier boundary. errors.Is matches on the
// error code, so wrapped call-site errors still compare equal.
var (
	ErrClassifierFailed  error = &apperrors.StandardError{Code: apperrors.ErrCodeClassifierError, Message: "Fallback classifier call failed"}
	ErrClassifierTimeout error = &apperrors.StandardError{Code: apperrors.ErrCodeClassifierTimeout, Message: "Fallback classifier timed out"}
)

// Result is the classifier's judgment of a guest message. Area may be empty
// when the classifier could not pick one; Confidence is always in [0, 1].
type Result struct {
	Intent     string      `json:"intent"`
	Area       models.Area `json:"area"`
	Confidence float64     `json:"confidence"`
	Reason     string      `json:"reason"`
}

// Classifier resolves messages that the rule tables did not match.
type Classifier interface {
	Classify(ctx context.Context, text string, roomHint string) (*Result, error)
}
