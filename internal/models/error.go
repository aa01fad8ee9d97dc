package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
	ErrCodeParseFailed       = "PARSE_FAILED"
	ErrCodeSuperseded        = "SUPERSEDED"
	ErrCodeWizardComplete    = "WIZARD_COMPLETE"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeSessionIncomplete = "SESSION_INCOMPLETE"
)

// User-facing messages. Clients display these verbatim.
const (
	MsgFeedbackFailed    = "Failed to get AI feedback. Please try again."
	MsgFeedbackParse     = "Error parsing feedback. Please try again."
	MsgStepFeedbackError = "Sorry, I encountered an error while getting feedback. Please try again."
	MsgSummaryFailed     = "Failed to generate summary. Please try again."
	MsgChatFailed        = "Failed to get response from model"
)
