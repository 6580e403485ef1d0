package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// Registration
	ErrEmailTaken ErrCode = "EMAIL_TAKEN"
	ErrSlotFull   ErrCode = "SLOT_FULL"

	// Test session
	ErrNotEligible          ErrCode = "NOT_ELIGIBLE"
	ErrNoQuestionsAvailable ErrCode = "NO_QUESTIONS_AVAILABLE"
	ErrSessionTerminated    ErrCode = "SESSION_TERMINATED"
	ErrTimeExpired          ErrCode = "TIME_EXPIRED"
	ErrQuestionNotInSession ErrCode = "QUESTION_NOT_IN_SESSION"

	// Rate limiting
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// Authentication
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// Validation
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// Resources
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "The resource cannot be changed because other data still references it."

	// Registration
	case ErrEmailTaken:
		return "This email address is already registered."
	case ErrSlotFull:
		return "The selected time slot has no seats left."

	// Test session
	case ErrNotEligible:
		return "This access code cannot start a test right now."
	case ErrNoQuestionsAvailable:
		return "No questions are available to build a test."
	case ErrSessionTerminated:
		return "This test session is already terminated."
	case ErrTimeExpired:
		return "The test time has expired."
	case ErrQuestionNotInSession:
		return "This question is not part of your test."

	// Rate limiting
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// Server
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
