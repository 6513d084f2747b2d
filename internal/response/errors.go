package response

// ErrCode is a typed error code enum for consistent API error identification.
// Codes are stable: clients branch on them to distinguish "you did something
// invalid" from "try again later" from "the chain rejected this".
type ErrCode string

const (
	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrUnknownCategory     ErrCode = "UNKNOWN_CATEGORY"
	ErrInvalidState        ErrCode = "INVALID_STATE"
	ErrAlreadySubmitted    ErrCode = "ALREADY_SUBMITTED"
	ErrSessionExpired      ErrCode = "SESSION_EXPIRED"
	ErrAnswerCountMismatch ErrCode = "ANSWER_COUNT_MISMATCH"

	// ─── Encrypted evaluation ──────────────────────────────────────────
	ErrInvalidCiphertext ErrCode = "INVALID_CIPHERTEXT"

	// ─── Certification ─────────────────────────────────────────────────
	ErrNotEligible ErrCode = "NOT_ELIGIBLE"
	ErrMintFailed  ErrCode = "MINT_FAILED"

	// ─── Session tokens ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Session lifecycle ─────────────────────────────────────────────
	case ErrUnknownCategory:
		return "Unknown quiz category."
	case ErrInvalidState:
		return "The session is not in a state that allows this operation."
	case ErrAlreadySubmitted:
		return "This session has already been submitted."
	case ErrSessionExpired:
		return "This session has expired and cannot be resumed."
	case ErrAnswerCountMismatch:
		return "The number of submitted answers does not match the question set."

	// ─── Encrypted evaluation ──────────────────────────────────────────
	case ErrInvalidCiphertext:
		return "One or more submitted ciphertexts are malformed."

	// ─── Certification ─────────────────────────────────────────────────
	case ErrNotEligible:
		return "This session is not eligible for a certificate."
	case ErrMintFailed:
		return "The ledger rejected the mint. You may retry."

	// ─── Session tokens ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "A session token is required."
	case ErrTokenInvalid:
		return "The session token is invalid or expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
