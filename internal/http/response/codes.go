package response

// Error codes returned in error_code.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeDuplicate        = "DUPLICATE_RESOURCE"
	CodeAuthentication   = "AUTHENTICATION_ERROR"
	CodeMissingToken     = "MISSING_TOKEN"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeAuthorization    = "AUTHORIZATION_ERROR"
	CodeInsufficientRole = "INSUFFICIENT_ROLE"
	CodeEmailNotVerified = "EMAIL_NOT_VERIFIED"
	CodeNotFound         = "NOT_FOUND"
	CodeStateConflict    = "STATE_CONFLICT"
	CodeDependency       = "DEPENDENCY_FAILURE"
	CodeRateLimited      = "RATE_LIMITED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
)
