package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Game logic errors
	ErrCodeUnknownChallenge = "unknown_challenge"
	ErrCodeInvalidState     = "invalid_state"
	ErrCodeHintUnavailable  = "hint_unavailable"

	// Generation / grading errors
	ErrCodeGenerationFailed = "generation_failed"
	ErrCodeGradingFailed    = "grading_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError       = "internal_error"
	ErrCodeServiceUnavailable  = "service_unavailable"
	ErrCodeUpstreamError       = "upstream_error"
	ErrCodeFeatureNotAvailable = "feature_not_available"
)
