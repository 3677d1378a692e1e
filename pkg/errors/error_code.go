package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidVersion       ErrorCode = 103
	ErrCodeInvalidGate          ErrorCode = 104
	ErrCodeInvalidCapacity      ErrorCode = 105
	ErrCodeInvalidThreshold     ErrorCode = 106

	// Window/readiness errors (200-299)
	ErrCodeOutOfRange ErrorCode = 200
	ErrCodeNotReady   ErrorCode = 201

	// Reading errors (300-399)
	ErrCodeMissingLine    ErrorCode = 300
	ErrCodeMissingColumn  ErrorCode = 301
	ErrCodeInvalidReading ErrorCode = 302

	// Universe errors (400-499)
	ErrCodeUnknownInstrument   ErrorCode = 400
	ErrCodeDuplicateInstrument ErrorCode = 401

	// Engine errors (500-599)
	ErrCodeEngineNotInitialized ErrorCode = 500
	ErrCodeVersionMismatch      ErrorCode = 501
	ErrCodeStepFailed           ErrorCode = 502

	// Data source errors (600-699)
	ErrCodeDataSourceUnavailable ErrorCode = 600
	ErrCodeQueryFailed           ErrorCode = 601
	ErrCodeUnsupportedFormat     ErrorCode = 602
)
