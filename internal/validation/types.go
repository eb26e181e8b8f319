package validation

// ValidationSeverity represents the severity level of a validation issue
type ValidationSeverity int

const (
	ValidationSeverityError ValidationSeverity = iota
	ValidationSeverityWarning
)

// ValidationErrorCode represents specific validation error types
type ValidationErrorCode int

const (
	ErrorInvalidAddress ValidationErrorCode = iota
	ErrorAddressRequired
	ErrorChecksumMismatch
)

// ValidationError represents a specific validation error
type ValidationError struct {
	Field    string
	Code     ValidationErrorCode
	Message  string
	Severity ValidationSeverity
}

// ValidationResult represents the result of address validation
type ValidationResult struct {
	IsValid     bool
	Errors      []ValidationError
	Warnings    []ValidationError
	Suggestions []string
}
