package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Process lifecycle errors
const (
	// ErrCodeLaunchFailed indicates the OS refused to create the child process.
	ErrCodeLaunchFailed ErrorCode = "LAUNCH_FAILED"
	// ErrCodeWaitFailed indicates waiting for the child process failed for a
	// reason other than a non-zero exit.
	ErrCodeWaitFailed ErrorCode = "WAIT_FAILED"
	// ErrCodeCanceled indicates the run was stopped by context cancellation.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeTimeout indicates the run was stopped because its deadline expired.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates a referenced file or directory does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Only a timeout is considered retryable.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// exitCodes maps error codes to the process exit status used by the CLI.
// The values follow the sysexits/shell conventions: 126 for "found but not
// executable", 124 for timeout (as coreutils timeout does), 130 for SIGINT.
var exitCodes = map[ErrorCode]int{
	ErrCodeInvalidInput: 64,
	ErrCodeNotFound:     66,
	ErrCodeLaunchFailed: 126,
	ErrCodeWaitFailed:   70,
	ErrCodeTimeout:      124,
	ErrCodeCanceled:     130,
	ErrCodeInternal:     70,
}
