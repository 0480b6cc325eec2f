package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")
	// Unauthorized is returned when the sender is not allowed to perform the operation.
	Unauthorized = ErrorKind("Unauthorized")
	// Duplicate is returned when an item already exists.
	Duplicate = ErrorKind("Duplicate")
	// InvalidArgument is returned when an input is malformed or out of range.
	InvalidArgument = ErrorKind("Invalid Argument")
	// InvalidAmount is returned when a payment amount, balance or allowance does not satisfy the operation.
	InvalidAmount = ErrorKind("Invalid Amount")
	// InvalidConfiguration is returned when an admin-supplied configuration is inconsistent.
	InvalidConfiguration = ErrorKind("Invalid Configuration")
	// Expired is returned when an item's expiration timestamp has passed.
	Expired = ErrorKind("Expired")
	// StaleState is returned when persisted state no longer matches the live ledger.
	StaleState = ErrorKind("Stale State")
	// TransferFailure is returned when an external asset or payment transfer fails.
	TransferFailure = ErrorKind("Transfer Failure")
	// ReentrancyDetected is returned when an operation re-enters the engine mid-flight.
	ReentrancyDetected = ErrorKind("Reentrancy Detected")
	// Unsupported is returned when the operation is not supported for the target.
	Unsupported = ErrorKind("Unsupported")
	// Closed is returned when operating on a closed resource.
	Closed = ErrorKind("Closed")
	// Timeout is returned when an operation exceeds its deadline.
	Timeout = ErrorKind("Timeout")
	// InternalError is returned on invariant violations that indicate a bug.
	InternalError = ErrorKind("Internal Error")
	// SomethingWentWrong is returned when the error cause is unknown.
	SomethingWentWrong = ErrorKind("Something Went Wrong")

	OverflowUint64   = ErrorKind("overflow uint64")
	OverflowUint128  = ErrorKind("overflow uint128")
	ArgumentRequired = ErrorKind("Argument Required")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
