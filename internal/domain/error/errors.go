package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeValidation         = 4000
	CodeInvalidAmount      = 4001
	CodeAmountOutOfRange   = 4002
	CodeInvalidAction      = 4003
	CodeInvalidCategory    = 4004
	CodeInvalidPaymentLink = 4005
	CodeNoAmountFound      = 4006
	CodeInvalidStatus      = 4007
	CodeDuplicateMethod    = 4008
	CodeDuplicateMerchant  = 4009
	CodeUnauthorized       = 4010
	CodeMethodNotFound     = 4020
	CodeMethodUnavailable  = 4021
	CodeMethodInUse        = 4022
	CodeForbidden          = 4030
	CodeTransactionMissing = 4040
	CodeMerchantNotFound   = 4041
	CodeStoreNotFound      = 4042
	CodeAlreadyFinalized   = 4090
	CodeResourceLocked     = 4230
	CodeQuotaExhausted     = 4290

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeAllocationFailure  = 5001
	CodeDatabaseConnection = 5003
	CodeUpstream           = 5020
)

// Base error types
var (
	// ErrInvalidRequest is returned when the request body cannot be parsed
	ErrInvalidRequest = errors.New("invalid request")

	// ErrValidation is the parent of every input validation failure
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned when the amount is not a positive whole number
	ErrInvalidAmount = errors.New("amount must be a positive whole number")

	// ErrAmountOutOfRange is returned when the amount falls outside the method bounds
	ErrAmountOutOfRange = errors.New("amount is outside the allowed range")

	// ErrInvalidAction is returned when the webhook action is neither create nor update
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidCategory is returned for an unknown payment category
	ErrInvalidCategory = errors.New("invalid payment category")

	// ErrInvalidStatus is returned when a manual status edit targets a non-terminal status
	ErrInvalidStatus = errors.New("invalid transaction status")

	// ErrInvalidPaymentLink is returned when a public payment token cannot be decoded
	ErrInvalidPaymentLink = errors.New("invalid or corrupted payment link")

	// ErrNoAmountFound is returned when a notification text contains no digits
	ErrNoAmountFound = errors.New("no amount found in notification")

	// ErrMissingAPIKey is returned when a request does not carry an API key
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrInvalidAPIKey is returned when no merchant owns the API key
	ErrInvalidAPIKey = errors.New("invalid api key")

	// ErrMerchantNotVerified is returned for merchants that have not verified their account
	ErrMerchantNotVerified = errors.New("merchant account is not verified")

	// ErrQuotaExhausted is returned when the merchant used up its request quota
	ErrQuotaExhausted = errors.New("api request quota exhausted")

	// ErrMerchantNotFound is returned when the requested merchant doesn't exist
	ErrMerchantNotFound = errors.New("merchant not found")

	// ErrStoreNotFound is returned when the merchant has no public store configured
	ErrStoreNotFound = errors.New("store not found")

	// ErrDuplicateMerchant is returned when the username is already taken
	ErrDuplicateMerchant = errors.New("merchant already exists")

	// ErrMethodNotFound is returned when the payment method id is unknown
	ErrMethodNotFound = errors.New("payment method not found")

	// ErrMethodUnavailable is returned when the payment method is disabled or of another category
	ErrMethodUnavailable = errors.New("payment method is not available")

	// ErrMethodInUse is returned when deleting a method that still has pending transactions
	ErrMethodInUse = errors.New("payment method has pending transactions")

	// ErrDuplicateMethod is returned when the payment method id already exists
	ErrDuplicateMethod = errors.New("payment method already exists")

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAlreadyFinalized is returned when a transaction already left the pending state
	ErrAlreadyFinalized = errors.New("transaction is already finalized")

	// ErrDuplicatePendingAmount is returned when another pending transaction holds the same amount
	ErrDuplicatePendingAmount = errors.New("pending transaction with the same amount exists")

	// ErrAllocationFailure is returned when no unique amount could be allocated
	ErrAllocationFailure = errors.New("could not allocate a unique amount, please try again")

	// ErrUpstream is returned when an external collaborator fails
	ErrUpstream = errors.New("upstream service failure")

	// ErrResourceLocked is returned when a lease is held by another process
	ErrResourceLocked = errors.New("resource is locked by another process")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrAmountOutOfRange):
		return CodeAmountOutOfRange
	case errors.Is(err, ErrInvalidAction):
		return CodeInvalidAction
	case errors.Is(err, ErrInvalidCategory):
		return CodeInvalidCategory
	case errors.Is(err, ErrInvalidPaymentLink):
		return CodeInvalidPaymentLink
	case errors.Is(err, ErrNoAmountFound):
		return CodeNoAmountFound
	case errors.Is(err, ErrInvalidStatus):
		return CodeInvalidStatus
	case errors.Is(err, ErrDuplicateMethod):
		return CodeDuplicateMethod
	case errors.Is(err, ErrDuplicateMerchant):
		return CodeDuplicateMerchant
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidRequest):
		return CodeValidation
	case errors.Is(err, ErrMissingAPIKey), errors.Is(err, ErrInvalidAPIKey):
		return CodeUnauthorized
	case errors.Is(err, ErrMerchantNotVerified):
		return CodeForbidden
	case errors.Is(err, ErrQuotaExhausted):
		return CodeQuotaExhausted
	case errors.Is(err, ErrMethodNotFound):
		return CodeMethodNotFound
	case errors.Is(err, ErrMethodUnavailable):
		return CodeMethodUnavailable
	case errors.Is(err, ErrMethodInUse):
		return CodeMethodInUse
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionMissing
	case errors.Is(err, ErrMerchantNotFound):
		return CodeMerchantNotFound
	case errors.Is(err, ErrStoreNotFound):
		return CodeStoreNotFound
	case errors.Is(err, ErrAlreadyFinalized):
		return CodeAlreadyFinalized
	case errors.Is(err, ErrResourceLocked):
		return CodeResourceLocked
	case errors.Is(err, ErrAllocationFailure):
		return CodeAllocationFailure
	case errors.Is(err, ErrUpstream):
		return CodeUpstream
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	default:
		return CodeInternalServer
	}
}

// ValidationError describes a rejected input field
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.Err.Error(), e.Field, e.Reason)
}

// Unwrap returns the underlying error
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports every validation failure as ErrValidation as well
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "validation_error",
		"field":      e.Field,
		"reason":     e.Reason,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e),
	}
}

// NewValidationError creates a validation error wrapping a base error
func NewValidationError(field, reason string, err error) error {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

// TransitionError represents a rejected transaction status change
type TransitionError struct {
	TransactionID string
	MerchantID    uint64
	From          string
	To            string
	Err           error
}

// Error implements the error interface for TransitionError
func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move transaction %s (merchant: %d) from %s to %s: %v",
		e.TransactionID, e.MerchantID, e.From, e.To, e.Err)
}

// Unwrap returns the underlying error
func (e *TransitionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TransitionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "transition_error",
		"transaction_id": e.TransactionID,
		"merchant_id":    e.MerchantID,
		"from":           e.From,
		"to":             e.To,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewTransitionError creates a detailed transition error
func NewTransitionError(transactionID string, merchantID uint64, from, to string, err error) error {
	return &TransitionError{
		TransactionID: transactionID,
		MerchantID:    merchantID,
		From:          from,
		To:            to,
		Err:           err,
	}
}

// UpstreamError wraps a failure of an external collaborator.
// Its message is safe to return to API clients; the cause is only logged.
type UpstreamError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is checks if the target error is an ErrUpstream
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// PublicMessage returns the message shown to API clients
func (e *UpstreamError) PublicMessage() string {
	return fmt.Sprintf("failed to reach %s, please try again later", e.Service)
}

// LogFields returns a map of fields for structured logging
func (e *UpstreamError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "upstream_error",
		"service":    e.Service,
		"operation":  e.Op,
		"error":      e.Err.Error(),
		"error_code": CodeUpstream,
	}
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(service, op string, err error) error {
	return &UpstreamError{Service: service, Op: op, Err: err}
}

// AllocationError provides detail about an exhausted amount allocation
type AllocationError struct {
	MerchantID uint64
	BaseAmount int64
	FeeAmount  int64
	Attempts   int
}

// Error implements the error interface
func (e *AllocationError) Error() string {
	return fmt.Sprintf("no unique amount for merchant %d (base: %d, fee: %d) after %d attempts",
		e.MerchantID, e.BaseAmount, e.FeeAmount, e.Attempts)
}

// Is checks if the target error is an ErrAllocationFailure
func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocationFailure
}

// LogFields returns a map of fields for structured logging
func (e *AllocationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":  "allocation_failure",
		"merchant_id": e.MerchantID,
		"base_amount": e.BaseAmount,
		"fee_amount":  e.FeeAmount,
		"attempts":    e.Attempts,
		"error_code":  CodeAllocationFailure,
	}
}

// NewAllocationError creates a new allocation failure
func NewAllocationError(merchantID uint64, base, fee int64, attempts int) error {
	return &AllocationError{MerchantID: merchantID, BaseAmount: base, FeeAmount: fee, Attempts: attempts}
}

// IsValidationError checks if the error is any input validation failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAmountOutOfRange) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsAuthError checks if the error comes from API key gating
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) ||
		errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, ErrMerchantNotVerified) ||
		errors.Is(err, ErrQuotaExhausted)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrMerchantNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrStoreNotFound)
}

// IsMethodError checks if the error concerns payment method selection
func IsMethodError(err error) bool {
	return errors.Is(err, ErrMethodNotFound) ||
		errors.Is(err, ErrMethodUnavailable) ||
		errors.Is(err, ErrMethodInUse) ||
		errors.Is(err, ErrDuplicateMethod)
}

// IsAlreadyFinalizedError checks if the transaction had already left pending
func IsAlreadyFinalizedError(err error) bool {
	return errors.Is(err, ErrAlreadyFinalized)
}

// IsUpstreamError checks if an external collaborator failed
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsDuplicatePendingAmount checks if a write collided with another pending amount
func IsDuplicatePendingAmount(err error) bool {
	return errors.Is(err, ErrDuplicatePendingAmount)
}

// DatabaseError wraps a failed persistence operation with the domain error it maps to
type DatabaseError struct {
	Operation string
	Err       error
	Cause     error
}

// Error implements the error interface
func (e *DatabaseError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Operation, e.Err, e.Cause)
}

// Unwrap returns the mapped domain error
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *DatabaseError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type": "database_error",
		"operation":  e.Operation,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
	if e.Cause != nil {
		fields["cause"] = e.Cause.Error()
	}
	return fields
}

// NewDatabaseError creates a database error; kind defaults to ErrDatabaseConnection
func NewDatabaseError(operation string, kind, cause error) error {
	if kind == nil {
		kind = ErrDatabaseConnection
	}
	return &DatabaseError{Operation: operation, Err: kind, Cause: cause}
}
