package apperrors

import (
	"errors"
	"fmt"
)

// Cross-cutting errors shared by every layer.
var (
	// ErrNotFound indicates that a requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates that input data failed validation checks.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrForbidden indicates the acting user is not allowed to perform the operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrConflict indicates the operation conflicts with the current state of the resource.
	ErrConflict = errors.New("conflicting state")

	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = errors.New("internal error")
)

// Treasury domain errors. Every mutator raises these synchronously and leaves
// state untouched; the HTTP layer maps them to status codes.
var (
	// ErrRegisterBusy: the caisse already has a non-closed session.
	ErrRegisterBusy = errors.New("register already has an open session")

	// ErrUserAlreadyHasOpenSession: the user already custodies a non-closed session.
	ErrUserAlreadyHasOpenSession = errors.New("user already has an open session")

	// ErrRegisterInactive: the caisse is disabled and cannot be opened.
	ErrRegisterInactive = errors.New("register is inactive")

	// ErrInvalidTransition: the requested session status change is not allowed
	// from the current status.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrSessionNotClosable: closeSession called on a session that is not open.
	ErrSessionNotClosable = errors.New("session is not in a closable state")

	// ErrCannotDeleteOpenSession: only closed sessions may be deleted.
	ErrCannotDeleteOpenSession = errors.New("cannot delete a session that is not closed")

	// ErrInvalidDenomination: malformed or unknown note/coin line.
	ErrInvalidDenomination = errors.New("invalid denomination")

	// ErrVaultInactive: the coffre is disabled and rejects movements.
	ErrVaultInactive = errors.New("vault is inactive")

	// ErrInsufficientFunds: the movement would drive a balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyCompleted: complete called on a bank transaction that is not pending.
	ErrAlreadyCompleted = errors.New("bank transaction already completed")

	// ErrAlreadyCancelled: cancel called on a bank transaction that was already cancelled.
	ErrAlreadyCancelled = errors.New("bank transaction already cancelled")

	// ErrNotAnAuthorizedApprover: the actor is not among the request's candidates.
	ErrNotAnAuthorizedApprover = errors.New("user is not an authorized approver for this request")

	// ErrRequestAlreadyResolved: the approval request is no longer pending.
	ErrRequestAlreadyResolved = errors.New("approval request already resolved")

	// ErrTransferPendingApproval: the bank transaction is gated behind a
	// pending approval request and may only be settled by resolving it.
	ErrTransferPendingApproval = errors.New("transaction is awaiting approval")
)

// AppError wraps infrastructure failures with an HTTP-ish code and a message
// while preserving the underlying cause for errors.Is/As.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
