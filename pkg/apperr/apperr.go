// Package apperr defines the error taxonomy shared by the services and the
// HTTP gateway.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindMissingIdentity
	KindNotFound
	KindAuthFailure
	KindForbidden
	KindTransactionFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMissingIdentity:
		return "missing_identity"
	case KindNotFound:
		return "not_found"
	case KindAuthFailure:
		return "auth_failure"
	case KindForbidden:
		return "forbidden"
	case KindTransactionFailure:
		return "transaction_failure"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindMissingIdentity:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthFailure:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrMissingIdentity    = &Error{Kind: KindMissingIdentity}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAuthFailure        = &Error{Kind: KindAuthFailure}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrTransactionFailure = &Error{Kind: KindTransactionFailure}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func MissingIdentity() error {
	return &Error{Kind: KindMissingIdentity, Message: "User ID or Guest Session ID is required"}
}

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func AuthFailure(msg string) error { return &Error{Kind: KindAuthFailure, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }

// TransactionFailure wraps the first error met inside a rolled back transaction.
func TransactionFailure(cause error) error {
	return &Error{Kind: KindTransactionFailure, Message: "Transaction failed", Err: cause}
}

// Internal wraps an unexpected store or collaborator failure.
func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf returns the kind of the outermost *Error in the chain, or
// KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Public splits err into the client-facing message and the detail text.
func Public(err error) (message, details string) {
	var e *Error
	if !errors.As(err, &e) {
		return "Internal server error", err.Error()
	}
	if e.Message == "" {
		message = e.Kind.String()
	} else {
		message = e.Message
	}
	if e.Err != nil {
		details = e.Err.Error()
		if e.Kind == KindTransactionFailure {
			message = message + ": " + details
		}
	}
	return message, details
}
