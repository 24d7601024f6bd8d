package domain

import (
	"net/http"
)

// ErrorCode identifies a class of failure that can cross the API boundary.
type ErrorCode int

const (
	ErrorCodeInternalProcess ErrorCode = iota
	ErrorCodeParameterInvalid
	ErrorCodeResourceNotFound
	ErrorCodeAuthPermissionDenied
	ErrorCodeAuthNotAuthenticated
	ErrorCodeQuotaExhausted
	ErrorCodeRemoteProcess
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeParameterInvalid:
		return "PARAMETER_INVALID"
	case ErrorCodeResourceNotFound:
		return "RESOURCE_NOT_FOUND"
	case ErrorCodeAuthPermissionDenied:
		return "AUTH_PERMISSION_DENIED"
	case ErrorCodeAuthNotAuthenticated:
		return "AUTH_NOT_AUTHENTICATED"
	case ErrorCodeQuotaExhausted:
		return "QUOTA_EXHAUSTED"
	case ErrorCodeRemoteProcess:
		return "REMOTE_PROCESS_ERROR"
	default:
		return "INTERNAL_PROCESS"
	}
}

func (c ErrorCode) httpStatus() int {
	switch c {
	case ErrorCodeParameterInvalid:
		return http.StatusBadRequest
	case ErrorCodeResourceNotFound:
		return http.StatusNotFound
	case ErrorCodeAuthPermissionDenied:
		return http.StatusForbidden
	case ErrorCodeAuthNotAuthenticated:
		return http.StatusUnauthorized
	case ErrorCodeQuotaExhausted:
		return http.StatusTooManyRequests
	case ErrorCodeRemoteProcess:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DomainError carries an error code, the underlying cause and an optional
// client-facing message. The zero value behaves as a generic internal error,
// so errors.As callers can use the result without checking the match.
type DomainError struct {
	code   ErrorCode
	err    error
	msg    string
	detail map[string]interface{}
}

// ErrorOption customizes a DomainError at construction time.
type ErrorOption func(*DomainError)

// WithMsg sets the message returned to the client.
func WithMsg(msg string) ErrorOption {
	return func(e *DomainError) {
		e.msg = msg
	}
}

// WithDetail attaches structured detail to the error response.
func WithDetail(detail map[string]interface{}) ErrorOption {
	return func(e *DomainError) {
		e.detail = detail
	}
}

// NewError wraps err with a domain error code.
func NewError(code ErrorCode, err error, opts ...ErrorOption) DomainError {
	e := DomainError{
		code: code,
		err:  err,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e DomainError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}
	return e.code.String()
}

func (e DomainError) Unwrap() error {
	return e.err
}

// Name returns the stable identifier of the error class.
func (e DomainError) Name() string {
	return e.code.String()
}

// ClientMsg returns the message intended for API consumers. Empty when the
// error was created without one.
func (e DomainError) ClientMsg() string {
	return e.msg
}

// Detail returns structured error detail, or nil.
func (e DomainError) Detail() map[string]interface{} {
	return e.detail
}

// HTTPStatus maps the error class to an HTTP status code.
func (e DomainError) HTTPStatus() int {
	return e.code.httpStatus()
}
