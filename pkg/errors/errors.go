package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// =============== chat flow errors ===============

type Kind string

const (
	KindInputTimeoutOrInvalid Kind = "input_timeout_or_invalid"
	KindEmptyExtraction       Kind = "empty_extraction"
	KindUpstreamFetch         Kind = "upstream_fetch_failure"
	KindEmptyGeneration       Kind = "empty_generation"
	KindCooldown              Kind = "cooldown_active"
	KindUnexpected            Kind = "unexpected"
)

// GenericMessage is what the user sees for anything that is not a UserError.
const GenericMessage = "An unexpected error occurred. Please try again later."

// UserError ends a flow with a message that is safe to show in chat.
type UserError struct {
	Kind    Kind
	Message string
}

var (
	ErrTimeoutOrInvalid = func(message string) *UserError { return NewUser(KindInputTimeoutOrInvalid, message) }
	ErrEmptyExtraction  = func() *UserError {
		return NewUser(KindEmptyExtraction, "Sorry, I couldn't extract any text from your PDF. "+
			"This may happen if your CV is scanned or contains only images. "+
			"Please try uploading a text-based PDF.")
	}
	ErrUpstreamFetch   = func(sentinel string) *UserError { return NewUser(KindUpstreamFetch, sentinel) }
	ErrEmptyGeneration = func(message string) *UserError { return NewUser(KindEmptyGeneration, message) }
	ErrCooldown        = func(retryAfter time.Duration) *UserError {
		return NewUser(KindCooldown, fmt.Sprintf(
			"This command is on cooldown. Please wait %d seconds before using it again.", int(retryAfter.Seconds())))
	}
)

func NewUser(kind Kind, message string) *UserError {
	return &UserError{Kind: kind, Message: message}
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsUser unwraps err to a UserError if one is in the chain.
func AsUser(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// =============== HTTP API errors ===============

type ApiError struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var (
	ErrBadRequest       = func(detail string) *ApiError { return New(http.StatusBadRequest, "Bad Request", detail) }
	ErrMethodNotAllowed = func(detail string) *ApiError { return New(http.StatusMethodNotAllowed, "Method Not Allowed", detail) }
	ErrUnprocessable    = func(detail string) *ApiError {
		return New(http.StatusUnprocessableEntity, "Unprocessable Entity", detail)
	}
	ErrInternalServer = func(detail string) *ApiError {
		return New(http.StatusInternalServerError, "Internal Server Error", detail)
	}
)

func New(code int, message, detail string) *ApiError {
	return &ApiError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

func (e *ApiError) WithRequestID(requestID string) *ApiError {
	e.RequestID = requestID
	return e
}

func (e *ApiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *ApiError) StatusCode() int {
	return e.Code
}
