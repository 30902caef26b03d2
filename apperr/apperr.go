package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of error categories the API speaks. Every failure
// crossing the HTTP boundary is classified into exactly one kind, so callers
// can decide whether a retry is safe without parsing messages.
type Kind string

const (
	InvalidCredentials Kind = "invalid_credentials"
	Unauthorized       Kind = "unauthorized"
	SlotUnavailable    Kind = "slot_unavailable"
	InvalidTransition  Kind = "invalid_transition"
	PaymentFailed      Kind = "payment_failed"
	NotFound           Kind = "not_found"
	ValidationError    Kind = "validation_error"
	Internal           Kind = "internal"
)

// Error is the wire shape for every non-2xx response body.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is matches errors by kind so callers can use errors.Is with a bare kind
// sentinel, e.g. errors.Is(err, apperr.New(apperr.NotFound, "")).
func (e *Error) Is(target error) bool {
	var ae *Error
	if errors.As(target, &ae) {
		return e.Kind == ae.Kind
	}
	return false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// KindOf returns the kind of err, or Internal for anything unclassified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// StatusCode maps a kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case InvalidCredentials, Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case SlotUnavailable:
		return http.StatusConflict
	case InvalidTransition:
		return http.StatusConflict
	case PaymentFailed:
		return http.StatusBadRequest
	case ValidationError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes err to w with the status derived from its kind.
// Unclassified errors are masked as internal so database details never leak.
func WriteJSON(w http.ResponseWriter, err error) {
	ae, ok := err.(*Error)
	if !ok && !errors.As(err, &ae) {
		ae = &Error{Kind: Internal, Message: "internal server error"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Kind.StatusCode())
	json.NewEncoder(w).Encode(ae)
}

// FromResponse decodes an error body produced by WriteJSON. If the body is not
// in the expected shape, the status code alone decides the kind.
func FromResponse(status int, body []byte) *Error {
	var ae Error
	if err := json.Unmarshal(body, &ae); err == nil && ae.Kind != "" {
		return &ae
	}
	kind := Internal
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = Unauthorized
	case http.StatusNotFound:
		kind = NotFound
	case http.StatusConflict:
		kind = InvalidTransition
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = ValidationError
	}
	return &Error{Kind: kind, Message: http.StatusText(status)}
}
