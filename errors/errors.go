// Package errors defines the validation outcome variant shared by the
// workflow and the transport layer. NotFound/Forbidden/BadRequest are a
// tagged kind on one type, matched explicitly where responses are rendered,
// instead of a type hierarchy.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindNotFound Kind = iota
	KindForbidden
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindForbidden:
		return "Forbidden"
	case KindBadRequest:
		return "BadRequest"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Failure tags a human-readable reason with the request field it concerns.
// An empty field means the failure is not attributable to a single field
// (e.g. a storage rejection).
type Failure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is the terminal outcome of a failed workflow run.
// Failures keep their insertion order.
type ValidationError struct {
	Kind     Kind
	Failures []Failure
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(msgs, "; "))
}

func NewNotFound(field, message string) *ValidationError {
	return &ValidationError{Kind: KindNotFound, Failures: []Failure{{Field: field, Message: message}}}
}

func NewForbidden(field, message string) *ValidationError {
	return &ValidationError{Kind: KindForbidden, Failures: []Failure{{Field: field, Message: message}}}
}

func NewBadRequest(field, message string) *ValidationError {
	return &ValidationError{Kind: KindBadRequest, Failures: []Failure{{Field: field, Message: message}}}
}

// AsValidation unwraps err into a ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := stderrors.As(err, &verr)
	return verr, ok
}

// HTTPStatus maps a workflow error onto the status code the API answers
// with. Anything that is not a ValidationError is an unexpected fault.
func HTTPStatus(err error) int {
	verr, ok := AsValidation(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch verr.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
