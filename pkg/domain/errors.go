package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

// Error kinds raised by transaction bodies and the engine.
const (
	// KindNotFound reports a referenced record that does not exist.
	KindNotFound Kind = "not_found"
	// KindConflict reports a well-formed request the current state does not permit.
	KindConflict Kind = "conflict"
	// KindInternal reports a violated post-condition or an infrastructure failure.
	KindInternal Kind = "internal"
	// KindInvalidInput reports malformed or missing arguments.
	KindInvalidInput Kind = "invalid_input"
)

// HTTPStatus maps the kind to the status code an HTTP layer should answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is the typed failure returned by transaction bodies.
type Error struct {
	Kind    Kind
	Entity  EntityType
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFoundf builds a KindNotFound error for entity.
func NotFoundf(entity EntityType, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a KindConflict error for entity.
func Conflictf(entity EntityType, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// Internalf builds a KindInternal error for entity.
func Internalf(entity EntityType, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputf builds a KindInvalidInput error.
func InvalidInputf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind carried by err. Errors that are not domain errors,
// such as storage failures, are internal. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
