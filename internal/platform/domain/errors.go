package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so transports can map it to a status code.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInvalidState ErrorKind = "invalid_state"
)

// DomainError is a business rule failure carrying enough context to render a message.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Entity  string
	ID      string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewNotFoundError reports that the entity with the given id does not exist.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s with id %s not found", entity, id),
		Entity:  entity,
		ID:      id,
	}
}

// NewValidationError reports a rejected input or a violated business rule.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewForbiddenError reports an actor that may not perform the operation.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

// NewConflictError reports a concurrent modification.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewInvalidStateError reports a state machine transition that is not allowed.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// KindOf returns the kind of the first DomainError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsForbidden(err error) bool    { return KindOf(err) == KindForbidden }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }
