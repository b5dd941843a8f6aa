package utils

import (
	"errors"
	"net/http"
)

var ErrorRecordNotFound = errors.New("record not found")

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindPreconditionFailed
	KindBadRequest
	KindConflict
)

// DomainError carries the business-rule failure category so the HTTP
// layer can pick a status without string matching. Never retried.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func NotFoundError(msg string) error {
	return &DomainError{Kind: KindNotFound, Message: msg}
}

// ForbiddenOperation marks a business-rule violation: over-supply,
// editing a closed order, selling below the stock floor.
func ForbiddenOperation(msg string) error {
	return &DomainError{Kind: KindForbidden, Message: msg}
}

func PreconditionFailedError(msg string) error {
	return &DomainError{Kind: KindPreconditionFailed, Message: msg}
}

func BadRequestError(msg string) error {
	return &DomainError{Kind: KindBadRequest, Message: msg}
}

func ConflictError(msg string) error {
	return &DomainError{Kind: KindConflict, Message: msg}
}

func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, ErrorRecordNotFound) {
		return KindNotFound
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
