// Package apperr classifies errors for the HTTP boundary.
//
// Packages keep their own sentinel errors and wrap them with an *Error carrying a Kind.
// errors.Is keeps working against the sentinels; KindOf and Status decide the response.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuth          Kind = "auth"
	KindNotFound      Kind = "not_found"
	KindUpstream      Kind = "upstream"
	KindToolExecution Kind = "tool_execution"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "analysis.clone"
	Message string // caller-facing message
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Wrap(kind Kind, op string, err error, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the outermost *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of the outermost *Error, if any.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return ""
}

func Status(kind Kind) int {
	switch kind {
	case KindValidation, KindToolExecution:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Exposable reports whether messages of this kind are safe to show in production.
func Exposable(kind Kind) bool {
	switch kind {
	case KindUpstream, KindInternal:
		return false
	default:
		return true
	}
}
