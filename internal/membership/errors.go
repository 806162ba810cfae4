// Package membership defines the typed failure taxonomy shared by the group
// and project membership services. Every business-rule violation is detected
// before any mutation and surfaced as an *Error; transport maps the Kind to a
// status code. Store I/O failures are ordinary errors and stay unclassified.
package membership

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule violation.
type Kind int

const (
	// KindNotFound means the container or a member entity does not exist.
	KindNotFound Kind = iota + 1
	// KindInvalidBatch means one or more ids in a batch did not resolve.
	KindInvalidBatch
	// KindAlreadyMember means the edge to create already exists.
	KindAlreadyMember
	// KindSelfReference means a group would reference itself, directly or
	// through a hierarchy cycle.
	KindSelfReference
	// KindDepthExceeded means the sub-group limit would be reached.
	KindDepthExceeded
	// KindLimitExceeded means a user is already at the group-count cap.
	KindLimitExceeded
	// KindNotMember means the removal target is not a member.
	KindNotMember
)

// Error is a business-rule violation with a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent container or member entity.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidBatch reports a batch with one or more unresolved ids.
func InvalidBatch(format string, args ...interface{}) *Error {
	return newError(KindInvalidBatch, format, args...)
}

// AlreadyMember reports a duplicate membership edge.
func AlreadyMember(format string, args ...interface{}) *Error {
	return newError(KindAlreadyMember, format, args...)
}

// SelfReference reports a group referencing itself.
func SelfReference(format string, args ...interface{}) *Error {
	return newError(KindSelfReference, format, args...)
}

// DepthExceeded reports a hierarchy that is at its sub-group limit.
func DepthExceeded(format string, args ...interface{}) *Error {
	return newError(KindDepthExceeded, format, args...)
}

// LimitExceeded reports a user at the per-user group cap.
func LimitExceeded(format string, args ...interface{}) *Error {
	return newError(KindLimitExceeded, format, args...)
}

// NotMember reports a removal target that is not a member.
func NotMember(format string, args ...interface{}) *Error {
	return newError(KindNotMember, format, args...)
}

// KindOf returns the Kind of err if it is a membership Error, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
