package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrDraftNotFound      = errors.New("draft not found")
	ErrBillNotFound       = errors.New("bill not found")
	ErrNotOwner           = errors.New("resource belongs to another user")
)

// ValidationError reports an upload that was rejected before extraction:
// wrong file type or over the size cap.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConfigurationError reports a missing or unusable upstream credential.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Setting
}

// UpstreamError carries the status and body of a failed call to the vision
// model so the caller sees what the upstream actually returned.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed with status %d: %s", e.Status, e.Body)
}

// ParseError reports model output with no parseable JSON object.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return "failed to parse model output: " + e.Detail
}

// PersistenceError reports a failed commit. The commit runs in one database
// transaction, so a PersistenceError means nothing was written.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failed during " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
