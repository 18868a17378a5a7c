// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-csv.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrResourceExhausted = fmt.Errorf("resource exhausted")
	ErrNotFound          = fmt.Errorf("resource not found")
	ErrNotReady          = fmt.Errorf("engine runtime not ready")
	ErrAborted           = fmt.Errorf("session aborted")
	ErrSessionClosed     = fmt.Errorf("session closed")
	ErrInvalidState      = fmt.Errorf("invalid session state")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeNotFound
	ErrCodeParse
	ErrCodeSource
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ParseError reports an engine status that is neither ok nor no-more-input.
type ParseError struct {
	Slot      Slot
	Status    Status
	BytesRead uint64
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on slot %d after %d bytes: %s (status %d)",
		e.Slot, e.BytesRead, e.Status, int(e.Status))
}

// Code returns ErrCodeParse.
func (e *ParseError) Code() ErrorCode { return ErrCodeParse }

// SourceError reports a failure of the byte source.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Code returns ErrCodeSource.
func (e *SourceError) Code() ErrorCode { return ErrCodeSource }

// CodeOf maps err to an ErrorCode.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var coded interface{ Code() ErrorCode }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, ErrResourceExhausted):
		return ErrCodeResourceExhausted
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	}
	return ErrCodeInternal
}
