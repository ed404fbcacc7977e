// Package errors provides custom error types for the roomchat client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNoSession        = errors.New("no signed-in user")
	ErrPermissionDenied = errors.New("gallery permission denied")
	ErrNoImageData      = errors.New("image has no encoded data")
	ErrNotConnected     = errors.New("not connected to the message backend")
	ErrCacheMiss        = errors.New("cache key not found")
)

// Send actions reported by SendError
const (
	ActionSendText  = "send_text"
	ActionSendImage = "send_image"
)

// SendError represents a failed append to the message collection
type SendError struct {
	Action string
	Err    error
}

func (e *SendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Action)
	}
	return fmt.Sprintf("%s failed: %v", e.Action, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// NewSendError creates a new SendError
func NewSendError(action string, err error) *SendError {
	return &SendError{Action: action, Err: err}
}

// CacheError represents a local cache read or write failure
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// NewCacheError creates a new CacheError
func NewCacheError(op, key string, err error) *CacheError {
	return &CacheError{Op: op, Key: key, Err: err}
}

// BackendError represents a failure talking to the realtime collection
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is allows comparison with other BackendErrors
func (e *BackendError) Is(target error) bool {
	_, ok := target.(*BackendError)
	return ok
}

// NewBackendError creates a new BackendError
func NewBackendError(op string, err error) *BackendError {
	return &BackendError{Op: op, Err: err}
}

// IsSendError checks if the error is a SendError
func IsSendError(err error) bool {
	var sendErr *SendError
	return errors.As(err, &sendErr)
}

// IsPermissionError checks if the error is a denied gallery permission
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsCacheError checks if the error is a CacheError
func IsCacheError(err error) bool {
	var cacheErr *CacheError
	return errors.As(err, &cacheErr)
}

// IsBackendError checks if the error is a BackendError
func IsBackendError(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr)
}
