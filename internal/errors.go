package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an action needs the session idle.
	ErrBusy = errors.New("a query is still in flight")
	// ErrNoSuchConversation is returned when a history position is out of range.
	ErrNoSuchConversation = errors.New("no such conversation")
	// ErrEmptyToken is returned by AuthContext.Login for a blank credential.
	ErrEmptyToken = errors.New("empty credential")
)

// APIError represents a non-success response from the backend
type APIError struct {
	Op     string // "login", "save_chat", "ingest"
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error [%s] status %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("api error [%s] status %d", e.Op, e.Status)
}

// TransportError represents a failed round-trip to the backend
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s] %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError represents a response body that could not be parsed
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error [%s]: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// JournalError represents errors accessing the local sync journal
type JournalError struct {
	Path string
	Op   string // "open", "record", "read", "delete"
	Err  error
}

func (e *JournalError) Error() string {
	return fmt.Sprintf("journal error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *JournalError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
