// Package errors provides sentinel errors and error types for the gambit core.
// It defines the failure kinds surfaced to callers and structured error types
// that preserve context while allowing inspection with errors.Is() and errors.As().
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
// Use these with errors.Is() to check for specific error types.
var (
	// ErrMalformedInput indicates text the position codec cannot parse.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidSquare indicates a square outside a1..h8.
	ErrInvalidSquare = errors.New("invalid square")

	// ErrInvalidMove indicates a move string that is not in coordinate form.
	ErrInvalidMove = errors.New("invalid move")

	// ErrEngineUnavailable indicates the engine client cannot serve requests.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrEngineProtocol indicates the engine output ended early or broke the grammar.
	ErrEngineProtocol = errors.New("engine protocol error")

	// ErrEngineStartup indicates the startup handshake did not complete.
	ErrEngineStartup = errors.New("engine startup failure")

	// ErrNoMove indicates the engine found no move in a finished position.
	ErrNoMove = errors.New("no legal move")

	// ErrInvalidConfig indicates invalid configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// EngineError wraps errors raised by the engine client with the operation
// being performed, the command in flight and the client state at the time.
type EngineError struct {
	Err     error  // The underlying error
	Op      string // Public operation, e.g. "bestmove"
	Command string // Last command sent (if applicable)
	State   string // Client state when the error occurred
}

// Error returns a formatted error message including all available context.
func (e *EngineError) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Command != "" {
		parts = append(parts, fmt.Sprintf("command %q", e.Command))
	}
	if e.State != "" {
		parts = append(parts, fmt.Sprintf("state %s", e.State))
	}

	context := strings.Join(parts, ", ")
	if context == "" {
		context = "engine"
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", context, e.Err)
	}
	return context
}

// Unwrap returns the underlying error, enabling errors.Is() and errors.As()
// to work through the EngineError wrapper.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// ParseError represents a position-text parsing error with field context.
type ParseError struct {
	Err      error  // The underlying error
	Input    string // The full text being parsed
	Field    string // Which field failed, e.g. "placement" or "en passant"
	Expected string // What was expected
	Got      string // What was found instead
}

// Error returns a formatted error message with field and context.
func (e *ParseError) Error() string {
	var parts []string

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	if e.Expected != "" && e.Got != "" {
		parts = append(parts, fmt.Sprintf("expected %s, got %q", e.Expected, e.Got))
	} else if e.Expected != "" {
		parts = append(parts, fmt.Sprintf("expected %s", e.Expected))
	} else if e.Got != "" {
		parts = append(parts, fmt.Sprintf("unexpected %q", e.Got))
	}

	if e.Input != "" {
		parts = append(parts, fmt.Sprintf("in %q", e.Input))
	}

	if e.Err != nil {
		if len(parts) > 0 {
			return fmt.Sprintf("%s: %v", strings.Join(parts, ": "), e.Err)
		}
		return e.Err.Error()
	}

	if len(parts) > 0 {
		return strings.Join(parts, ": ")
	}
	return "parse error"
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Wrap adds context to an error while preserving the underlying error
// for inspection with errors.Is() and errors.As().
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf adds formatted context to an error while preserving the underlying
// error for inspection with errors.Is() and errors.As().
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}
