// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Input errors.
	ErrParse   = errors.New("parse failed")
	ErrNoInput = errors.New("no usable input")

	// Output errors.
	ErrOutput = errors.New("output write failed")
)

// ConfigurationError reports a missing or invalid setting. It is always fatal
// and is raised before any input file is touched.
type ConfigurationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("%s=%q: %s", e.Key, e.Value, e.Reason)
}

// Is lets errors.Is match the configuration sentinels.
func (e *ConfigurationError) Is(target error) bool {
	if target == ErrInvalidConfig {
		return true
	}
	return target == ErrMissingConfig && e.Value == ""
}

// NewConfigError creates a configuration error for key.
func NewConfigError(key, value, reason string) error {
	return &ConfigurationError{Key: key, Value: value, Reason: reason}
}

// ParseError reports a single input file that could not be turned into a spectrum.
type ParseError struct {
	Err    error
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IOError reports a failure writing an output artifact.
type IOError struct {
	Err  error
	Path string
	Op   string
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrOutput.
func (e *IOError) Is(target error) bool {
	return target == ErrOutput
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ParseErrors returns every ParseError contained in err, walking wrapped and
// joined errors.
func ParseErrors(err error) []*ParseError {
	switch e := err.(type) {
	case nil:
		return nil
	case *ParseError:
		return []*ParseError{e}
	case interface{ Unwrap() []error }:
		var out []*ParseError
		for _, inner := range e.Unwrap() {
			out = append(out, ParseErrors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return ParseErrors(e.Unwrap())
	}
	return nil
}
