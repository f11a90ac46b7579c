package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedBackend matches ConfigurationErrors of kind UnsupportedBackend.
	ErrUnsupportedBackend = errors.New("unsupported search backend")
	// ErrInvalidValue matches ConfigurationErrors of kind InvalidValue.
	ErrInvalidValue = errors.New("invalid configuration value")
	// ErrMissingCredential matches ConfigurationErrors of kind MissingCredential.
	ErrMissingCredential = errors.New("missing credential")
)

// ErrorKind classifies a ConfigurationError.
type ErrorKind int

const (
	UnsupportedBackend ErrorKind = iota
	InvalidValue
	MissingCredential
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedBackend:
		return "unsupported-backend"
	case InvalidValue:
		return "invalid-value"
	case MissingCredential:
		return "missing-credential"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case UnsupportedBackend:
		return ErrUnsupportedBackend
	case InvalidValue:
		return ErrInvalidValue
	case MissingCredential:
		return ErrMissingCredential
	default:
		return nil
	}
}

// ConfigurationError reports a configuration problem found while resolving
// settings, before any network interaction happens. It is fatal to session setup.
type ConfigurationError struct {
	Kind  ErrorKind
	Field string
	Value any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s=%v", e.Kind, e.Field, e.Value)
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *ConfigurationError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}
