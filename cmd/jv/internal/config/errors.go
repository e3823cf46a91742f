package config

import (
	"fmt"
	"strings"
)

type MissingConfigError struct {
	Path string
	Err  error
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("config file %s could not be read: %v", e.Path, e.Err)
}

func (e *MissingConfigError) Unwrap() error {
	return e.Err
}

type InvalidYAMLError struct {
	Path    string
	Wrapped error
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("%s is not a valid yaml document: %v", e.Path, e.Wrapped)
}

func (e *InvalidYAMLError) Unwrap() error {
	return e.Wrapped
}

type InvalidValueError struct {
	Property string
	Value    string
	Allowed  []string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q, must be one of %s", e.Property, e.Value, strings.Join(e.Allowed, ", "))
}
