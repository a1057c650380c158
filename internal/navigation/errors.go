// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package navigation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownRoute is returned by Href for a name that is not in the table.
	ErrUnknownRoute = errors.New("unknown route")

	// ErrMissingParam is returned by Href when a path parameter has no value.
	ErrMissingParam = errors.New("missing route parameter")

	// ErrInvalidPath is returned when a request path cannot be canonicalized.
	ErrInvalidPath = errors.New("invalid path")

	// ErrPathEscapesRoot is returned when ".." segments climb above "/".
	ErrPathEscapesRoot = errors.New("path escapes root")
)

// ValidationErrorType categorizes route table errors.
type ValidationErrorType string

const (
	ErrorDuplicateName ValidationErrorType = "DUPLICATE_NAME"
	ErrorDuplicatePath ValidationErrorType = "DUPLICATE_PATH"
	ErrorInvalidPath   ValidationErrorType = "INVALID_PATH"
	ErrorInvalidMode   ValidationErrorType = "INVALID_MODE"
	ErrorInvalidBase   ValidationErrorType = "INVALID_BASE"
	ErrorInvalidName   ValidationErrorType = "INVALID_NAME"
	ErrorInvalidView   ValidationErrorType = "INVALID_VIEW"
)

// ValidationError describes one problem found in a route table.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	// Routes lists the names of the routes involved, in table order.
	Routes []string
}

func (e ValidationError) Error() string {
	if len(e.Routes) == 0 {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (routes: %s)", e.Type, e.Message, strings.Join(e.Routes, ", "))
}

// ValidationErrors collects every problem found while building an Engine.
type ValidationErrors struct {
	Errors []ValidationError
}

func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route table errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, err.Error())
	}
	return sb.String()
}

// Has reports whether an error of the given type was collected.
func (e *ValidationErrors) Has(t ValidationErrorType) bool {
	for _, err := range e.Errors {
		if err.Type == t {
			return true
		}
	}
	return false
}
