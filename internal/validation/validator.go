// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide (it caches struct
// metadata), and failures are translated into readable per-field messages:
//
//	type Limits struct {
//	    Workers int `validate:"gte=0,lte=1024"`
//	}
//
//	if err := validation.ValidateStruct(&limits); err != nil {
//	    return fmt.Errorf("invalid limits: %w", err)
//	}
//
// Nested structs and slices tagged with "dive" report their full path, for
// example "Books[3].Rating".
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes a single field that failed validation.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the field path relative to the validated struct.
func (e *FieldError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string {
	return e.tag
}

// Param returns the tag parameter (e.g., "5" for "lte=5").
func (e *FieldError) Param() string {
	return e.param
}

// Value returns the rejected value.
func (e *FieldError) Value() interface{} {
	return e.value
}

// Error returns a human-readable message.
func (e *FieldError) Error() string {
	return e.message
}

// Error is returned by ValidateStruct and collects every failing field.
type Error struct {
	fields []FieldError
}

// Fields returns the individual field failures.
func (e *Error) Fields() []FieldError {
	return e.fields
}

// Error joins all field messages.
func (e *Error) Error() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(e.fields))
	for i := range e.fields {
		messages = append(messages, e.fields[i].Error())
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates s and returns nil or an *Error.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &Error{fields: []FieldError{{
			field:   "unknown",
			tag:     "unknown",
			message: err.Error(),
		}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		path := trimNamespace(fe.Namespace())
		fields[i] = FieldError{
			field:   path,
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe, path),
		}
	}
	return &Error{fields: fields}
}

// trimNamespace drops the root type name: "Config.Cache.MaxEntries" -> "Cache.MaxEntries".
func trimNamespace(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError, field string) string {
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind().String() == "string"
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
