// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validate checks form input structs with go-playground/validator
// and converts failures into apperror validation errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/model"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name so handlers can attach inline errors.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = val.RegisterValidation("startype", func(fl validator.FieldLevel) bool {
		return model.StarType(fl.Field().String()).IsValid()
	})
	_ = val.RegisterValidation("newsstatus", func(fl validator.FieldLevel) bool {
		return model.NewsStatus(fl.Field().String()).IsValid()
	})
	_ = val.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.IsValidRole(fl.Field().String())
	})
	return val
}

// Struct validates s. It returns nil or an *apperror.AppError whose Message
// and Field describe the first failure and whose Fields holds all of them.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating input: %w", err)
	}

	appErr := &apperror.AppError{
		Err:    apperror.ErrValidation,
		Fields: make(map[string]string, len(verrs)),
	}
	for _, fe := range verrs {
		msg := message(fe)
		if appErr.Field == "" {
			appErr.Field = fe.Field()
			appErr.Message = msg
		}
		if _, seen := appErr.Fields[fe.Field()]; !seen {
			appErr.Fields[fe.Field()] = msg
		}
	}
	return appErr
}

// Var checks a single value against a tag list such as "required,email".
func Var(value any, tag string) error {
	return v.Var(value, tag)
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "eqfield":
		if strings.Contains(strings.ToLower(fe.StructField()), "password") {
			return "Passwords do not match."
		}
		return fmt.Sprintf("%s must match %s.", label, humanize(fe.Param()))
	case "url", "http_url":
		return label + " must be a valid URL."
	case "oneof", "startype", "newsstatus", "role":
		return label + " has an invalid value."
	default:
		return label + " is invalid."
	}
}

// humanize turns "full_name" or "FullName" into "Full name".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	if s == "" {
		return "Field"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
