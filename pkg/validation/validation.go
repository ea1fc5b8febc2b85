// Package validation is the single schema-driven validator shared by every
// content type. Rules live in struct tags:
//
//	Label string `json:"label" validate:"required,notblank,max=100"`
//
// Field names in reported errors follow the json tag.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// FieldError describes one rule a field failed.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors is returned when one or more fields fail validation.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Validator wraps go-playground/validator with the project's tag set.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with json field naming and the notblank rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("validation: register notblank: %v", err))
	}
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.Struct(context.Background(), "", i)
}

// Struct validates one struct. A non-empty prefix is prepended to every
// reported field name ("stats[2]" + "label" -> "stats[2].label").
func (v *Validator) Struct(ctx context.Context, prefix string, s interface{}) error {
	err := v.v.StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, toFieldError(prefix, fe))
	}
	return out
}

// Each validates every element of items and merges the failures.
// Elements are reported as prefix[i].
func Each[T any](ctx context.Context, v *Validator, prefix string, items []T) error {
	var all Errors
	for i := range items {
		err := v.Struct(ctx, fmt.Sprintf("%s[%d]", prefix, i), &items[i])
		if err == nil {
			continue
		}
		var fieldErrs Errors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		all = append(all, fieldErrs...)
	}
	if len(all) > 0 {
		return all
	}
	return nil
}

func toFieldError(prefix string, fe validator.FieldError) FieldError {
	field := fe.Field()
	if prefix != "" {
		field = prefix + "." + field
	}
	return FieldError{
		Field:   field,
		Rule:    fe.Tag(),
		Message: message(field, fe),
	}
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		switch fe.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be %s characters or less", field, fe.Param())
	case "http_url", "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
