// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"leadflow_backend/platform/phone"

	"github.com/go-playground/validator/v10"
)

// TagPhone is the struct tag for phone numbers that must be plausible for
// the configured region.
const TagPhone = "phone"

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the phone rule bound to phoneRegion.
func New(phoneRegion string) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		return phone.Plausible(fl.Field().String(), phoneRegion)
	})
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field any, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
