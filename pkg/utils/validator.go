package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the struct's validate tags.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// FieldError is a single validation failure in wire-friendly form.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"rule"`
	Value string `json:"value,omitempty"`
}

// GetValidationErrors flattens validator errors for the response details.
func GetValidationErrors(err error) []FieldError {
	var out []FieldError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}

	for _, fieldErr := range validationErrors {
		out = append(out, FieldError{
			Field: strings.ToLower(fieldErr.Field()[:1]) + fieldErr.Field()[1:],
			Tag:   fieldErr.Tag(),
			Value: fieldErr.Param(),
		})
	}

	return out
}
