package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "marketplace/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire names so field errors match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct checks the struct's validate tags and returns every
// violation as one ValidationErrors, or nil.
func ValidateStruct(s interface{}) *apperrors.ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs := apperrors.NewValidationErrors()
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verrs.Add("", nil, err.Error())
		return verrs
	}

	for _, e := range fieldErrs {
		code := apperrors.CodeFieldInvalid
		if e.Tag() == "required" {
			code = apperrors.CodeFieldRequired
		}
		field := fieldPath(e)
		verrs.AddCode(code, field, e.Value(), formatFieldError(field, e))
	}
	return verrs
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatFieldError(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
