package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// validate checks the `validate` struct tags of request payloads. Field
// errors are reported under their JSON names.
var validate = newValidator()

var cartQuantityRule = fmt.Sprintf("min=1,max=%d", MaxCartQuantity)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the tag rules of s. Field paths are relative to s and
// prefixed with prefix when it is not empty.
func validateStruct(s any, prefix string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		if prefix != "" {
			path = prefix + "." + path
		}
		verr.Add(path, ruleMessage(fe))
	}
	return verr
}

func ruleMessage(fe validator.FieldError) string {
	collection := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		if collection {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "min":
		if collection {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// ValidateCartQuantity checks a requested line quantity.
func ValidateCartQuantity(quantity int) error {
	if err := validate.Var(quantity, cartQuantityRule); err != nil {
		return ErrInvalidQuantity
	}
	return nil
}
