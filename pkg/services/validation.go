package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	utils "chatbot/pkg/utills"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return utils.StrongPassword(fl.Field().String(), 8)
	})
	return v
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return ValidationFromError(err)
	}
	return nil
}

// ValidationFromError turns validator.ValidationErrors into a Validation error
// keyed by json field name. Any other error becomes a plain validation message.
func ValidationFromError(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation("invalid request body", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return Validation("validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "min":
		return fmt.Sprintf("size must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("size must be at most %s", fe.Param())
	case "password":
		return "must be at least 8 characters and contain a letter and a digit"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}
