package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json name so messages match the request body.
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
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Struct validates v and returns an apperr validation error with one
// message per failing field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Wrap(apperr.Validation, "invalid input", err)
	}

	fields := make(map[string]string, len(ve))
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		key := fieldPath(fe)
		msg := message(fe)
		if _, dup := fields[key]; dup {
			continue
		}
		fields[key] = msg
		msgs = append(msgs, msg)
	}
	return apperr.ValidationFields(strings.Join(msgs, "; "), fields)
}

// fieldPath drops the top-level struct name: "Order.products[0].quantity" -> "products[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	f := fieldPath(fe)
	switch fe.Tag() {
	case "required", "notblank":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "url", "http_url":
		return f + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", f, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", f, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %q check", f, fe.Tag())
	}
}
