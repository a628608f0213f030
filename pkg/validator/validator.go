// Package validator checks request payloads with go-playground/validator.
// Field errors are reported under the field's JSON name so clients can map
// them back onto their form inputs.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	// Indian postal PIN: six digits, never starting with 0.
	pincodeRegexp = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	// Indian mobile number with an optional +91 or 0 prefix.
	phoneRegexp = regexp.MustCompile(`^(?:\+91|0)?[6-9][0-9]{9}$`)
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	// Amounts compare as numbers, so gte/lte work on decimal fields.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodeRegexp.MatchString(fl.Field().String())
	})
	v.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
		return phoneRegexp.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
	})
	return v
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

// jsonName reports a field by its json tag; untagged fields keep their Go name.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate checks s against its validate tags. Besides the stock tags it
// understands "pincode" and "inphone", and decimal.Decimal fields accept
// the numeric comparison tags. Tag violations come back as a
// *ValidationError; anything else (such as a non-struct argument) as is.
func Validate(s any) error {
	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	for i, fe := range e.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "field '%s' %s", fe.Field(), message(fe))
	}
	return b.String()
}

// Fields maps each failing field to a readable message.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field()] = message(fe)
	}
	return out
}

var fixedMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"pincode":  "must be a valid 6-digit PIN code",
	"inphone":  "must be a valid 10-digit mobile number",
	"numeric":  "must contain digits only",
	"url":      "must be a valid URL",
}

var paramMessages = map[string]string{
	"min":   "must be at least %s characters",
	"max":   "must be at most %s characters",
	"len":   "must be exactly %s characters",
	"gte":   "must be greater than or equal to %s",
	"lte":   "must be less than or equal to %s",
	"oneof": "must be one of: %s",
}

func message(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	if format, ok := paramMessages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Param())
	}
	return fmt.Sprintf("failed on '%s' validation", fe.Tag())
}
