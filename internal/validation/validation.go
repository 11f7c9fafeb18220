// Package validation turns struct-tag validation failures into the
// per-field, human readable messages returned to API clients.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("vehicle_year", func(fl validator.FieldLevel) bool {
		y := fl.Field().Int()
		return y >= 1900 && y <= int64(time.Now().Year()+1)
	})
	return v
}

// Struct validates s and returns one full message per failing field, or nil
// when s is valid.
func Struct(s interface{}) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

// FullMessage prefixes msg with the humanized field name,
// e.g. ("phone_number", "has already been taken").
func FullMessage(field, msg string) string {
	return Humanize(field) + " " + msg
}

// Humanize converts a snake_case attribute name into a sentence-case label.
func Humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		if strings.HasSuffix(field, "_id") {
			return FullMessage(strings.TrimSuffix(field, "_id"), "must exist")
		}
		return FullMessage(field, "can't be blank")
	case "email":
		return FullMessage(field, "is invalid")
	case "oneof":
		return FullMessage(field, "is not included in the list")
	case "min":
		if fe.Kind() == reflect.String {
			return FullMessage(field, fmt.Sprintf("is too short (minimum is %s characters)", fe.Param()))
		}
		return FullMessage(field, "must be greater than or equal to "+fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return FullMessage(field, fmt.Sprintf("is too long (maximum is %s characters)", fe.Param()))
		}
		return FullMessage(field, "must be less than or equal to "+fe.Param())
	case "vehicle_year":
		return FullMessage(field, fmt.Sprintf("must be between 1900 and %d", time.Now().Year()+1))
	default:
		return FullMessage(field, "is invalid")
	}
}
