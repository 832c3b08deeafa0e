// Package validation turns malformed payloads into structured field errors.
//
// Struct-level rules live in binding tags and are checked by gin through
// go-playground/validator. Cross-field and enum rules that tags cannot express
// are checked here, and both kinds surface as one errors.Validation value.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	apperrors "gotrip/internal/errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

// fieldName reports json names in errors, falling back to form names for query structs.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Validator collects field errors for rules checked in code.
type Validator struct {
	fields []apperrors.FieldError
}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, message string) {
	v.fields = append(v.fields, apperrors.Field(field, message))
}

// Check records message against field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

func (v *Validator) Has(field string) bool {
	for _, f := range v.fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (v *Validator) Valid() bool {
	return len(v.fields) == 0
}

func (v *Validator) Fields() []apperrors.FieldError {
	return v.fields
}

// Err returns nil or a Validation error carrying every collected field.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return apperrors.Validation(v.fields...)
}

// FromBinding converts an error returned by gin's ShouldBind* into a Validation error.
func FromBinding(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperrors.Field(fe.Field(), message(fe)))
		}
		return apperrors.Validation(fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperrors.Validation(apperrors.Field(field, fmt.Sprintf("must be of type %s", typeErr.Type.String())))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperrors.Validation(apperrors.Field("body", "malformed JSON"))
	}

	if errors.Is(err, io.EOF) {
		return apperrors.Validation(apperrors.Field("body", "request body is required"))
	}

	return apperrors.Validation(apperrors.Field("request", err.Error()))
}

func message(fe validator.FieldError) string {
	param := fe.Param()
	isString := fe.Kind() == reflect.String
	isCollection := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid id"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "len":
		if isString {
			return fmt.Sprintf("must be exactly %s characters", param)
		}
		return "must have exactly " + param + " items"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		if isCollection {
			return fmt.Sprintf("must have at least %s items", param)
		}
		return "must be at least " + param
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		if isCollection {
			return fmt.Sprintf("must have at most %s items", param)
		}
		return "must be at most " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	}
	return "is invalid"
}
