package actions

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "chartfusion-agent/pkg/errors"
)

// FieldError names one offending field inside a batch, prefixed with the
// action index, e.g. "[2].datasetId"
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator checks actions against their declarative parameter rules before
// anything reaches the scheduler
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a validator that reports fields by their JSON names
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateAction checks one action. Index is the position in the submitted
// batch and prefixes every field in the returned error.
func (v *Validator) ValidateAction(index int, action Action) error {
	if !action.Kind.IsValid() {
		return pkgerrors.NewValidationf("[%d].kind: unknown action kind %q", index, action.Kind)
	}
	if action.Params == nil {
		return pkgerrors.NewValidationf("[%d].params: missing parameters for %s", index, action.Kind)
	}

	err := v.validate.Struct(action.Params)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(err, "action validation")
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, FieldError{
			Field:   fmt.Sprintf("[%d].%s", index, fe.Field()),
			Message: messageFor(fe),
		}.Error())
	}
	return pkgerrors.NewValidation(strings.Join(messages, "; "))
}

// ValidateBatch checks every action and returns one slot per input, nil where
// the action is valid. The batch itself is never rejected wholesale: invalid
// actions fail individually and the rest proceed.
func (v *Validator) ValidateBatch(batch []Action) []error {
	errs := make([]error, len(batch))
	for i, action := range batch {
		errs[i] = v.ValidateAction(i, action)
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s entries", fe.Param())
	case "uuid":
		return "must be a valid element ID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
