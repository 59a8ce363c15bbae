package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nathoo/spiritfield/engine/balance"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var structValidator = validator.New()

// validate checks the compiled balance against its struct tags and appends
// any violations to ve.
func validate(b *balance.Balance, ve *ValidationError) {
	err := structValidator.Struct(b)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Errors = append(ve.Errors, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s %s (got %v)", fe.Namespace(), describeTag(fe), fe.Value()))
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
