package ingestion

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checker is implemented by bodies with rules that struct tags cannot express.
type checker interface {
	check() error
}

// Validate checks an event built by hand the way the constructors check the
// events they build: it needs an id, a timestamp, a body that matches Type
// and passes the body rules. The error is a *errors.ValidationError.
func Validate(ev Event) error {
	switch {
	case ev.ID == "":
		return pkgerrors.NewValidationError("id", "is required")
	case ev.Body == nil:
		return pkgerrors.NewValidationError("body", "is required")
	case ev.Type != ev.Body.EventType():
		return pkgerrors.NewValidationError("type",
			fmt.Sprintf("is %q but the body is a %s body", ev.Type, ev.Body.EventType()))
	case ev.Timestamp.IsZero():
		return pkgerrors.NewValidationError("timestamp", "is required")
	}
	return validateBody(ev.Body)
}

func validateBody(b Body) error {
	if err := validate.Struct(b); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return pkgerrors.NewValidationErrorWithCause(fe.Field(), describe(fe), err)
		}
		return pkgerrors.NewValidationErrorWithCause("body", err.Error(), err)
	}
	if c, ok := b.(checker); ok {
		return c.check()
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
