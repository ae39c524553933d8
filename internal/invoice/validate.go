package invoice

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidJob indicates a job that violates the generator's preconditions.
var ErrInvalidJob = errors.New("invalid job")

// ValidationError lists the offending fields of an invalid job.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidJob, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidJob
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the structural preconditions the section library relies on.
func Validate(job *Job) error {
	if job == nil {
		return &ValidationError{Fields: map[string]string{"job": "required"}}
	}
	fields := make(map[string]string)
	if err := validate.Struct(job); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate job: %w", err)
		}
		for _, fieldErr := range verrs {
			fields[fieldPath(fieldErr.Namespace())] = describe(fieldErr)
		}
	}
	if strings.TrimSpace(job.JobNumber) == "" {
		fields["jobNumber"] = "required"
	}
	for vi, v := range job.Vehicles {
		for pi, p := range v.Parts {
			if p.PartTotal.IsNegative() {
				fields[fmt.Sprintf("vehicles[%d].parts[%d].partTotal", vi, pi)] = "must not be negative"
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email"
	default:
		return fe.Error()
	}
}
