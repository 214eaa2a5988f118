// Package validation wraps go-playground/validator behind a small API used
// to validate configuration and client options across the library.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// instance returns the shared validator. Struct validation rules are
// stateless, so one instance serves the whole library.
func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError describes a single failed constraint on a struct field.
type FieldError struct {
	Field      string // namespaced field path, e.g. "HTTP.Timeout"
	Constraint string // failed validation tag, e.g. "required", "min"
	Param      string // tag parameter, if any
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: failed %q constraint (param: %s)", e.Field, e.Constraint, e.Param)
	}
	return fmt.Sprintf("%s: failed %q constraint", e.Field, e.Constraint)
}

// Struct validates v against its `validate` struct tags. It returns an
// error joining one FieldError per failed constraint, or nil when valid.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fieldErrs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrs = append(fieldErrs, FieldError{
			Field:      trimRootNamespace(fe.Namespace()),
			Constraint: fe.Tag(),
			Param:      fe.Param(),
		})
	}
	return errors.Join(fieldErrs...)
}

// Var validates a single value against a validation tag expression,
// e.g. Var(port, "min=1,max=65535").
func Var(v any, tag string) error {
	return instance().Var(v, tag)
}

// trimRootNamespace drops the leading struct type name from a namespace
// so errors read "HTTP.Timeout" rather than "Config.HTTP.Timeout".
func trimRootNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
