package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator wraps a validator/v10 engine configured to report JSON field
// names. The engine caches struct metadata and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a configured validator
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonFieldName)

	// RegisterValidation only fails for empty or reserved tag names
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}

	return &Validator{validate: v}
}

var defaultValidator = New()

// jsonFieldName is the JSON key of a struct field, or "" when the field is skipped
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Struct validates s with the package-level validator
func Struct(s any, catalog *Catalog) error {
	return defaultValidator.Struct(s, catalog)
}

// Struct evaluates every rule declared on s. Each field reports at most its
// first failing rule, and all fields are evaluated. It returns nil,
// Violations, or a non-validation error when s is not a struct.
func (v *Validator) Struct(s any, catalog *Catalog) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("failed to validate %T: %w", s, err)
	}

	violations := make(Violations, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, catalog.violation(fe))
	}
	return violations
}
