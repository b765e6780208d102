// Package validation evaluates validator/v10 struct rules and reports every
// failed rule as a Violation carrying the field, a machine-readable kind and
// a localized message.
package validation

import (
	"strings"

	"github.com/samber/lo"
)

// Kind classifies a violation for machine consumers
type Kind string

const (
	KindRequiredFieldMissing Kind = "RequiredFieldMissing"
	KindRangeViolation       Kind = "RangeViolation"
	KindLengthViolation      Kind = "LengthViolation"
	KindTypeMismatch         Kind = "TypeMismatch"
	KindInvalidValue         Kind = "InvalidValue"
)

// Violation is a single failed constraint
type Violation struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`

	// Tag is the rule that failed (e.g. "required", "max"), used to re-render the message in another locale
	Tag string `json:"-"`
}

// Violations is the ordered set of failed constraints of one input. It is
// returned as an error so callers can keep explicit error returns.
type Violations []Violation

func (v Violations) Error() string {
	parts := lo.Map(v, func(item Violation, _ int) string {
		return item.Field + ": " + item.Message
	})
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the offending field names in report order
func (v Violations) Fields() []string {
	return lo.Map(v, func(item Violation, _ int) string { return item.Field })
}

// ForField returns the violations reported for a single field
func (v Violations) ForField(field string) Violations {
	return lo.Filter(v, func(item Violation, _ int) bool { return item.Field == field })
}
