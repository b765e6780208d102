package validation

import (
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

// Locale selects the language of violation messages
type Locale string

const (
	LocaleZH Locale = "zh"
	LocaleEN Locale = "en"
)

var (
	supportedLocales = []Locale{LocaleZH, LocaleEN}
	localeMatcher    = language.NewMatcher([]language.Tag{language.Chinese, language.English})
)

// MatchLocale picks the supported locale that best fits an Accept-Language header
func MatchLocale(acceptLanguage string, fallback Locale) Locale {
	if acceptLanguage == "" {
		return fallback
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}

	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return supportedLocales[index]
}

// Rule attaches a kind and localized messages to one rule tag of one field
type Rule struct {
	Field    string
	Tag      string
	Kind     Kind
	Messages map[Locale]string
}

type ruleKey struct {
	field string
	tag   string
}

// Catalog is the message registry for one request contract.
// Fields are ordered by their first rule declaration.
type Catalog struct {
	rules  map[ruleKey]Rule
	fields []string
}

// NewCatalog builds a catalog from rule declarations
func NewCatalog(rules ...Rule) *Catalog {
	c := &Catalog{rules: make(map[ruleKey]Rule, len(rules))}
	for _, r := range rules {
		c.rules[ruleKey{field: r.Field, tag: r.Tag}] = r
		if !slices.Contains(c.fields, r.Field) {
			c.fields = append(c.fields, r.Field)
		}
	}
	return c
}

// FieldOrder is the position of field in the catalog. Unknown fields sort last.
func (c *Catalog) FieldOrder(field string) int {
	if c == nil {
		return 0
	}
	if i := slices.Index(c.fields, field); i >= 0 {
		return i
	}
	return len(c.fields)
}

// Rule returns the declaration for field and tag, if any
func (c *Catalog) Rule(field, tag string) (Rule, bool) {
	if c == nil {
		return Rule{}, false
	}
	r, ok := c.rules[ruleKey{field: field, tag: tag}]
	return r, ok
}

// Localize re-renders messages of violations in the given locale
func (c *Catalog) Localize(violations Violations, locale Locale) Violations {
	out := make(Violations, len(violations))
	for i, v := range violations {
		out[i] = v
		if r, ok := c.Rule(v.Field, v.Tag); ok {
			if msg, ok := r.Messages[locale]; ok {
				out[i].Message = msg
			}
		}
	}
	return out
}

func (c *Catalog) violation(fe validator.FieldError) Violation {
	field := fe.Field()
	tag := fe.Tag()

	if r, ok := c.Rule(field, tag); ok {
		return Violation{Field: field, Kind: r.Kind, Message: r.Messages[LocaleZH], Tag: tag}
	}

	return Violation{Field: field, Kind: kindForTag(fe), Message: fallbackMessage(fe), Tag: tag}
}

func kindForTag(fe validator.FieldError) Kind {
	switch fe.Tag() {
	case "required", "notblank":
		return KindRequiredFieldMissing
	case "min", "max", "gte", "lte", "gt", "lt", "len":
		if fe.Kind() == reflect.String {
			return KindLengthViolation
		}
		return KindRangeViolation
	default:
		return KindInvalidValue
	}
}

func fallbackMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must not exceed " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
