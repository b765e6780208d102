package handlers

import (
	"cmp"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/getmentor/rating-api/internal/validation"
	"github.com/getmentor/rating-api/pkg/metrics"
)

// requestLocale negotiates the violation message locale from Accept-Language
func requestLocale(c *gin.Context, fallback validation.Locale) validation.Locale {
	return validation.MatchLocale(c.GetHeader("Accept-Language"), fallback)
}

// mergeViolations folds JSON type mismatches into the rule violations.
// A mistyped field is left at its zero value, so its type mismatch replaces any rule violation
// reported for it. The result is ordered by the catalog's field order.
func mergeViolations(catalog *validation.Catalog, typeViolations, ruleViolations validation.Violations) validation.Violations {
	merged := validation.Violations(lo.Reject(ruleViolations, func(v validation.Violation, _ int) bool {
		return len(typeViolations.ForField(v.Field)) > 0
	}))
	merged = append(merged, typeViolations...)

	slices.SortStableFunc(merged, func(a, b validation.Violation) int {
		return cmp.Compare(catalog.FieldOrder(a.Field), catalog.FieldOrder(b.Field))
	})
	return merged
}

func recordViolations(violations validation.Violations) {
	for _, v := range violations {
		metrics.RatingValidationViolations.WithLabelValues(v.Field, string(v.Kind)).Inc()
	}
}
