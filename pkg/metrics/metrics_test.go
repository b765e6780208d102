package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordScore(t *testing.T) {
	before := testutil.ToFloat64(RatingScores.WithLabelValues("4"))

	RecordScore(4)
	RecordScore(4)

	assert.Equal(t, before+2, testutil.ToFloat64(RatingScores.WithLabelValues("4")))
}

func TestMeasureDuration(t *testing.T) {
	got := MeasureDuration(time.Now().Add(-50 * time.Millisecond))
	assert.GreaterOrEqual(t, got, 0.05)
}
