package profiling

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmentor/rating-api/config"
)

func TestParseProfileTypes_Default(t *testing.T) {
	for _, value := range []string{"", " , "} {
		got, err := parseProfileTypes(value)
		require.NoError(t, err)
		assert.Equal(t, defaultProfileTypes, got)
	}
}

func TestParseProfileTypes_Custom(t *testing.T) {
	got, err := parseProfileTypes("cpu, alloc_space,mutex,CPU")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, got)
}

func TestParseProfileTypes_Invalid(t *testing.T) {
	_, err := parseProfileTypes("cpu,unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"unknown"`)
}

func TestServiceTags_DropsEmpty(t *testing.T) {
	tags := Service{Name: "rating-api", Environment: "production"}.tags()
	assert.Equal(t, map[string]string{"service_name": "rating-api", "environment": "production"}, tags)
}

func TestInitProfiler_Disabled(t *testing.T) {
	stop, err := InitProfiler(config.ProfilingConfig{}, Service{})
	require.NoError(t, err)
	assert.NotPanics(t, stop)
}

func TestInitProfiler_RequiresEndpoint(t *testing.T) {
	_, err := InitProfiler(config.ProfilingConfig{Enabled: true, Endpoint: "  "}, Service{})
	assert.Error(t, err)
}
