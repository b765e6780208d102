package profiling

import (
	"fmt"
	"strings"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/getmentor/rating-api/config"
	"github.com/getmentor/rating-api/pkg/logger"
)

const defaultAppName = "rating-api"

var defaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
	pyroscope.ProfileBlockCount,
	pyroscope.ProfileBlockDuration,
}

var profileTypeMap = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// Service identifies the running instance in uploaded profiles
type Service struct {
	Name        string
	Namespace   string
	Version     string
	InstanceID  string
	Environment string
}

// InitProfiler starts continuous profiling and returns its stop func. Disabled config yields a no-op.
func InitProfiler(cfg config.ProfilingConfig, svc Service) (func(), error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	interval := time.Duration(cfg.UploadIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}

	profileTypes, err := parseProfileTypes(cfg.SampleTypes)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.AppName)
	if appName == "" {
		appName = defaultAppName
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   endpoint,
		UploadRate:      interval,
		ProfileTypes:    profileTypes,
		Tags:            svc.tags(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling initialized",
		zap.String("application_name", appName),
		zap.String("endpoint", endpoint),
		zap.Int("profile_types", len(profileTypes)),
		zap.Duration("upload_interval", interval),
	)

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
	}, nil
}

// tags drops empty labels, which pyroscope rejects
func (s Service) tags() map[string]string {
	return lo.OmitByValues(map[string]string{
		"service_name":    s.Name,
		"namespace":       s.Namespace,
		"service_version": s.Version,
		"instance":        s.InstanceID,
		"environment":     s.Environment,
	}, []string{""})
}

func parseProfileTypes(value string) ([]pyroscope.ProfileType, error) {
	keys := lo.Compact(lo.Map(strings.Split(value, ","), func(raw string, _ int) string {
		return strings.ToLower(strings.TrimSpace(raw))
	}))
	if len(keys) == 0 {
		return defaultProfileTypes, nil
	}

	if unknown, found := lo.Find(keys, func(key string) bool {
		_, ok := profileTypeMap[key]
		return !ok
	}); found {
		return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", unknown)
	}

	return lo.Uniq(lo.FlatMap(keys, func(key string, _ int) []pyroscope.ProfileType {
		return profileTypeMap[key]
	})), nil
}
