package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/getmentor/rating-api/internal/models"
	"github.com/getmentor/rating-api/internal/repository"
	"github.com/getmentor/rating-api/pkg/logger"
	"github.com/getmentor/rating-api/pkg/metrics"
)

const consultationCacheName = "consultations"

// ConsultationCache keeps recently looked-up consultations in memory.
// Only found consultations are cached; lookups that fail always reach the source.
type ConsultationCache struct {
	cache  *gocache.Cache
	source repository.ConsultationSource
	ttl    time.Duration
}

var _ repository.ConsultationSource = (*ConsultationCache)(nil)

// NewConsultationCache wraps source with a TTL cache. A non-positive ttl disables caching.
func NewConsultationCache(source repository.ConsultationSource, ttl time.Duration) *ConsultationCache {
	cleanup := 2 * ttl
	if cleanup <= 0 {
		cleanup = time.Minute
	}

	return &ConsultationCache{
		cache:  gocache.New(ttl, cleanup),
		source: source,
		ttl:    ttl,
	}
}

// GetConsultation returns a cached copy of the consultation or fetches it from the source
func (cc *ConsultationCache) GetConsultation(ctx context.Context, consultationNo string) (*models.Consultation, error) {
	if cc.ttl <= 0 {
		return cc.source.GetConsultation(ctx, consultationNo)
	}

	if data, found := cc.cache.Get(consultationNo); found {
		if consultation, ok := data.(models.Consultation); ok {
			metrics.CacheHits.WithLabelValues(consultationCacheName).Inc()
			return &consultation, nil
		}
		logger.Error("Invalid consultation cache data type", zap.String("consultation_no", consultationNo))
		cc.cache.Delete(consultationNo)
	}

	metrics.CacheMisses.WithLabelValues(consultationCacheName).Inc()

	consultation, err := cc.source.GetConsultation(ctx, consultationNo)
	if err != nil {
		return nil, err
	}

	// Store by value so callers can't mutate the cached entry
	cc.cache.Set(consultationNo, *consultation, gocache.DefaultExpiration)
	metrics.CacheSize.WithLabelValues(consultationCacheName).Set(float64(cc.cache.ItemCount()))

	return consultation, nil
}

// Invalidate drops a consultation so the next lookup sees fresh data
func (cc *ConsultationCache) Invalidate(consultationNo string) {
	cc.cache.Delete(consultationNo)
	metrics.CacheSize.WithLabelValues(consultationCacheName).Set(float64(cc.cache.ItemCount()))
	logger.Debug("Consultation cache entry invalidated", zap.String("consultation_no", consultationNo))
}
