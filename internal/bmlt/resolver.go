package bmlt

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
)

// Names substituted when a service body cannot be resolved.
const (
	NameUnaffiliated = "Unaffiliated"
	NameUnknown      = "Unknown"
)

// ServiceBodyFetcher loads service bodies from the local root server.
type ServiceBodyFetcher interface {
	Configured() bool
	GetServiceBodies(ctx context.Context) ([]models.ServiceBodyRecord, error)
}

type sourceCache struct {
	records   []models.ServiceBodyRecord
	names     map[string]string
	fetchedAt time.Time
}

// Resolver maps service body IDs to display names. Local records load lazily
// from the root server once per cache lifetime; external sources push their
// records in before rendering. A mutex guards the cache since handlers run
// concurrently.
type Resolver struct {
	fetcher ServiceBodyFetcher
	logger  *zap.Logger
	ttl     time.Duration

	mu      sync.Mutex
	sources map[string]*sourceCache
}

func NewResolver(fetcher ServiceBodyFetcher, ttl time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
		ttl:     ttl,
		sources: make(map[string]*sourceCache),
	}
}

// ResolveName returns the display name for a service body ID within a source.
// ID "0" is always Unaffiliated; empty IDs and misses resolve to Unknown.
func (r *Resolver) ResolveName(ctx context.Context, id, sourceID string) string {
	if id == "0" {
		return NameUnaffiliated
	}
	if id == "" {
		return NameUnknown
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cache := r.ensureLocked(ctx, sourceID)
	if name, ok := cache.names[id]; ok && name != "" {
		return name
	}
	return NameUnknown
}

// GetAll returns the cached records for a source, fetching local records on
// first use. Degraded fetches yield an empty slice, never an error.
func (r *Resolver) GetAll(ctx context.Context, sourceID string) []models.ServiceBodyRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	cache := r.ensureLocked(ctx, sourceID)
	out := make([]models.ServiceBodyRecord, len(cache.records))
	copy(out, cache.records)
	return out
}

// UpdateExternalServiceBodies replaces the cached records for an external
// source.
func (r *Resolver) UpdateExternalServiceBodies(sourceID string, records []models.ServiceBodyRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[sourceID] = newSourceCache(records)
}

// ClearCache drops every cached source, forcing the next local lookup to hit
// the root server again.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = make(map[string]*sourceCache)
}

func (r *Resolver) ensureLocked(ctx context.Context, sourceID string) *sourceCache {
	if cache, ok := r.sources[sourceID]; ok {
		if sourceID != models.SourceLocal || r.ttl <= 0 || time.Since(cache.fetchedAt) < r.ttl {
			return cache
		}
	}

	if sourceID != models.SourceLocal {
		cache := newSourceCache(nil)
		r.sources[sourceID] = cache
		return cache
	}

	var records []models.ServiceBodyRecord
	if r.fetcher == nil || !r.fetcher.Configured() {
		r.logger.Warn("service body lookup skipped, root server not configured")
	} else if fetched, err := r.fetcher.GetServiceBodies(ctx); err != nil {
		r.logger.Error("service body fetch failed", zap.Error(err))
	} else {
		records = fetched
	}

	cache := newSourceCache(records)
	r.sources[sourceID] = cache
	return cache
}

func newSourceCache(records []models.ServiceBodyRecord) *sourceCache {
	names := make(map[string]string, len(records))
	for _, record := range records {
		names[record.ID] = record.Name
	}
	return &sourceCache{records: records, names: names, fetchedAt: time.Now()}
}
