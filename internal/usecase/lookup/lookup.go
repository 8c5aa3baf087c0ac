// Package lookup serves the distinct-value menus the UI filters are
// populated from (technology names, categories, countries, and so on).
package lookup

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/stacklens/stacklens/internal/db"
	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/metrics"
)

// ValueSource lists the distinct non-null values of a lookup column.
type ValueSource interface {
	DistinctValues(ctx context.Context, lookup domain.Lookup) ([]string, error)
}

// Option is one selectable menu entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Service resolves lookup menus, optionally through a shared cache.
// A nil cache disables caching entirely.
type Service struct {
	source ValueSource
	cache  db.KVStore
	ttl    time.Duration
	logger *zap.Logger
}

func New(source ValueSource, cache db.KVStore, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, cache: cache, ttl: ttl, logger: logger}
}

// Values returns the menu for one lookup kind, sorted by the store.
// Cache failures fall through to the store; a search must never fail
// because the cache is down.
func (s *Service) Values(ctx context.Context, lookup domain.Lookup) ([]Option, error) {
	key := "lookup:" + string(lookup)

	if s.cache != nil {
		if opts, ok := s.fromCache(ctx, key); ok {
			metrics.LookupCacheTotal.WithLabelValues("hit").Inc()
			return opts, nil
		}
		metrics.LookupCacheTotal.WithLabelValues("miss").Inc()
	}

	values, err := s.source.DistinctValues(ctx, lookup)
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: v})
	}

	if s.cache != nil {
		s.toCache(ctx, key, opts)
	}
	return opts, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]Option, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !db.IsKeyNotFound(err) {
			s.logger.Warn("lookup cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var opts []Option
	if err := json.Unmarshal(raw, &opts); err != nil {
		s.logger.Warn("lookup cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return opts, true
}

func (s *Service) toCache(ctx context.Context, key string, opts []Option) {
	raw, err := json.Marshal(opts)
	if err != nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn("lookup cache write failed", zap.String("key", key), zap.Error(err))
	}
}
