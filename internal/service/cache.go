package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Cached results are keyed by a per-owner version; any write bumps the
// version so stale entries are never read again and simply expire.

func versionKey(ownerID string) string {
	return "recurring:version:" + ownerID
}

func (s *Service) cacheKey(ctx context.Context, ownerID, name string) string {
	version, ok := s.cache.Get(ctx, versionKey(ownerID))
	if !ok {
		version = "0"
	}
	return "recurring:" + ownerID + ":" + version + ":" + name
}

func (s *Service) cached(ctx context.Context, key string, dst any) bool {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warnf("Discarding unreadable cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (s *Service) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warnf("Failed to encode cache entry %s: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		s.log.Warnf("Failed to write cache entry %s: %v", key, err)
	}
}

func (s *Service) invalidate(ctx context.Context, ownerID string) {
	if err := s.cache.Set(ctx, versionKey(ownerID), uuid.NewString(), 0); err != nil {
		s.log.Warnf("Failed to invalidate cache for owner %s: %v", ownerID, err)
	}
}
