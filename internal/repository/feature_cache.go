package repository

import (
	"context"
	"sync"

	"Midas/internal/domain/models"
	"Midas/internal/domain/repository"
	pkgcache "Midas/pkg/cache"
)

// LocalFeatureCache keeps the last computed payload per ticker in memory.
// Entries never expire; they are only replaced by a newer aggregation.
type LocalFeatureCache struct {
	mu sync.RWMutex
	m  map[string]*models.FeaturePayload
}

func NewLocalFeatureCache() *LocalFeatureCache {
	return &LocalFeatureCache{m: make(map[string]*models.FeaturePayload)}
}

func (c *LocalFeatureCache) Get(_ context.Context, ticker string) (*models.FeaturePayload, bool) {
	c.mu.RLock()
	p, ok := c.m[ticker]
	c.mu.RUnlock()
	return p, ok
}

func (c *LocalFeatureCache) Put(_ context.Context, ticker string, p *models.FeaturePayload) {
	c.mu.Lock()
	c.m[ticker] = p
	c.mu.Unlock()
}

var _ repository.FeatureCache = (*LocalFeatureCache)(nil)

// SharedFeatureCache stores payloads through a cache.Service (layered
// memory+Redis) so multiple context instances can share results. Expiration
// is zero for the same reason the local cache never expires: entries are
// valid until overwritten.
type SharedFeatureCache struct {
	svc pkgcache.Service
}

func NewSharedFeatureCache(svc pkgcache.Service) *SharedFeatureCache {
	return &SharedFeatureCache{svc: svc}
}

func (c *SharedFeatureCache) key(ticker string) string {
	return pkgcache.GenerateKey("features", ticker)
}

func (c *SharedFeatureCache) Get(ctx context.Context, ticker string) (*models.FeaturePayload, bool) {
	var raw string
	if err := c.svc.Get(ctx, c.key(ticker), &raw); err != nil {
		return nil, false
	}
	p, err := pkgcache.DecodeJSON[models.FeaturePayload](raw)
	if err != nil {
		return nil, false
	}
	return p, true
}

func (c *SharedFeatureCache) Put(ctx context.Context, ticker string, p *models.FeaturePayload) {
	raw, err := pkgcache.EncodeJSON(p)
	if err != nil {
		return
	}
	_ = c.svc.Set(ctx, c.key(ticker), raw, 0)
}

var _ repository.FeatureCache = (*SharedFeatureCache)(nil)
