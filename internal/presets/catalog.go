// Package presets holds the catalog of typical job exposure profiles that
// physicians pick from when entering an occupational history.
package presets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/logging"
	"github.com/wr-burden-mcp-server/internal/metrics"
)

// DefaultSearchLimit is the maximum number of search results.
const DefaultSearchLimit = 8

// ErrStaleCatalog is returned when a fetched catalog declares an older
// version than the one in use.
var ErrStaleCatalog = errors.New("catalog version is older than the loaded one")

type catalogDocument struct {
	Version     string          `json:"version"`
	LastUpdated string          `json:"lastUpdated"`
	Presets     []domain.Preset `json:"presets"`
}

// Catalog is an in-memory, concurrently readable preset catalog. It starts
// out with the fallback presets and is replaced wholesale by Load.
type Catalog struct {
	mu      sync.RWMutex
	presets []domain.Preset
	byID    map[int]domain.Preset
	meta    domain.CatalogMeta
	version *semver.Version

	limit  int
	cache  *lru.Cache[string, []domain.Preset]
	logger *logrus.Logger
}

// NewCatalog creates a catalog holding the fallback presets. limit bounds
// search results and cacheSize the number of cached queries.
func NewCatalog(limit, cacheSize int, logger *logrus.Logger) (*Catalog, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if cacheSize <= 0 {
		cacheSize = 256
	}

	cache, err := lru.New[string, []domain.Preset](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	c := &Catalog{limit: limit, cache: cache, logger: logger}
	c.useFallback("")
	return c, nil
}

// Open builds a catalog from cfg and performs the initial load. A failed
// load leaves the fallback presets in place with the error recorded in
// Meta; only construction errors are returned. The source is nil when cfg
// names none.
func Open(ctx context.Context, cfg domain.PresetsConfig, logger *logrus.Logger) (*Catalog, domain.PresetSource, error) {
	c, err := NewCatalog(cfg.SearchLimit, cfg.SearchCacheSize, logger)
	if err != nil {
		return nil, nil, err
	}

	src := NewSource(cfg, logger)
	if src != nil {
		_ = c.Load(ctx, src)
	}
	return c, src, nil
}

// Load fetches, validates and installs the catalog from src. On failure the
// current presets stay in place, and the error is both returned and
// recorded in Meta.
func (c *Catalog) Load(ctx context.Context, src domain.PresetSource) error {
	start := time.Now()

	err := c.load(ctx, src)
	if err != nil {
		c.recordError(err)
		logging.LogOperation(c.logger, logging.OperationPresetLoad, src.Name(), start, err, nil)
		return err
	}

	meta := c.Meta()
	c.logger.WithFields(logrus.Fields{
		"source":      src.Name(),
		"version":     meta.Version,
		"count":       meta.Count,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Preset catalog loaded")
	return nil
}

func (c *Catalog) load(ctx context.Context, src domain.PresetSource) error {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	if err := ValidateCatalog(raw); err != nil {
		return err
	}

	var doc catalogDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return c.install(doc)
}

func (c *Catalog) install(doc catalogDocument) error {
	byID := make(map[int]domain.Preset, len(doc.Presets))
	for _, p := range doc.Presets {
		if _, dup := byID[p.ID]; dup {
			return fmt.Errorf("%w: duplicate preset id %d", domain.ErrInvalidCatalog, p.ID)
		}
		byID[p.ID] = p
	}

	// Non-semver versions are accepted without ordering.
	next, verr := semver.NewVersion(doc.Version)
	if verr != nil {
		next = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if next != nil && c.version != nil && next.LessThan(c.version) {
		return fmt.Errorf("%w: %s < %s", ErrStaleCatalog, next, c.version)
	}

	c.presets = doc.Presets
	c.byID = byID
	c.version = next
	c.meta = domain.CatalogMeta{
		Version:     doc.Version,
		LastUpdated: doc.LastUpdated,
		Count:       len(doc.Presets),
	}
	c.cache.Purge()
	metrics.PresetCatalogSize.Set(float64(len(doc.Presets)))
	return nil
}

func (c *Catalog) useFallback(loadErr string) {
	presets := Fallback()
	byID := make(map[int]domain.Preset, len(presets))
	for _, p := range presets {
		byID[p.ID] = p
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.presets = presets
	c.byID = byID
	c.version = nil
	c.meta = domain.CatalogMeta{
		Version:   FallbackVersion,
		Count:     len(presets),
		Fallback:  true,
		LoadError: loadErr,
	}
	c.cache.Purge()
	metrics.PresetCatalogSize.Set(float64(len(presets)))
}

func (c *Catalog) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meta.LoadError = err.Error()
}

// Search returns up to the configured limit of presets whose job name or
// category contains query, case-insensitively, in catalog order. A blank
// query matches nothing.
func (c *Catalog) Search(query string) []domain.Preset {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	// The cache is only touched under mu; install purges it under the
	// write lock.
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.cache.Get(q); ok {
		return clonePresets(cached)
	}

	var results []domain.Preset
	for _, p := range c.presets {
		if strings.Contains(strings.ToLower(p.JobName), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			results = append(results, p)
			if len(results) == c.limit {
				break
			}
		}
	}

	c.cache.Add(q, results)
	return clonePresets(results)
}

// Get returns the preset with the given id.
func (c *Catalog) Get(id int) (domain.Preset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[id]
	if !ok {
		return domain.Preset{}, fmt.Errorf("preset %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// All returns every preset in catalog order.
func (c *Catalog) All() []domain.Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clonePresets(c.presets)
}

// Meta describes the catalog currently in use.
func (c *Catalog) Meta() domain.CatalogMeta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meta
}

func clonePresets(in []domain.Preset) []domain.Preset {
	if in == nil {
		return nil
	}
	out := make([]domain.Preset, len(in))
	copy(out, in)
	return out
}
