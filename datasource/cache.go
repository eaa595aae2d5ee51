package datasource

import (
	"fmt"
	"os"
	"sync"
	"time"

	"airbnb-analytics/models"
	"airbnb-analytics/services"
	"airbnb-analytics/utils"
)

// Snapshot is one cache epoch: the cleaned table plus everything
// derived from it at load time. A published snapshot is immutable;
// filtering and aggregation produce fresh views, never in-place edits.
type Snapshot struct {
	Listings []*models.Listing
	Report   *models.LoadReport
	Stats    *models.DatasetStats
	LoadedAt time.Time
	ModTime  time.Time
	Size     int64
}

// Cache holds the cleaned table for the lifetime of a cache epoch. The
// epoch is keyed by the source file's modification time and size; a
// change there, or an explicit Invalidate, makes the next Snapshot call
// reload and atomically swap in the new epoch.
type Cache struct {
	path     string
	cleaner  *services.Cleaner
	insights *services.InsightService
	logger   *utils.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// NewCache creates a Cache over the source file at path. Nothing is
// loaded until the first Snapshot call.
func NewCache(path string, cleaner *services.Cleaner, insights *services.InsightService, logger *utils.Logger) *Cache {
	return &Cache{
		path:     path,
		cleaner:  cleaner,
		insights: insights,
		logger:   logger,
	}
}

// Snapshot returns the current epoch, loading the source file first if
// there is none or if the file changed since the last load.
func (c *Cache) Snapshot() (*Snapshot, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, fmt.Errorf("datasource: stat %q: %w", c.path, err)
	}

	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap != nil && snap.ModTime.Equal(info.ModTime()) && snap.Size == info.Size() {
		return snap, nil
	}
	return c.Reload()
}

// Reload unconditionally starts a new cache epoch from the source file.
func (c *Cache) Reload() (*Snapshot, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, fmt.Errorf("datasource: stat %q: %w", c.path, err)
	}

	raw, err := LoadCSV(c.path)
	if err != nil {
		return nil, err
	}

	listings, report := c.cleaner.Clean(raw)
	snap := &Snapshot{
		Listings: listings,
		Report:   report,
		Stats:    c.insights.DatasetStats(listings),
		LoadedAt: time.Now(),
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	c.logger.Info("[cache] New epoch: %d listings from %s (modified %s)",
		len(listings), c.path, info.ModTime().Format("2006-01-02 15:04:05"))
	return snap, nil
}

// Invalidate drops the current epoch. The next Snapshot call reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
	c.logger.Info("[cache] Epoch invalidated")
}
