package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"airbnb-analytics/services"
	"airbnb-analytics/utils"
)

func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	logger := utils.NewLogger(false)

	path := filepath.Join(t.TempDir(), "listings.csv")
	content := testHeader + "\n" + testRow + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache(path, services.NewCleaner(logger), services.NewInsightService(logger), logger)
	return cache, path
}

func TestCacheSnapshotLoadsOnFirstCall(t *testing.T) {
	cache, _ := newTestCache(t)

	snap, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Listings) != 1 {
		t.Errorf("got %d listings; want 1", len(snap.Listings))
	}
	if snap.Report.TotalRows != 1 || snap.Report.CleanRows != 1 {
		t.Errorf("report = %+v; want 1 total, 1 clean", snap.Report)
	}
	if snap.Stats.TotalListings != 1 {
		t.Errorf("Stats.TotalListings = %d; want 1", snap.Stats.TotalListings)
	}
}

func TestCacheReusesEpochWhileFileUnchanged(t *testing.T) {
	cache, _ := newTestCache(t)

	first, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	second, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if first != second {
		t.Error("unchanged file produced a new epoch")
	}
}

func TestCacheReloadsWhenFileChanges(t *testing.T) {
	cache, path := newTestCache(t)

	first, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// Append a second row and push the mtime forward; coarse filesystem
	// timestamps would otherwise hide a fast rewrite.
	content := testHeader + "\n" + testRow + "\n" + testRow + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	second, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot after change: %v", err)
	}
	if first == second {
		t.Fatal("changed file did not start a new epoch")
	}
	if len(second.Listings) != 2 {
		t.Errorf("new epoch has %d listings; want 2", len(second.Listings))
	}
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	cache, _ := newTestCache(t)

	first, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	cache.Invalidate()

	second, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot after Invalidate: %v", err)
	}
	if first == second {
		t.Error("Invalidate did not start a new epoch")
	}
}

func TestCacheSnapshotMissingFile(t *testing.T) {
	logger := utils.NewLogger(false)
	cache := NewCache(filepath.Join(t.TempDir(), "absent.csv"),
		services.NewCleaner(logger), services.NewInsightService(logger), logger)

	if _, err := cache.Snapshot(); err == nil {
		t.Error("missing file accepted")
	}
}
