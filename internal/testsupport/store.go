package testsupport

import (
	"testing"

	"cadence/internal/cache"
	"cadence/internal/config"
)

// MustOpenCache opens the config's cache database for tests and registers
// cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *cache.Store {
	t.Helper()

	store, err := cache.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
