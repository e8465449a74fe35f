// Package repotest opens throwaway stores for tests.
package repotest

import (
	"testing"

	"github.com/example/shopfront/pkg/config"
	"github.com/example/shopfront/pkg/repository"
	"go.uber.org/zap"
)

// NewStore returns a migrated store backed by a private in-memory sqlite database.
func NewStore(t testing.TB) *repository.Store {
	t.Helper()

	store, err := repository.Open(&config.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         ":memory:",
		AutoMigrate: true,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
