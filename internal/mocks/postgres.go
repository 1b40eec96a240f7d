package mocks

import (
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/logger"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/store"
)

// MockPostgresStore provides a mock Postgres snapshot store backed by
// SQLite for local development
type MockPostgresStore struct {
	store.SnapshotStore
}

// NewMockPostgresStore creates a mock Postgres store using SQLite
func NewMockPostgresStore(sqliteFile, namespace string) (*MockPostgresStore, error) {
	logger.Info("Using MOCK Postgres (SQLite) for local development")

	sqliteStore, err := store.NewSQLiteStore(sqliteFile, namespace)
	if err != nil {
		return nil, err
	}

	return &MockPostgresStore{
		SnapshotStore: sqliteStore,
	}, nil
}
