package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

// PostgresStore implements SnapshotStore using PostgreSQL
type PostgresStore struct {
	db        *sql.DB
	namespace string
}

// NewPostgresStore creates a new PostgreSQL snapshot store optimized for CloudNativePG
func NewPostgresStore(connString, namespace string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// Connection pool settings for CloudNativePG high-availability clusters
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Test connection with retry logic for Kubernetes DNS resolution
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := db.PingContext(ctx)
		cancel()

		if err == nil {
			lastErr = nil
			break
		}

		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	s := &PostgresStore{db: db, namespace: namespace}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (p *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		namespace TEXT NOT NULL,
		id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		created_by TEXT NOT NULL,
		total_salary DOUBLE PRECISION NOT NULL,
		lineup JSONB NOT NULL,
		PRIMARY KEY (namespace, id)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
	`

	_, err := p.db.Exec(schema)
	return err
}

func (p *PostgresStore) Put(ctx context.Context, id string, snap *models.Snapshot) error {
	lineupJSON, err := json.Marshal(snap.Lineup)
	if err != nil {
		return fmt.Errorf("failed to marshal lineup: %w", err)
	}

	// Snapshots are immutable once published; DO NOTHING keeps the first write
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO snapshots (namespace, id, created_at, created_by, total_salary, lineup)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (namespace, id) DO NOTHING
	`, p.namespace, id, snap.CreatedAt, snap.CreatedBy, snap.TotalSalary, string(lineupJSON))

	return err
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*models.Snapshot, bool, error) {
	var snap models.Snapshot
	var lineupJSON string

	err := p.db.QueryRowContext(ctx, `
		SELECT id, created_at, created_by, total_salary, lineup
		FROM snapshots WHERE namespace = $1 AND id = $2
	`, p.namespace, id).Scan(&snap.ID, &snap.CreatedAt, &snap.CreatedBy, &snap.TotalSalary, &lineupJSON)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	snap.Lineup = []models.Player{}
	if err := json.Unmarshal([]byte(lineupJSON), &snap.Lineup); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal lineup: %w", err)
	}

	return &snap, true, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
