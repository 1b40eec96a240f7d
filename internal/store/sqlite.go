package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

// SQLiteStore implements SnapshotStore using SQLite
type SQLiteStore struct {
	db        *sql.DB
	namespace string
}

// NewSQLiteStore creates a new SQLite snapshot store
func NewSQLiteStore(dbPath, namespace string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, namespace: namespace}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		namespace TEXT NOT NULL,
		id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		created_by TEXT NOT NULL,
		total_salary REAL NOT NULL,
		lineup TEXT NOT NULL,
		PRIMARY KEY (namespace, id)
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Add total_salary column to databases created before it existed.
	// SQLite doesn't support IF NOT EXISTS for ALTER TABLE, so check first.
	var totalSalaryExists int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('snapshots')
		WHERE name='total_salary'
	`).Scan(&totalSalaryExists)
	if err != nil {
		return fmt.Errorf("failed to check total_salary column existence: %w", err)
	}

	if totalSalaryExists == 0 {
		_, err = s.db.Exec(`ALTER TABLE snapshots ADD COLUMN total_salary REAL NOT NULL DEFAULT 0`)
		if err != nil {
			return fmt.Errorf("failed to add total_salary column: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, id string, snap *models.Snapshot) error {
	lineupJSON, err := json.Marshal(snap.Lineup)
	if err != nil {
		return fmt.Errorf("failed to marshal lineup: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (namespace, id, created_at, created_by, total_salary, lineup)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.namespace, id, snap.CreatedAt.UnixMilli(), snap.CreatedBy, snap.TotalSalary, string(lineupJSON))

	return err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Snapshot, bool, error) {
	var snap models.Snapshot
	var createdAt int64
	var lineupJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, created_by, total_salary, lineup
		FROM snapshots WHERE namespace = ? AND id = ?
	`, s.namespace, id).Scan(&snap.ID, &createdAt, &snap.CreatedBy, &snap.TotalSalary, &lineupJSON)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	snap.CreatedAt = unixMilli(createdAt)
	snap.Lineup = []models.Player{}
	if err := json.Unmarshal([]byte(lineupJSON), &snap.Lineup); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal lineup: %w", err)
	}

	return &snap, true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
