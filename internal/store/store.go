package store

import (
	"context"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

// SnapshotStore is the keyed document interface the sharing service writes
// through. Documents are JSON-serializable snapshots; keys are snapshot IDs
// scoped by the namespace the store was opened with. Get reports absence
// via the bool, not an error.
type SnapshotStore interface {
	Put(ctx context.Context, id string, snap *models.Snapshot) error
	Get(ctx context.Context, id string) (*models.Snapshot, bool, error)
	Close() error
}
