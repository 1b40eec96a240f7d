package sharing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/analytics"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/logger"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/store"
)

var (
	// ErrPreconditionFailed is returned when publishing without an identity
	// or with an empty lineup. No store write happens in either case.
	ErrPreconditionFailed = errors.New("sharing: identity and a non-empty lineup are required to publish")
	// ErrStorage wraps remote store failures. Publishing is user-initiated
	// and safe to retry manually, so no automatic retry is attempted.
	ErrStorage = errors.New("sharing: snapshot store failure")
)

// Service publishes immutable lineup snapshots to a keyed document store
// and resolves them by ID. Snapshots are never mutated after creation.
type Service struct {
	store  store.SnapshotStore
	origin string // application origin for share links, e.g. "https://lineup-lab.example.com"
	now    func() time.Time
}

// NewService creates a sharing service over the given snapshot store.
func NewService(st store.SnapshotStore, origin string) *Service {
	return &Service{
		store:  st,
		origin: origin,
		now:    time.Now,
	}
}

// PublishResult carries the generated snapshot ID and the shareable URL.
type PublishResult struct {
	SnapshotID string `json:"snapshotId"`
	ShareURL   string `json:"shareUrl"`
}

// Publish stores the lineup as a fresh snapshot and returns a shareable
// reference. identity is the opaque current-user handle; an empty identity
// means "not signed in" and fails the precondition.
func (s *Service) Publish(ctx context.Context, lineup []models.Player, identity string) (*PublishResult, error) {
	if identity == "" || len(lineup) == 0 {
		return nil, ErrPreconditionFailed
	}

	snap := &models.Snapshot{
		ID:          uuid.NewString(),
		Lineup:      lineup,
		CreatedAt:   s.now().UTC(),
		CreatedBy:   identity,
		TotalSalary: analytics.TotalSalary(lineup),
	}

	if err := s.store.Put(ctx, snap.ID, snap); err != nil {
		logger.Error("Failed to store snapshot", "error", err, "snapshot_id", snap.ID)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	logger.Info("Snapshot published", "snapshot_id", snap.ID, "members", len(lineup), "total_salary", snap.TotalSalary)

	return &PublishResult{
		SnapshotID: snap.ID,
		ShareURL:   fmt.Sprintf("%s/?roster=%s", s.origin, snap.ID),
	}, nil
}

// Resolve looks up a snapshot and returns its lineup as the initial roster
// state. An unknown ID is not an error: the caller renders the default
// empty roster.
func (s *Service) Resolve(ctx context.Context, snapshotID string) ([]models.Player, bool, error) {
	snap, ok, err := s.store.Get(ctx, snapshotID)
	if err != nil {
		logger.Error("Failed to resolve snapshot", "error", err, "snapshot_id", snapshotID)
		return nil, false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !ok {
		logger.Debug("Snapshot not found", "snapshot_id", snapshotID)
		return nil, false, nil
	}

	return snap.Lineup, true, nil
}
