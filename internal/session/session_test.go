package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/logger"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/sharing"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/store"
)

func init() {
	logger.Init()
}

const testCSV = `Athlete Name,Athlete_ID,Team,Position,Salary_2025_num
A'ja Wilson,wnba-1,LVA,F,200000
Caitlin Clark,wnba-2,IND,G,78066
Aliyah Boston,wnba-3,IND,F-C,82000
Breanna Stewart,wnba-4,NYL,F,205000`

func newTestSession() *Session {
	svc := sharing.NewService(store.NewMemoryStore("test"), "http://localhost:3000")
	return New(svc)
}

func importTestCatalog(t *testing.T, s *Session) {
	t.Helper()
	if _, err := s.ImportCSV(testCSV); err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}
}

func TestImportReplacesCatalogAndResetsView(t *testing.T) {
	s := newTestSession()
	importTestCatalog(t, s)

	s.SetSearch("wilson")
	s.SetTeamFilter("LVA")

	count, err := s.ImportCSV(testCSV)
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	if count != 4 {
		t.Errorf("imported %d players, want 4", count)
	}

	// Filters reset: the full catalog is visible again
	view := s.View()
	if view.Total != 4 {
		t.Errorf("view total after re-import = %d, want 4", view.Total)
	}
	if view.Page != 1 {
		t.Errorf("page after re-import = %d, want 1", view.Page)
	}
}

func TestImportFailureRetainsCatalog(t *testing.T) {
	s := newTestSession()
	importTestCatalog(t, s)
	s.SetSearch("clark")

	if _, err := s.ImportCSV(""); err == nil {
		t.Fatal("expected error for empty import")
	}

	// Prior catalog and view state survive the failed import
	view := s.View()
	if view.Total != 1 {
		t.Errorf("view total after failed import = %d, want 1 (search retained)", view.Total)
	}
	if len(view.Players) != 1 || view.Players[0].Name != "Caitlin Clark" {
		t.Errorf("catalog lost after failed import: %v", view.Players)
	}
}

func TestRosteredPlayersExcludedFromView(t *testing.T) {
	s := newTestSession()
	importTestCatalog(t, s)

	first := s.View().Players[0]
	members, _ := s.AddToRoster(first.AthleteID)
	if len(members) != 1 {
		t.Fatalf("roster size = %d, want 1", len(members))
	}

	for _, p := range s.View().Players {
		if p.AthleteID == first.AthleteID {
			t.Error("rostered player still visible in catalog view")
		}
	}

	// Removing restores visibility
	s.RemoveFromRoster(first.AthleteID)
	found := false
	for _, p := range s.View().Players {
		if p.AthleteID == first.AthleteID {
			found = true
		}
	}
	if !found {
		t.Error("removed player should reappear in catalog view")
	}
}

func TestFilterChangeResetsPage(t *testing.T) {
	s := newTestSession()

	// 30 players to get 3 pages
	var b strings.Builder
	b.WriteString("athlete name,athlete_id,team\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "Player %d,id-%d,TEAM\n", i, i)
	}
	if _, err := s.ImportCSV(b.String()); err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}

	s.SetPage(3)
	if got := s.View().Page; got != 3 {
		t.Fatalf("page = %d, want 3", got)
	}

	s.SetSearch("player")
	if got := s.View().Page; got != 1 {
		t.Errorf("page after search change = %d, want 1", got)
	}

	s.SetPage(99)
	if got := s.View().Page; got != 3 {
		t.Errorf("page should clamp to 3, got %d", got)
	}
}

func TestAddUnknownIDIsNoOp(t *testing.T) {
	s := newTestSession()
	importTestCatalog(t, s)

	members, agg := s.AddToRoster("does-not-exist")
	if len(members) != 0 {
		t.Errorf("unknown id should not join the roster: %v", members)
	}
	if agg != nil {
		t.Errorf("empty roster aggregates should be nil, got %+v", agg)
	}
}

func TestAggregatesRecomputedOnMutation(t *testing.T) {
	s := newTestSession()
	importTestCatalog(t, s)

	if s.Aggregates() != nil {
		t.Error("empty roster should have nil aggregates")
	}

	_, agg := s.AddToRoster(s.View().Players[0].AthleteID)
	if agg == nil {
		t.Fatal("aggregates should exist after first add")
	}

	s.ClearRoster()
	if s.Aggregates() != nil {
		t.Error("aggregates should be nil again after clear")
	}
}

func TestPublishRequiresIdentity(t *testing.T) {
	s := newTestSession()
	importTestCatalog(t, s)
	s.AddToRoster(s.View().Players[0].AthleteID)

	_, err := s.Publish(context.Background())
	if !errors.Is(err, sharing.ErrPreconditionFailed) {
		t.Errorf("expected ErrPreconditionFailed without identity, got %v", err)
	}

	s.SetIdentity("user-1")
	result, err := s.Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	if result == nil || result.SnapshotID == "" {
		t.Fatal("expected a publish result with a snapshot ID")
	}
}

// blockingStore parks Put until released, to hold a publish in flight.
// entered is signalled once the write is underway.
type blockingStore struct {
	mu       sync.Mutex
	entered  chan struct{}
	release  chan struct{}
	backing  *store.MemoryStore
	blocking bool
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		entered:  make(chan struct{}, 1),
		release:  make(chan struct{}),
		backing:  store.NewMemoryStore("test"),
		blocking: true,
	}
}

func (b *blockingStore) Put(ctx context.Context, id string, snap *models.Snapshot) error {
	b.mu.Lock()
	blocking := b.blocking
	b.mu.Unlock()
	if blocking {
		select {
		case b.entered <- struct{}{}:
		default:
		}
		<-b.release
	}
	return b.backing.Put(ctx, id, snap)
}

func (b *blockingStore) Get(ctx context.Context, id string) (*models.Snapshot, bool, error) {
	return b.backing.Get(ctx, id)
}

func (b *blockingStore) Close() error { return nil }

func TestPublishReentryRejectedWhilePending(t *testing.T) {
	bs := newBlockingStore()
	s := New(sharing.NewService(bs, "http://localhost:3000"))
	if _, err := s.ImportCSV(testCSV); err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}
	s.AddToRoster(s.View().Players[0].AthleteID)
	s.SetIdentity("user-1")

	done := make(chan error, 1)
	go func() {
		_, err := s.Publish(context.Background())
		done <- err
	}()

	// Wait for the first publish to reach the blocked store write
	select {
	case <-bs.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("publish never reached the store write")
	}

	if _, err := s.Publish(context.Background()); !errors.Is(err, ErrPublishInFlight) {
		t.Errorf("concurrent publish should be rejected, got %v", err)
	}

	close(bs.release)
	if err := <-done; err != nil {
		t.Fatalf("first publish failed: %v", err)
	}

	// Once settled, publishing works again
	bs.mu.Lock()
	bs.blocking = false
	bs.mu.Unlock()
	if _, err := s.Publish(context.Background()); err != nil {
		t.Errorf("publish after settle failed: %v", err)
	}
}

func TestStalePublishResultDropped(t *testing.T) {
	bs := newBlockingStore()
	s := New(sharing.NewService(bs, "http://localhost:3000"))
	if _, err := s.ImportCSV(testCSV); err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}
	s.AddToRoster(s.View().Players[0].AthleteID)
	s.SetIdentity("user-1")

	type outcome struct {
		result *sharing.PublishResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := s.Publish(context.Background())
		done <- outcome{r, err}
	}()

	// Wait until the publish is parked in the store write, then reset
	select {
	case <-bs.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("publish never reached the store write")
	}
	s.Reset()
	close(bs.release)

	got := <-done
	if got.err != nil {
		t.Fatalf("stale publish should be dropped silently, got error %v", got.err)
	}
	if got.result != nil {
		t.Errorf("stale publish result should be nil, got %+v", got.result)
	}
}

func TestSeedFromReference(t *testing.T) {
	st := store.NewMemoryStore("test")
	svc := sharing.NewService(st, "http://localhost:3000")

	// Publish from one session
	publisher := New(svc)
	if _, err := publisher.ImportCSV(testCSV); err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}
	publisher.AddToRoster(publisher.View().Players[0].AthleteID)
	publisher.AddToRoster(publisher.View().Players[0].AthleteID)
	publisher.SetIdentity("user-1")
	result, err := publisher.Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	// Resolve into a fresh session via deep link
	viewer := New(svc)
	if err := viewer.SeedFromReference(context.Background(), result.SnapshotID); err != nil {
		t.Fatalf("SeedFromReference() failed: %v", err)
	}

	want := publisher.Roster()
	got := viewer.Roster()
	if len(got) != len(want) {
		t.Fatalf("seeded roster size = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].AthleteID != want[i].AthleteID {
			t.Errorf("seeded roster order differs at %d: %s vs %s", i, got[i].AthleteID, want[i].AthleteID)
		}
	}
}

func TestSeedFromReferenceAbsent(t *testing.T) {
	s := newTestSession()

	if err := s.SeedFromReference(context.Background(), "missing-id"); err != nil {
		t.Fatalf("absent reference should not error: %v", err)
	}
	if len(s.Roster()) != 0 {
		t.Error("absent reference should leave the default empty roster")
	}
}

func TestSeedFromReferenceOnlyOnce(t *testing.T) {
	st := store.NewMemoryStore("test")
	svc := sharing.NewService(st, "http://localhost:3000")

	publisher := New(svc)
	if _, err := publisher.ImportCSV(testCSV); err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}
	publisher.AddToRoster(publisher.View().Players[0].AthleteID)
	publisher.SetIdentity("user-1")
	result, _ := publisher.Publish(context.Background())

	viewer := New(svc)
	if err := viewer.SeedFromReference(context.Background(), result.SnapshotID); err != nil {
		t.Fatalf("SeedFromReference() failed: %v", err)
	}
	viewer.ClearRoster()

	// A second resolve is ignored; seeding happens once per session
	if err := viewer.SeedFromReference(context.Background(), result.SnapshotID); err != nil {
		t.Fatalf("second SeedFromReference() failed: %v", err)
	}
	if len(viewer.Roster()) != 0 {
		t.Error("second seed should be a no-op")
	}
}
