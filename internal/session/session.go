package session

import (
	"context"
	"errors"
	"sync"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/analytics"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/catalog"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/ingest"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/logger"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/roster"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/sharing"
)

// ErrPublishInFlight is returned when a publish is requested while an
// earlier one is still pending. The client disables the share control
// until the pending publish settles.
var ErrPublishInFlight = errors.New("session: a publish is already in flight")

// Session owns the process-wide lineup-building state: the imported
// catalog, the current filter/pagination view, the roster, and the opaque
// identity. Each field has a single writer (the session itself); the mutex
// only serializes concurrent HTTP handlers.
type Session struct {
	mu sync.Mutex

	catalog *catalog.Catalog
	roster  *roster.Builder
	sharing *sharing.Service

	search   string
	position string
	team     string
	page     int

	identity string

	publishPending bool
	epoch          uint64 // bumped on reset; late publish/resolve results from an older epoch are dropped
	seeded         bool
}

// New creates an empty session over the given sharing service.
func New(sh *sharing.Service) *Session {
	return &Session{
		catalog:  catalog.New(nil),
		roster:   roster.New(),
		sharing:  sh,
		position: catalog.FilterAll,
		team:     catalog.FilterAll,
		page:     1,
	}
}

// SetIdentity records the opaque current-user handle once the identity
// collaborator yields it. Empty means "none".
func (s *Session) SetIdentity(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

// Identity returns the opaque identity and whether one is present.
func (s *Session) Identity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.identity != ""
}

// ImportCSV ingests raw delimited text. On success the whole catalog is
// replaced and search/filters/pagination reset to their initial state; on
// any ingest error the prior catalog and view state are retained.
func (s *Session) ImportCSV(text string) (int, error) {
	players, err := ingest.Ingest(text)
	if err != nil {
		logger.Warn("CSV import rejected, keeping previous catalog", "error", err)
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Replace(players)
	s.search = ""
	s.position = catalog.FilterAll
	s.team = catalog.FilterAll
	s.page = 1

	logger.Info("Catalog imported", "players", len(players))
	return len(players), nil
}

// SetSearch updates the search term and resets pagination to page 1.
func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
	s.page = 1
}

// SetPositionFilter updates the position filter and resets pagination.
func (s *Session) SetPositionFilter(position string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if position == "" {
		position = catalog.FilterAll
	}
	s.position = position
	s.page = 1
}

// SetTeamFilter updates the team filter and resets pagination.
func (s *Session) SetTeamFilter(team string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if team == "" {
		team = catalog.FilterAll
	}
	s.team = team
	s.page = 1
}

// SetPage requests a page; the value is clamped against the current
// filtered count.
func (s *Session) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := s.filteredLocked()
	s.page = catalog.ClampPage(page, len(filtered))
}

// ViewPage is one page of the filtered catalog, excluding rostered players.
type ViewPage struct {
	Players   []models.Player `json:"players"`
	Page      int             `json:"page"`
	PageCount int             `json:"pageCount"`
	Total     int             `json:"total"`
}

// View returns the current catalog page under the active filters.
func (s *Session) View() ViewPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.filteredLocked()
	page := catalog.ClampPage(s.page, len(filtered))
	return ViewPage{
		Players:   catalog.Paginate(filtered, page),
		Page:      page,
		PageCount: catalog.PageCount(len(filtered)),
		Total:     len(filtered),
	}
}

func (s *Session) filteredLocked() []models.Player {
	return s.catalog.Filter(catalog.FilterOptions{
		Search:     s.search,
		Position:   s.position,
		Team:       s.team,
		ExcludeIDs: s.roster.IDSet(),
	})
}

// ListTeams returns the distinct team values in the catalog.
func (s *Session) ListTeams() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.ListTeams()
}

// AddToRoster moves a catalog player onto the roster. Unknown IDs,
// duplicates and a full roster are all silent no-ops. Returns the fresh
// roster and recomputed aggregates.
func (s *Session) AddToRoster(athleteID string) ([]models.Player, *models.Aggregates) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.catalog.Players() {
		if p.AthleteID == athleteID {
			s.roster.Add(p)
			break
		}
	}
	return s.roster.Players(), analytics.Compute(s.roster.Players())
}

// RemoveFromRoster drops a roster member; no-op if absent.
func (s *Session) RemoveFromRoster(athleteID string) ([]models.Player, *models.Aggregates) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roster.Remove(athleteID)
	return s.roster.Players(), analytics.Compute(s.roster.Players())
}

// ClearRoster empties the roster. The confirmation prompt lives upstream.
func (s *Session) ClearRoster() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.Clear()
}

// Roster returns the current lineup in insertion order.
func (s *Session) Roster() []models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Players()
}

// Aggregates recomputes the derived statistics for the current lineup.
// nil means the roster is empty.
func (s *Session) Aggregates() *models.Aggregates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Compute(s.roster.Players())
}

// Publish pushes the current lineup through the sharing service. Re-entry
// while a publish is pending is rejected with ErrPublishInFlight. A result
// that lands after the session has been reset is dropped: the epoch token
// captured before the round trip no longer matches.
func (s *Session) Publish(ctx context.Context) (*sharing.PublishResult, error) {
	s.mu.Lock()
	if s.publishPending {
		s.mu.Unlock()
		return nil, ErrPublishInFlight
	}
	s.publishPending = true
	lineup := s.roster.Players()
	identity := s.identity
	epoch := s.epoch
	s.mu.Unlock()

	result, err := s.sharing.Publish(ctx, lineup, identity)

	s.mu.Lock()
	s.publishPending = false
	stale := s.epoch != epoch
	s.mu.Unlock()

	if stale {
		logger.Debug("Dropping stale publish result", "epoch", epoch)
		return nil, nil
	}
	return result, err
}

// SeedFromReference resolves a deep-linked snapshot exactly once, at
// session start. An unresolvable ID leaves the default empty roster.
func (s *Session) SeedFromReference(ctx context.Context, snapshotID string) error {
	s.mu.Lock()
	if s.seeded {
		s.mu.Unlock()
		return nil
	}
	s.seeded = true
	epoch := s.epoch
	s.mu.Unlock()

	lineup, ok, err := s.sharing.Resolve(ctx, snapshotID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// Session was reset while the lookup was in flight
		return nil
	}
	s.roster = roster.Seed(lineup)
	logger.Info("Roster seeded from shared snapshot", "snapshot_id", snapshotID, "members", len(lineup))
	return nil
}

// Reset clears the roster and view state and invalidates any in-flight
// publish/resolve results.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roster.Clear()
	s.search = ""
	s.position = catalog.FilterAll
	s.team = catalog.FilterAll
	s.page = 1
	s.epoch++
}

// ApplyPercentiles overlays refreshed percentile metrics onto the catalog,
// keyed by athlete ID. Used by the warehouse sync; unknown IDs are ignored.
func (s *Session) ApplyPercentiles(athleteID string, ts, usage, def, ast float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.catalog.Players()
	for i := range pool {
		if pool[i].AthleteID == athleteID {
			pool[i].TsPercentile = &ts
			pool[i].UsagePercentile = &usage
			pool[i].DefPercentile = &def
			pool[i].AstPercentile = &ast
			return
		}
	}
}
