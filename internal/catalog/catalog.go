package catalog

import (
	"sort"
	"strings"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

// PageSize is the number of players shown per catalog page.
const PageSize = 12

// FilterAll is the sentinel meaning "no position/team restriction".
const FilterAll = "All"

// Catalog holds the full imported player pool and answers filtered,
// paginated views over it. A successful import replaces the whole pool,
// players are never merged or individually deleted.
type Catalog struct {
	players []models.Player
}

// New creates a catalog over the given pool.
func New(players []models.Player) *Catalog {
	return &Catalog{players: players}
}

// Replace swaps in a freshly imported pool.
func (c *Catalog) Replace(players []models.Player) {
	c.players = players
}

// Players returns the full pool in import order.
func (c *Catalog) Players() []models.Player {
	return c.players
}

// Len returns the pool size.
func (c *Catalog) Len() int {
	return len(c.players)
}

// ListTeams returns the distinct non-empty team values, sorted ascending.
func (c *Catalog) ListTeams() []string {
	seen := make(map[string]bool)
	teams := []string{}
	for _, p := range c.players {
		if p.Team != "" && !seen[p.Team] {
			seen[p.Team] = true
			teams = append(teams, p.Team)
		}
	}
	sort.Strings(teams)
	return teams
}

// FilterOptions describes a catalog view. The four predicates are
// conjunctive and order-independent.
type FilterOptions struct {
	Search     string          // case-insensitive contains on name or team; empty matches all
	Position   string          // FilterAll or a substring of the position code
	Team       string          // FilterAll or an exact team match
	ExcludeIDs map[string]bool // athlete IDs currently on the roster
}

// Filter returns the players matching all predicates, in pool order.
func (c *Catalog) Filter(opts FilterOptions) []models.Player {
	term := strings.ToLower(strings.TrimSpace(opts.Search))

	matched := []models.Player{}
	for _, p := range c.players {
		if opts.ExcludeIDs[p.AthleteID] {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Team), term) {
			continue
		}
		if opts.Position != "" && opts.Position != FilterAll &&
			!strings.Contains(p.Position, opts.Position) {
			continue
		}
		if opts.Team != "" && opts.Team != FilterAll && p.Team != opts.Team {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

// PageCount returns the number of pages for n players, with a floor of 1
// even when the filtered set is empty.
func PageCount(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage clamps a requested page number into [1, PageCount(n)].
func ClampPage(page, n int) int {
	if page < 1 {
		return 1
	}
	if max := PageCount(n); page > max {
		return max
	}
	return page
}

// Paginate returns the contiguous slice for the given (already clamped)
// page number.
func Paginate(players []models.Player, page int) []models.Player {
	start := (page - 1) * PageSize
	if start >= len(players) {
		return []models.Player{}
	}
	end := start + PageSize
	if end > len(players) {
		end = len(players)
	}
	return players[start:end]
}
