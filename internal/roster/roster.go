package roster

import "github.com/websteralycia/WNBA-Lineup-Lab/internal/models"

// Builder maintains the in-progress lineup: an ordered, capacity-bounded
// sequence of players with unique athlete IDs. Capacity and duplicate
// violations are silent no-ops, not errors; callers that care can compare
// Len before and after.
type Builder struct {
	members []models.Player
}

// New creates an empty lineup builder.
func New() *Builder {
	return &Builder{members: []models.Player{}}
}

// Seed replaces the lineup wholesale, e.g. from a resolved snapshot.
// Capacity and uniqueness invariants are still enforced member by member.
func Seed(players []models.Player) *Builder {
	b := New()
	for _, p := range players {
		b.Add(p)
	}
	return b
}

// Add appends a player, preserving insertion order. It is a no-op when the
// lineup is full or the athlete ID is already present.
func (b *Builder) Add(p models.Player) {
	if len(b.members) >= models.RosterLimit {
		return
	}
	if b.Contains(p.AthleteID) {
		return
	}
	b.members = append(b.members, p)
}

// Remove drops the member with the given athlete ID. No-op if absent.
func (b *Builder) Remove(athleteID string) {
	kept := b.members[:0]
	for _, p := range b.members {
		if p.AthleteID != athleteID {
			kept = append(kept, p)
		}
	}
	b.members = kept
}

// Clear empties the lineup.
func (b *Builder) Clear() {
	b.members = b.members[:0]
}

// Contains reports whether the athlete ID is on the lineup.
func (b *Builder) Contains(athleteID string) bool {
	for _, p := range b.members {
		if p.AthleteID == athleteID {
			return true
		}
	}
	return false
}

// Len returns the current member count.
func (b *Builder) Len() int {
	return len(b.members)
}

// Players returns a copy of the lineup in insertion order.
func (b *Builder) Players() []models.Player {
	out := make([]models.Player, len(b.members))
	copy(out, b.members)
	return out
}

// IDSet returns the member athlete IDs, for catalog exclusion.
func (b *Builder) IDSet() map[string]bool {
	ids := make(map[string]bool, len(b.members))
	for _, p := range b.members {
		ids[p.AthleteID] = true
	}
	return ids
}
