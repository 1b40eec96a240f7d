package roster

import (
	"fmt"
	"testing"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

func TestAddPreservesOrder(t *testing.T) {
	b := New()
	b.Add(models.Player{AthleteID: "2", Name: "Second"})
	b.Add(models.Player{AthleteID: "1", Name: "First"})
	b.Add(models.Player{AthleteID: "3", Name: "Third"})

	members := b.Players()
	wantOrder := []string{"2", "1", "3"}
	for i, id := range wantOrder {
		if members[i].AthleteID != id {
			t.Errorf("position %d: got %s, want %s", i, members[i].AthleteID, id)
		}
	}
}

func TestAddCapacityLimit(t *testing.T) {
	b := New()
	for i := 0; i < models.RosterLimit+5; i++ {
		b.Add(models.Player{AthleteID: fmt.Sprintf("p%d", i)})
	}

	if b.Len() != models.RosterLimit {
		t.Errorf("roster size = %d, want %d", b.Len(), models.RosterLimit)
	}
	// Overflow adds are silent no-ops, the first 12 remain
	if !b.Contains("p0") || !b.Contains("p11") {
		t.Error("expected first 12 adds to be kept")
	}
	if b.Contains("p12") {
		t.Error("add beyond capacity should be a no-op")
	}
}

func TestAddDuplicateIsNoOp(t *testing.T) {
	b := New()
	b.Add(models.Player{AthleteID: "1", Name: "Original"})
	b.Add(models.Player{AthleteID: "1", Name: "Duplicate"})

	if b.Len() != 1 {
		t.Fatalf("roster size = %d, want 1", b.Len())
	}
	if b.Players()[0].Name != "Original" {
		t.Error("duplicate add should not replace the original entry")
	}
}

func TestRemove(t *testing.T) {
	b := New()
	b.Add(models.Player{AthleteID: "1"})
	b.Add(models.Player{AthleteID: "2"})
	b.Add(models.Player{AthleteID: "3"})

	b.Remove("2")
	if b.Len() != 2 || b.Contains("2") {
		t.Errorf("remove failed: %v", b.Players())
	}

	// Removing an absent ID is a no-op
	b.Remove("99")
	if b.Len() != 2 {
		t.Errorf("remove of absent id changed the roster: %v", b.Players())
	}
}

func TestClear(t *testing.T) {
	b := New()
	b.Add(models.Player{AthleteID: "1"})
	b.Add(models.Player{AthleteID: "2"})

	b.Clear()
	if b.Len() != 0 {
		t.Errorf("roster size after clear = %d, want 0", b.Len())
	}

	// The builder stays usable after a clear
	b.Add(models.Player{AthleteID: "3"})
	if b.Len() != 1 {
		t.Errorf("add after clear failed")
	}
}

func TestSeedEnforcesInvariants(t *testing.T) {
	players := make([]models.Player, 0, 15)
	for i := 0; i < 14; i++ {
		players = append(players, models.Player{AthleteID: fmt.Sprintf("p%d", i%13)})
	}

	b := Seed(players)
	if b.Len() > models.RosterLimit {
		t.Errorf("seeded roster size = %d, exceeds limit %d", b.Len(), models.RosterLimit)
	}

	seen := map[string]bool{}
	for _, p := range b.Players() {
		if seen[p.AthleteID] {
			t.Errorf("duplicate athlete id in seeded roster: %s", p.AthleteID)
		}
		seen[p.AthleteID] = true
	}
}

func TestInvariantsUnderAnySequence(t *testing.T) {
	b := New()
	for i := 0; i < 50; i++ {
		b.Add(models.Player{AthleteID: fmt.Sprintf("p%d", i%20)})
		if i%7 == 0 {
			b.Remove(fmt.Sprintf("p%d", i%5))
		}

		if b.Len() > models.RosterLimit {
			t.Fatalf("capacity invariant violated at step %d: %d members", i, b.Len())
		}
		seen := map[string]bool{}
		for _, p := range b.Players() {
			if seen[p.AthleteID] {
				t.Fatalf("uniqueness invariant violated at step %d: %s", i, p.AthleteID)
			}
			seen[p.AthleteID] = true
		}
	}
}
