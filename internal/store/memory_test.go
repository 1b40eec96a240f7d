package store

import (
	"context"
	"testing"
	"time"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

func testSnapshot(id string) *models.Snapshot {
	salary := 120000.0
	return &models.Snapshot{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		CreatedBy: "user-1",
		Lineup: []models.Player{
			{AthleteID: "1", Name: "A'ja Wilson", Salary: &salary},
		},
		TotalSalary: salary,
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	st := NewMemoryStore("test")

	if err := st.Put(context.Background(), "snap-1", testSnapshot("snap-1")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	snap, ok, err := st.Get(context.Background(), "snap-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("stored snapshot not found")
	}
	if snap.ID != "snap-1" || snap.CreatedBy != "user-1" {
		t.Errorf("snapshot fields mangled: %+v", snap)
	}
	if len(snap.Lineup) != 1 || snap.Lineup[0].AthleteID != "1" {
		t.Errorf("lineup mangled: %+v", snap.Lineup)
	}
}

func TestMemoryStoreGetAbsent(t *testing.T) {
	st := NewMemoryStore("test")

	snap, ok, err := st.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("absent key should not error: %v", err)
	}
	if ok || snap != nil {
		t.Errorf("absent key should report (nil, false), got (%v, %v)", snap, ok)
	}
}

func TestMemoryStoreNamespaceIsolation(t *testing.T) {
	a := NewMemoryStore("ns-a")
	b := NewMemoryStore("ns-b")

	if err := a.Put(context.Background(), "snap-1", testSnapshot("snap-1")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	if _, ok, _ := b.Get(context.Background(), "snap-1"); ok {
		t.Error("snapshot leaked across namespaces")
	}
}

func TestMemoryStoreImmutability(t *testing.T) {
	st := NewMemoryStore("test")
	original := testSnapshot("snap-1")

	if err := st.Put(context.Background(), "snap-1", original); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	// Mutating the caller's copy must not affect the stored document
	original.CreatedBy = "someone-else"
	original.Lineup[0].Name = "Changed"

	snap, _, _ := st.Get(context.Background(), "snap-1")
	if snap.CreatedBy != "user-1" {
		t.Errorf("stored snapshot mutated via caller reference: %q", snap.CreatedBy)
	}
	if snap.Lineup[0].Name != "A'ja Wilson" {
		t.Errorf("stored lineup mutated via caller reference: %q", snap.Lineup[0].Name)
	}

	// And mutating a retrieved copy must not affect later reads
	snap.Lineup[0].Name = "Changed Again"
	again, _, _ := st.Get(context.Background(), "snap-1")
	if again.Lineup[0].Name != "A'ja Wilson" {
		t.Errorf("stored lineup mutated via retrieved reference: %q", again.Lineup[0].Name)
	}
}
