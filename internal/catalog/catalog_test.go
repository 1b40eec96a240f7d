package catalog

import (
	"reflect"
	"testing"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

func testPool() []models.Player {
	return []models.Player{
		{AthleteID: "1", Name: "A'ja Wilson", Team: "LVA", Position: "F"},
		{AthleteID: "2", Name: "Caitlin Clark", Team: "IND", Position: "G"},
		{AthleteID: "3", Name: "Aliyah Boston", Team: "IND", Position: "F-C"},
		{AthleteID: "4", Name: "Breanna Stewart", Team: "NYL", Position: "F"},
		{AthleteID: "5", Name: "Jewell Loyd", Team: "", Position: "G"},
	}
}

func TestListTeams(t *testing.T) {
	c := New(testPool())

	teams := c.ListTeams()
	want := []string{"IND", "LVA", "NYL"}
	if !reflect.DeepEqual(teams, want) {
		t.Errorf("ListTeams() = %v, want %v", teams, want)
	}
}

func TestFilterPredicates(t *testing.T) {
	c := New(testPool())

	testCases := []struct {
		name    string
		opts    FilterOptions
		wantIDs []string
	}{
		{"no filters matches all", FilterOptions{}, []string{"1", "2", "3", "4", "5"}},
		{"search by name", FilterOptions{Search: "clark"}, []string{"2"}},
		{"search by team", FilterOptions{Search: "ind"}, []string{"2", "3"}},
		{"position substring", FilterOptions{Position: "C"}, []string{"3"}},
		{"position sentinel", FilterOptions{Position: FilterAll}, []string{"1", "2", "3", "4", "5"}},
		{"team exact", FilterOptions{Team: "IND"}, []string{"2", "3"}},
		{"team sentinel", FilterOptions{Team: FilterAll}, []string{"1", "2", "3", "4", "5"}},
		{"exclude roster ids", FilterOptions{ExcludeIDs: map[string]bool{"1": true, "4": true}}, []string{"2", "3", "5"}},
		{"conjunction", FilterOptions{Search: "a", Position: "F", Team: "IND"}, []string{"3"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Filter(tc.opts)
			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.AthleteID
			}
			if !reflect.DeepEqual(ids, tc.wantIDs) {
				t.Errorf("Filter() = %v, want %v", ids, tc.wantIDs)
			}
		})
	}
}

func TestFilterIdempotent(t *testing.T) {
	c := New(testPool())
	opts := FilterOptions{Search: "a", Position: "F", Team: "IND"}

	first := c.Filter(opts)
	second := c.Filter(opts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Filter() with identical options diverged: %v vs %v", first, second)
	}
}

func TestFilterCaseInsensitiveSearch(t *testing.T) {
	c := New(testPool())

	for _, term := range []string{"WILSON", "wilson", "WiLsOn"} {
		got := c.Filter(FilterOptions{Search: term})
		if len(got) != 1 || got[0].AthleteID != "1" {
			t.Errorf("search %q: got %v", term, got)
		}
	}
}

func TestPageClamp(t *testing.T) {
	testCases := []struct {
		page, n, want int
	}{
		{1, 0, 1},
		{5, 0, 1},
		{0, 30, 1},
		{-3, 30, 1},
		{2, 30, 2},
		{3, 30, 3},
		{4, 30, 3},
		{1, 12, 1},
		{2, 12, 1},
		{2, 13, 2},
	}

	for _, tc := range testCases {
		if got := ClampPage(tc.page, tc.n); got != tc.want {
			t.Errorf("ClampPage(%d, %d) = %d, want %d", tc.page, tc.n, got, tc.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	pool := make([]models.Player, 30)
	for i := range pool {
		pool[i] = models.Player{AthleteID: string(rune('a' + i))}
	}

	page1 := Paginate(pool, 1)
	if len(page1) != PageSize {
		t.Errorf("page 1 size = %d, want %d", len(page1), PageSize)
	}

	page3 := Paginate(pool, 3)
	if len(page3) != 6 {
		t.Errorf("page 3 size = %d, want 6", len(page3))
	}
	if page3[0].AthleteID != pool[24].AthleteID {
		t.Errorf("page 3 should start at index 24")
	}

	empty := Paginate([]models.Player{}, 1)
	if len(empty) != 0 {
		t.Errorf("empty pool page should be empty, got %d", len(empty))
	}
}
