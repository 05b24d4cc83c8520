package catalog

import (
	"errors"
	"strings"
	"testing"
)

func fixture(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]Restaurant{
		{ID: 1, Name: "GoodFoods Rao", Capacity: 60, Cuisine: "Indian", Features: []string{"outdoor", "parking"}},
		{ID: 2, Name: "Olive Bistro", Capacity: 20, Cuisine: "italian"},
		{ID: 3, Name: "Bistro Rome", Capacity: 40, Cuisine: "Italian", Features: []string{"outdoor"}},
		{ID: 4, Name: "GoodFoods Iyer", Capacity: 120, Cuisine: "Thai", Features: []string{"rooftop"}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestSearchCuisineIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	c := fixture(t)
	for _, cuisine := range []string{"italian", "ITALIAN", " Italian "} {
		got := c.Search(Filter{Cuisine: cuisine})
		if len(got) != 2 {
			t.Fatalf("Search(%q) returned %d restaurants, want 2", cuisine, len(got))
		}
		for _, r := range got {
			if !strings.EqualFold(r.Cuisine, strings.TrimSpace(cuisine)) {
				t.Fatalf("Search(%q) returned cuisine %q", cuisine, r.Cuisine)
			}
		}
	}
}

func TestSearchFilters(t *testing.T) {
	t.Parallel()

	c := fixture(t)
	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{name: "no filter keeps dataset order", filter: Filter{}, want: []int{1, 2, 3, 4}},
		{name: "min seats", filter: Filter{MinSeats: 40}, want: []int{1, 3, 4}},
		{name: "cuisine and seats", filter: Filter{Cuisine: "Italian", MinSeats: 30}, want: []int{3}},
		{name: "feature superset", filter: Filter{Features: []string{"outdoor"}}, want: []int{1, 3}},
		{name: "all features required", filter: Filter{Features: []string{"outdoor", "parking"}}, want: []int{1}},
		{name: "no match", filter: Filter{Cuisine: "Korean"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("Search() returned %d restaurants, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Fatalf("Search()[%d].ID = %d, want %d", i, r.ID, tt.want[i])
				}
			}
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	c := fixture(t)
	r, ok := c.Lookup(3)
	if !ok || r.Name != "Bistro Rome" {
		t.Fatalf("Lookup(3) = %+v, %v", r, ok)
	}
	if _, ok := c.Lookup(99); ok {
		t.Fatal("Lookup(99) should miss")
	}
	if capacity, ok := c.Capacity(4); !ok || capacity != 120 {
		t.Fatalf("Capacity(4) = %d, %v", capacity, ok)
	}
}

func TestReturnedFeaturesAreCopies(t *testing.T) {
	t.Parallel()

	c := fixture(t)

	r, _ := c.Lookup(1)
	r.Features[0] = "lookup"
	c.Search(Filter{Cuisine: "Indian"})[0].Features[0] = "search"
	c.All()[0].Features[0] = "all"

	got, _ := c.Lookup(1)
	if got.Features[0] != "outdoor" {
		t.Fatalf("catalog features were modified: %v", got.Features)
	}
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	if _, err := New([]Restaurant{{ID: 1, Name: "x", Capacity: 0, Cuisine: "Thai"}}); err == nil {
		t.Fatal("expected error for zero capacity")
	}

	_, err := New([]Restaurant{
		{ID: 1, Name: "a", Capacity: 10, Cuisine: "Thai"},
		{ID: 1, Name: "b", Capacity: 10, Cuisine: "Thai"},
	})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	c, err := Load(strings.NewReader(`[
		{"id": 7, "name": "Copper Bistro", "address": "1 MG Road", "lat": 12.97, "lon": 77.59,
		 "capacity": 30, "cuisine": "French", "features": ["live_music"]}
	]`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r, ok := c.Lookup(7)
	if !ok {
		t.Fatal("expected restaurant 7")
	}
	if r.Address != "1 MG Road" || len(r.Features) != 1 || r.Features[0] != "live_music" {
		t.Fatalf("unexpected restaurant: %+v", r)
	}
}

func TestDefaultDataset(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("default catalog is empty")
	}
	all := c.All()
	for i, r := range all {
		if r.ID != i+1 {
			t.Fatalf("restaurant at %d has id %d", i, r.ID)
		}
	}
}
