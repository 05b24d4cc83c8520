package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

//go:embed data/restaurants.json
var defaultDataset []byte

var ErrDuplicateID = errors.New("duplicate restaurant id")

// Restaurant is an immutable catalog entry.
type Restaurant struct {
	ID       int      `json:"id" validate:"gt=0"`
	Name     string   `json:"name" validate:"required"`
	Address  string   `json:"address"`
	Lat      float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64  `json:"lon" validate:"gte=-180,lte=180"`
	Capacity int      `json:"capacity" validate:"gt=0"`
	Cuisine  string   `json:"cuisine" validate:"required"`
	Features []string `json:"features"`
}

// HasFeatures reports whether r offers every feature in want.
func (r Restaurant) HasFeatures(want []string) bool {
	for _, f := range want {
		found := false
		for _, have := range r.Features {
			if have == f {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// clone detaches Features so callers cannot edit the catalog.
func (r Restaurant) clone() Restaurant {
	r.Features = append([]string(nil), r.Features...)
	return r
}

// Filter narrows Search; zero values disable a criterion.
type Filter struct {
	Cuisine  string
	MinSeats int
	Features []string
}

// Catalog is the read-only restaurant set in dataset order.
type Catalog struct {
	ordered []Restaurant
	byID    map[int]int
}

func New(restaurants []Restaurant) (*Catalog, error) {
	validate := validator.New()

	c := &Catalog{
		ordered: make([]Restaurant, 0, len(restaurants)),
		byID:    make(map[int]int, len(restaurants)),
	}
	for _, r := range restaurants {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("invalid restaurant id=%d: %w", r.ID, err)
		}
		if _, ok := c.byID[r.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
		r.Features = append([]string(nil), r.Features...)
		c.byID[r.ID] = len(c.ordered)
		c.ordered = append(c.ordered, r)
	}
	return c, nil
}

func Load(r io.Reader) (*Catalog, error) {
	var restaurants []Restaurant
	if err := json.NewDecoder(r).Decode(&restaurants); err != nil {
		return nil, fmt.Errorf("decode restaurants: %w", err)
	}
	return New(restaurants)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open restaurants file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default loads the dataset compiled into the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultDataset))
}

// Open loads path when set, otherwise the embedded dataset.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

func (c *Catalog) Lookup(id int) (Restaurant, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Restaurant{}, false
	}
	return c.ordered[i].clone(), true
}

func (c *Catalog) Capacity(id int) (int, bool) {
	i, ok := c.byID[id]
	if !ok {
		return 0, false
	}
	return c.ordered[i].Capacity, true
}

func (c *Catalog) Search(filter Filter) []Restaurant {
	cuisine := strings.TrimSpace(filter.Cuisine)
	out := make([]Restaurant, 0, len(c.ordered))
	for _, r := range c.ordered {
		if cuisine != "" && !strings.EqualFold(r.Cuisine, cuisine) {
			continue
		}
		if filter.MinSeats > 0 && r.Capacity < filter.MinSeats {
			continue
		}
		if len(filter.Features) > 0 && !r.HasFeatures(filter.Features) {
			continue
		}
		out = append(out, r.clone())
	}
	return out
}

func (c *Catalog) All() []Restaurant {
	out := make([]Restaurant, len(c.ordered))
	for i, r := range c.ordered {
		out[i] = r.clone()
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.ordered)
}
