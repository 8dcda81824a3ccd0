// Package region provides the static catalog of Paris areas the service
// forecasts for: the city as a whole plus its twenty arrondissements.
package region

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when an id does not name a region in the catalog.
var ErrNotFound = errors.New("region not found")

// AggregateID identifies the whole-city entry.
const AggregateID = 0

//go:embed regions.yaml
var catalogYAML []byte

// Region is a named point used to query the weather provider.
type Region struct {
	ID   int     `yaml:"id" json:"id"`
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
}

// IsAggregate reports whether the region stands for the whole city.
func (r Region) IsAggregate() bool {
	return r.ID == AggregateID
}

// Location renders the coordinates as "lat,lon", the form the provider expects.
func (r Region) Location() string {
	return strconv.FormatFloat(r.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(r.Lon, 'f', -1, 64)
}

// Catalog is an immutable, id-indexed set of regions. It is safe for
// concurrent use.
type Catalog struct {
	regions []Region
}

// Parse builds a catalog from a YAML list of regions. Ids must be unique and
// contiguous from zero.
func Parse(data []byte) (*Catalog, error) {
	var regions []Region
	if err := yaml.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("decoding regions: %w", err)
	}
	if len(regions) == 0 {
		return nil, errors.New("region catalog is empty")
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })

	for i, r := range regions {
		if r.ID != i {
			return nil, fmt.Errorf("region ids must be contiguous from 0: got %d at position %d", r.ID, i)
		}
		if r.Name == "" {
			return nil, fmt.Errorf("region %d has no name", r.ID)
		}
		if r.Lat < -90 || r.Lat > 90 || r.Lon < -180 || r.Lon > 180 {
			return nil, fmt.Errorf("region %d has invalid coordinates (%f, %f)", r.ID, r.Lat, r.Lon)
		}
	}

	return &Catalog{regions: regions}, nil
}

// Lookup returns the region with the given id, or ErrNotFound.
func (c *Catalog) Lookup(id int) (Region, error) {
	if id < 0 || id >= len(c.regions) {
		return Region{}, ErrNotFound
	}
	return c.regions[id], nil
}

// Coordinates returns the latitude and longitude for an id.
func (c *Catalog) Coordinates(id int) (lat, lon float64, err error) {
	r, err := c.Lookup(id)
	if err != nil {
		return 0, 0, err
	}
	return r.Lat, r.Lon, nil
}

// All returns every region ordered by id. The slice is a copy.
func (c *Catalog) All() []Region {
	out := make([]Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// Len returns the number of regions.
func (c *Catalog) Len() int {
	return len(c.regions)
}

var defaultCatalog = mustParse(catalogYAML)

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic("region: embedded catalog: " + err.Error())
	}
	return c
}

// Default returns the built-in Paris catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Lookup resolves an id against the built-in catalog.
func Lookup(id int) (Region, error) {
	return defaultCatalog.Lookup(id)
}

// All lists the built-in catalog.
func All() []Region {
	return defaultCatalog.All()
}
