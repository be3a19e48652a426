package instrument

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed instruments.yaml
var defaultCatalogYAML []byte

// catalogFile is the on-disk shape of a catalog. Top-level keys other than
// "instruments" (such as shared option scales used as YAML anchors) are ignored.
type catalogFile struct {
	Instruments []Instrument `yaml:"instruments"`
}

// Catalog is an immutable, validated set of instruments indexed by id and alias.
// It is safe for concurrent use.
type Catalog struct {
	instruments []Instrument
	index       map[string]int
}

// Load parses and validates a YAML catalog. Any violation fails the whole load.
func Load(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing instrument catalog: %w", err)
	}
	return New(f.Instruments)
}

// LoadFile reads and validates a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instrument catalog: %w", err)
	}
	return Load(data)
}

// New validates instruments and builds a catalog from a deep copy of them.
// Later changes to the caller's slices do not reach the catalog.
func New(instruments []Instrument) (*Catalog, error) {
	if len(instruments) == 0 {
		return nil, &ConfigError{Violations: []Violation{{"instruments", "at least one instrument required"}}}
	}

	owned := make([]Instrument, len(instruments))
	for i := range instruments {
		owned[i] = instruments[i].clone()
	}
	if errs := Validate(owned); len(errs) > 0 {
		return nil, &ConfigError{Violations: errs}
	}

	c := &Catalog{
		instruments: owned,
		index:       make(map[string]int),
	}
	for i, in := range c.instruments {
		c.index[normalize(in.ID)] = i
		for _, a := range in.Aliases {
			c.index[normalize(a)] = i
		}
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the built-in catalog. It is parsed once on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(defaultCatalogYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is like Default but panics if the built-in catalog is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up an instrument by id or alias, ignoring case and surrounding spaces.
// The returned instrument must not be modified.
func (c *Catalog) Get(id string) (*Instrument, error) {
	i, ok := c.index[normalize(id)]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return &c.instruments[i], nil
}

// All returns the instruments in declaration order.
func (c *Catalog) All() []*Instrument {
	out := make([]*Instrument, len(c.instruments))
	for i := range c.instruments {
		out[i] = &c.instruments[i]
	}
	return out
}

// IDs returns the canonical instrument ids, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.instruments))
	for i, in := range c.instruments {
		ids[i] = in.ID
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of instruments.
func (c *Catalog) Len() int { return len(c.instruments) }

// SlotsUsed returns how many feature-vector slots the catalog occupies.
func (c *Catalog) SlotsUsed() int {
	n := 0
	for _, in := range c.instruments {
		n += len(in.Questions)
	}
	return n
}
