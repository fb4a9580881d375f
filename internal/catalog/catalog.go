// Package catalog holds the immutable scene and location catalogs the
// controller resolves names against.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrSceneNotFound    = errors.New("scene not found")
	ErrLocationNotFound = errors.New("location not found")
)

// Entry is a single name -> identifier mapping.
type Entry struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// Index is an ordered, read-only name -> id lookup.
// Entry order is preserved and defines iteration order.
// Safe for concurrent reads; never mutated after construction.
type Index struct {
	entries []Entry
	byName  map[string]int
}

// NewIndex builds an index, normalizing names with norm.
// Duplicate names keep the first entry; entries without a name or id are skipped.
func NewIndex(entries []Entry, norm func(string) string) *Index {
	idx := &Index{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		name := norm(e.Name)
		if name == "" || e.ID == "" {
			continue
		}
		if _, dup := idx.byName[name]; dup {
			continue
		}
		idx.byName[name] = len(idx.entries)
		idx.entries = append(idx.entries, Entry{Name: name, ID: e.ID})
	}
	return idx
}

// Lookup returns the id for an already normalized name.
func (i *Index) Lookup(name string) (string, bool) {
	pos, ok := i.byName[name]
	if !ok {
		return "", false
	}
	return i.entries[pos].ID, true
}

// Names returns all names in catalog order.
func (i *Index) Names() []string {
	names := make([]string, len(i.entries))
	for n, e := range i.entries {
		names[n] = e.Name
	}
	return names
}

// Len returns the number of entries.
func (i *Index) Len() int {
	return len(i.entries)
}

// Catalog combines the scene and location indexes.
type Catalog struct {
	Scenes          *Index
	Locations       *Index
	DefaultLocation string
}

// File is the on-disk catalog representation.
type File struct {
	DefaultLocation string  `yaml:"default_location"`
	Locations       []Entry `yaml:"locations"`
	Scenes          []Entry `yaml:"scenes"`
}

// New builds a catalog from its file form.
func New(f File) *Catalog {
	return &Catalog{
		Scenes:          NewIndex(f.Scenes, NormalizeScene),
		Locations:       NewIndex(f.Locations, NormalizeLocation),
		DefaultLocation: NormalizeLocation(f.DefaultLocation),
	}
}

// Load reads a catalog YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return New(f), nil
}

// Write encodes a catalog file as YAML.
func Write(w io.Writer, f File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// ResolveLocation maps a location name to its group id.
// An empty location resolves to the default location.
func (c *Catalog) ResolveLocation(location string) (string, error) {
	name := NormalizeLocation(location)
	if name == "" {
		name = c.DefaultLocation
	}
	id, ok := c.Locations.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}
	return id, nil
}

// ResolveScene maps a scene name to its id, exact match first and fuzzy fallback second.
func (c *Catalog) ResolveScene(name string) (string, error) {
	return ResolveScene(name, c.Scenes)
}

// NormalizeScene lowercases and trims a scene name.
func NormalizeScene(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeLocation lowercases, trims and replaces spaces with underscores.
func NormalizeLocation(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}
