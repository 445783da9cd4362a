package catalogue

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalogue holds every content table, indexed for O(1) lookup. Built once
// at startup by Load and never mutated afterward.
type Catalogue struct {
	units   map[string]*UnitTemplate
	traits  map[string]*TraitDefinition
	items   map[string]*Item
	crests  map[string]*Crest
	recipes map[[2]string]string // sorted component-id pair -> combined item id
}

type unitsFile struct {
	Units []UnitTemplate `yaml:"units"`
}

type traitsFile struct {
	Traits []TraitDefinition `yaml:"traits"`
}

type itemsFile struct {
	Items []Item `yaml:"items"`
}

type crestsFile struct {
	Crests []Crest `yaml:"crests"`
}

// Load reads units.yaml, traits.yaml, items.yaml, and crests.yaml from dir.
func Load(dir string) (*Catalogue, error) {
	c := &Catalogue{
		units:   make(map[string]*UnitTemplate),
		traits:  make(map[string]*TraitDefinition),
		items:   make(map[string]*Item),
		crests:  make(map[string]*Crest),
		recipes: make(map[[2]string]string),
	}

	var uf unitsFile
	if err := readYAML(filepath.Join(dir, "units.yaml"), &uf); err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	for i := range uf.Units {
		u := uf.Units[i]
		c.units[u.ID] = &u
	}

	var tf traitsFile
	if err := readYAML(filepath.Join(dir, "traits.yaml"), &tf); err != nil {
		return nil, fmt.Errorf("load traits: %w", err)
	}
	for i := range tf.Traits {
		t := tf.Traits[i]
		sort.Slice(t.Tiers, func(a, b int) bool { return t.Tiers[a].Count < t.Tiers[b].Count })
		c.traits[t.ID] = &t
	}

	var itf itemsFile
	if err := readYAML(filepath.Join(dir, "items.yaml"), &itf); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	for i := range itf.Items {
		it := itf.Items[i]
		c.items[it.ID] = &it
		if it.Kind == ItemCombined {
			key := recipeKey(it.Recipe[0], it.Recipe[1])
			c.recipes[key] = it.ID
		}
	}

	var cf crestsFile
	if err := readYAML(filepath.Join(dir, "crests.yaml"), &cf); err != nil {
		return nil, fmt.Errorf("load crests: %w", err)
	}
	for i := range cf.Crests {
		cr := cf.Crests[i]
		c.crests[cr.ID] = &cr
	}

	return c, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func recipeKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Unit looks up a unit template by id.
func (c *Catalogue) Unit(id string) (*UnitTemplate, bool) {
	u, ok := c.units[id]
	return u, ok
}

// UnitsByCost returns every unit template at the given cost tier.
func (c *Catalogue) UnitsByCost(cost int) []*UnitTemplate {
	var out []*UnitTemplate
	for _, u := range c.units {
		if u.Cost == cost {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllUnits returns every unit template, sorted by id.
func (c *Catalogue) AllUnits() []*UnitTemplate {
	out := make([]*UnitTemplate, 0, len(c.units))
	for _, u := range c.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Trait looks up a trait definition by id.
func (c *Catalogue) Trait(id string) (*TraitDefinition, bool) {
	t, ok := c.traits[id]
	return t, ok
}

// Item looks up an item by id.
func (c *Catalogue) Item(id string) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// ItemsByKind returns every item of the given kind.
func (c *Catalogue) ItemsByKind(kind ItemKind) []*Item {
	var out []*Item
	for _, it := range c.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RecipeFor returns the combined item formed by two component ids, if any.
func (c *Catalogue) RecipeFor(a, b string) (*Item, bool) {
	id, ok := c.recipes[recipeKey(a, b)]
	if !ok {
		return nil, false
	}
	return c.Item(id)
}

// Crest looks up a crest by id.
func (c *Catalogue) Crest(id string) (*Crest, bool) {
	cr, ok := c.crests[id]
	return cr, ok
}

// CrestsByKind returns every crest of the given kind.
func (c *Catalogue) CrestsByKind(kind CrestKind) []*Crest {
	var out []*Crest
	for _, cr := range c.crests {
		if cr.Kind == kind {
			out = append(out, cr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
