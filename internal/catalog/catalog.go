// Package catalog serves the read-only directory data: listed servers, the default radio
// playlist, the secondary catalog and boutique products.
//
// Data ships as TOML embedded in the binary and is parsed once by [Default].
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/shared"
)

//go:embed data/*.toml
var dataFiles embed.FS

// Catalog holds every static collection.
type Catalog struct {
	Servers       []models.CommunityEntry
	Songs         []models.Track
	Items         []models.CatalogItem
	Products      []models.Product
	subcategories map[models.ItemCategory][]string
}

type serversFile struct {
	Servers []models.CommunityEntry `toml:"servers"`
}

type songsFile struct {
	Songs []models.Track `toml:"songs"`
}

type itemsFile struct {
	Subcategories map[string][]string  `toml:"subcategories"`
	Items         []models.CatalogItem `toml:"items"`
}

type productsFile struct {
	Products []models.Product `toml:"products"`
}

// Default returns the embedded catalog, parsing it on first call.
var Default = sync.OnceValues(Load)

// Load parses the embedded data files.
func Load() (*Catalog, error) {
	sub, err := fs.Sub(dataFiles, "data")
	if err != nil {
		return nil, err
	}
	return Parse(sub)
}

// Parse reads servers.toml, songs.toml, items.toml and products.toml from fsys and validates them.
func Parse(fsys fs.FS) (*Catalog, error) {
	var (
		servers  serversFile
		songs    songsFile
		items    itemsFile
		products productsFile
	)

	for name, v := range map[string]any{
		"servers.toml":  &servers,
		"songs.toml":    &songs,
		"items.toml":    &items,
		"products.toml": &products,
	} {
		if _, err := toml.DecodeFS(fsys, name, v); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %w", shared.ErrInvalidConfig, name, err)
		}
	}

	c := &Catalog{
		Servers:       servers.Servers,
		Songs:         songs.Songs,
		Items:         items.Items,
		Products:      products.Products,
		subcategories: map[models.ItemCategory][]string{},
	}

	for key, values := range items.Subcategories {
		cat, err := models.ParseItemCategory(key)
		if err != nil {
			return nil, fmt.Errorf("%w: items.toml subcategories: %w", shared.ErrInvalidConfig, err)
		}
		c.subcategories[cat] = values
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every record and that ids are unique within each collection.
func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for _, s := range c.Servers {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate server id %s", shared.ErrInvalidConfig, s.ID)
		}
		seen[s.ID] = true
	}

	clear(seen)
	for _, t := range c.Songs {
		switch {
		case t.ID == "" || t.SourceURL == "":
			return fmt.Errorf("%w: song %q needs an id and a url", shared.ErrInvalidConfig, t.Title)
		case seen[t.ID]:
			return fmt.Errorf("%w: duplicate song id %s", shared.ErrInvalidConfig, t.ID)
		}
		seen[t.ID] = true
	}

	clear(seen)
	for _, i := range c.Items {
		if err := i.Validate(); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
		}
		if seen[i.ID] {
			return fmt.Errorf("%w: duplicate catalog item id %s", shared.ErrInvalidConfig, i.ID)
		}
		seen[i.ID] = true
	}

	clear(seen)
	for _, p := range c.Products {
		switch {
		case p.Tier == models.TierNone:
			return fmt.Errorf("%w: product %q has no tier", shared.ErrInvalidConfig, p.Name)
		case p.Price < 0:
			return fmt.Errorf("%w: product %s has a negative price", shared.ErrInvalidConfig, p.ID())
		case seen[p.ID()]:
			return fmt.Errorf("%w: duplicate product %s", shared.ErrInvalidConfig, p.ID())
		}
		seen[p.ID()] = true
	}

	return nil
}

// Subcategories returns the subcategory choices of an item category, without the "all" choice.
func (c *Catalog) Subcategories(category models.ItemCategory) []string {
	return slices.Clone(c.subcategories[category])
}

// ProductByTier returns the boutique product sold for a tier.
func (c *Catalog) ProductByTier(tier models.PromotionTier) (models.Product, bool) {
	i := slices.IndexFunc(c.Products, func(p models.Product) bool { return p.Tier == tier })
	if i < 0 {
		return models.Product{}, false
	}
	return c.Products[i], true
}

// Server returns a listed server by id.
func (c *Catalog) Server(id string) (models.CommunityEntry, bool) {
	i := slices.IndexFunc(c.Servers, func(s models.CommunityEntry) bool { return s.ID == id })
	if i < 0 {
		return models.CommunityEntry{}, false
	}
	return c.Servers[i], true
}
