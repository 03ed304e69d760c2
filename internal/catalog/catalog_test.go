package catalog

import (
	"errors"
	"slices"
	"testing"
	"testing/fstest"
	"time"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/shared"
)

func itemIDs(items []models.CatalogItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func serverIDs(entries []models.CommunityEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func mustLoad(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load()
	if err != nil {
		t.Fatalf("failed to load embedded catalog: %v", err)
	}
	return c
}

func TestLoad(t *testing.T) {
	t.Run("embedded data", func(t *testing.T) {
		c := mustLoad(t)

		if len(c.Servers) == 0 || len(c.Songs) != 5 || len(c.Items) == 0 || len(c.Products) != 3 {
			t.Fatalf("unexpected catalog sizes: %d servers, %d songs, %d items, %d products",
				len(c.Servers), len(c.Songs), len(c.Items), len(c.Products))
		}

		first := c.Servers[0]
		if first.Name != "Reload Ta Pub" || first.Category != models.CategoryAdvertising {
			t.Errorf("expected mixed-case category to normalize, got %+v", first)
		}

		if c.Items[0].Category != models.ItemDiscord {
			t.Errorf("expected \"discord server\" alias to parse, got %s", c.Items[0].Category)
		}

		date := c.Items[1].DateAdded
		if date.Year() != 2024 || date.Month() != time.March || date.Day() != 10 {
			t.Errorf("unexpected date added %v", date)
		}

		if c.Songs[0].SourceURL != "https://youtu.be/0ycrBHxbolE" {
			t.Errorf("unexpected first song %+v", c.Songs[0])
		}
	})

	t.Run("Default is parsed once", func(t *testing.T) {
		a, err := Default()
		if err != nil {
			t.Fatalf("Default failed: %v", err)
		}
		b, _ := Default()
		if a != b {
			t.Error("expected the same catalog instance")
		}
	})

	t.Run("Subcategories", func(t *testing.T) {
		c := mustLoad(t)
		got := c.Subcategories(models.ItemGameServer)
		if !slices.Equal(got, []string{"minecraft", "gta5", "rust", "ark"}) {
			t.Errorf("unexpected subcategories %v", got)
		}
		got[0] = "changed"
		if c.Subcategories(models.ItemGameServer)[0] != "minecraft" {
			t.Error("Subcategories must return a copy")
		}
	})

	t.Run("products", func(t *testing.T) {
		c := mustLoad(t)

		premium, ok := c.ProductByTier(models.TierPremium)
		if !ok || premium.Price != 1.30 || !premium.Popular || premium.ID() != "premium" {
			t.Errorf("unexpected premium product %+v", premium)
		}

		basic, _ := c.ProductByTier(models.TierBasic)
		if !basic.Free() {
			t.Error("basic boost should be free")
		}

		if _, ok := c.ProductByTier(models.TierNone); ok {
			t.Error("no product is sold for the empty tier")
		}
	})

	t.Run("Server", func(t *testing.T) {
		c := mustLoad(t)
		if s, ok := c.Server("1"); !ok || s.Name != "Reload Ta Pub" {
			t.Errorf("unexpected server %+v", s)
		}
		if _, ok := c.Server("missing"); ok {
			t.Error("expected missing server")
		}
	})
}

func TestParse(t *testing.T) {
	valid := fstest.MapFS{
		"servers.toml":  {Data: []byte("[[servers]]\nid = \"a\"\nname = \"A\"\ncategory = \"gaming\"\n")},
		"songs.toml":    {Data: []byte("[[songs]]\nid = \"1\"\ntitle = \"T\"\nurl = \"https://youtu.be/dQw4w9WgXcQ\"\n")},
		"items.toml":    {Data: []byte("[subcategories]\ngame = [\"Gaming\"]\n")},
		"products.toml": {Data: []byte("")},
	}

	t.Run("minimal data", func(t *testing.T) {
		c, err := Parse(valid)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(c.Servers) != 1 || len(c.Items) != 0 {
			t.Errorf("unexpected catalog %+v", c)
		}
	})

	tc := []struct {
		name string
		file string
		data string
	}{
		{"duplicate server id", "servers.toml", "[[servers]]\nid = \"a\"\nname = \"A\"\ncategory = \"gaming\"\n[[servers]]\nid = \"a\"\nname = \"B\"\ncategory = \"other\"\n"},
		{"unknown server category", "servers.toml", "[[servers]]\nid = \"a\"\nname = \"A\"\ncategory = \"music\"\n"},
		{"negative member count", "servers.toml", "[[servers]]\nid = \"a\"\nname = \"A\"\ncategory = \"gaming\"\nmember_count = -1\n"},
		{"song without url", "songs.toml", "[[songs]]\nid = \"1\"\ntitle = \"T\"\n"},
		{"rating above five", "items.toml", "[[items]]\nid = \"1\"\nname = \"I\"\ncategory = \"game\"\nrating = 6.0\n"},
		{"unknown subcategory key", "items.toml", "[subcategories]\nmovies = [\"x\"]\n"},
		{"product without tier", "products.toml", "[[products]]\nname = \"P\"\nprice = 1.0\n"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for k, v := range valid {
				fsys[k] = v
			}
			fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.data)}

			if _, err := Parse(fsys); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		fsys := fstest.MapFS{"servers.toml": valid["servers.toml"]}
		if _, err := Parse(fsys); err == nil {
			t.Error("expected error for missing files")
		}
	})
}

func TestSearch(t *testing.T) {
	items := mustLoad(t).Items

	tc := []struct {
		query string
		want  []string
	}{
		{"minecraft", []string{"2", "4"}},
		{"MINECRAFT", []string{"2", "4"}},
		{"  Minecraft ", []string{"2", "4"}},
		{"active-community", []string{"1"}},
		{"roleplay", []string{"1", "3"}},
		{"économie", []string{"3"}},
		{"nothing matches this", []string{}},
	}

	for _, tt := range tc {
		if got := itemIDs(Search(items, tt.query)); !slices.Equal(got, tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}

	t.Run("blank query returns everything", func(t *testing.T) {
		if got := Search(items, "   "); len(got) != len(items) {
			t.Errorf("expected %d items, got %d", len(items), len(got))
		}
	})
}

func TestFilter(t *testing.T) {
	items := mustLoad(t).Items

	tc := []struct {
		name   string
		filter ItemFilter
		want   []string
	}{
		{"everything", ItemFilter{Category: All, Subcategory: All}, []string{"1", "2", "3", "4"}},
		{"zero filter", ItemFilter{}, []string{"1", "2", "3", "4"}},
		{"category", ItemFilter{Category: "gameserver"}, []string{"2", "3"}},
		{"category alias", ItemFilter{Category: "discord server"}, []string{"1"}},
		{"subcategory ignores case", ItemFilter{Category: "gameserver", Subcategory: "Minecraft"}, []string{"2"}},
		{"query and category", ItemFilter{Query: "minecraft", Category: "game"}, []string{"4"}},
		{"query and subcategory", ItemFilter{Query: "roleplay", Subcategory: "gta5"}, []string{"3"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(items, tt.filter)
			if err != nil {
				t.Fatalf("Filter failed: %v", err)
			}
			if ids := itemIDs(got); !slices.Equal(ids, tt.want) {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		if _, err := Filter(items, ItemFilter{Category: "movies"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Featured", func(t *testing.T) {
		if got := itemIDs(Featured(items)); !slices.Equal(got, []string{"1", "2"}) {
			t.Errorf("unexpected featured items %v", got)
		}
	})
}

func TestFilterServers(t *testing.T) {
	servers := mustLoad(t).Servers

	tc := []struct {
		name     string
		query    string
		category string
		want     []string
	}{
		{"name match", "minecraft", "", []string{"3"}},
		{"case folded accent", "CAFÉ", "", []string{"4"}},
		{"category only", "", "gaming", []string{"2", "3"}},
		{"category spelling", "", "Advertising", []string{"1", "6"}},
		{"query within category", "reload", "gaming", []string{"2"}},
		{"all", "", All, serverIDs(servers)},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterServers(servers, tt.query, tt.category)
			if err != nil {
				t.Fatalf("FilterServers failed: %v", err)
			}
			if ids := serverIDs(got); !slices.Equal(ids, tt.want) {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		if _, err := FilterServers(servers, "", "music"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Promoted", func(t *testing.T) {
		if got := serverIDs(Promoted(servers)); !slices.Equal(got, []string{"1", "2", "4"}) {
			t.Errorf("unexpected promoted order %v", got)
		}
	})
}

func TestSubcategoryLabel(t *testing.T) {
	tc := map[string]string{
		"minecraft":    "Minecraft",
		"gta5":         "Gta5",
		"Jeu Officiel": "Jeu Officiel",
		"all":          "All",
	}
	for in, want := range tc {
		if got := SubcategoryLabel(in); got != want {
			t.Errorf("SubcategoryLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
