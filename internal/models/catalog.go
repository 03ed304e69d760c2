package models

import (
	"fmt"
	"time"
)

// CommunityEntry is a listed Discord server.
//
// Ranking derives a transient rank from MemberCount and BoostLevel; it is never stored here.
type CommunityEntry struct {
	ID            string        `json:"id" toml:"id"`
	Name          string        `json:"name" toml:"name"`
	Description   string        `json:"description" toml:"description"`
	Category      Category      `json:"category" toml:"category"`
	InviteURL     string        `json:"invite_url" toml:"invite_url"`
	IconURL       string        `json:"icon_url" toml:"icon_url"`
	MemberCount   int           `json:"member_count" toml:"member_count"`
	BoostLevel    int           `json:"boost_level" toml:"boost_level"`
	Promoted      bool          `json:"promoted,omitempty" toml:"promoted"`
	PromotionTier PromotionTier `json:"promotion_tier,omitempty" toml:"promotion_tier"`
}

// Validate checks the invariants of an entry.
func (e CommunityEntry) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("server %q: missing id", e.Name)
	case e.Name == "":
		return fmt.Errorf("server %s: missing name", e.ID)
	case e.Category.String() == "":
		return fmt.Errorf("server %s: missing category", e.ID)
	case e.MemberCount < 0:
		return fmt.Errorf("server %s: negative member count", e.ID)
	case e.BoostLevel < 0:
		return fmt.Errorf("server %s: negative boost level", e.ID)
	case e.PromotionTier != TierNone && !e.Promoted:
		return fmt.Errorf("server %s: promotion tier set on a server that is not promoted", e.ID)
	}
	return nil
}

// CatalogItem is an entry of the secondary catalog, consumed only for search and display.
type CatalogItem struct {
	ID           string       `json:"id" toml:"id"`
	Name         string       `json:"name" toml:"name"`
	Description  string       `json:"description" toml:"description"`
	Category     ItemCategory `json:"category" toml:"category"`
	Subcategory  string       `json:"subcategory" toml:"subcategory"`
	ThumbnailURL string       `json:"thumbnail_url" toml:"thumbnail_url"`
	DownloadURL  string       `json:"download_url" toml:"download_url"`
	Author       string       `json:"author" toml:"author"`
	Rating       float64      `json:"rating" toml:"rating"`
	Downloads    int          `json:"downloads" toml:"downloads"`
	DateAdded    time.Time    `json:"date_added" toml:"date_added"`
	Tags         []string     `json:"tags" toml:"tags"`
	Featured     bool         `json:"featured" toml:"featured"`
}

// Validate checks the invariants of an item.
func (i CatalogItem) Validate() error {
	switch {
	case i.ID == "":
		return fmt.Errorf("catalog item %q: missing id", i.Name)
	case i.Category.String() == "":
		return fmt.Errorf("catalog item %s: missing category", i.ID)
	case i.Rating < 0 || i.Rating > 5:
		return fmt.Errorf("catalog item %s: rating %v outside [0,5]", i.ID, i.Rating)
	case i.Downloads < 0:
		return fmt.Errorf("catalog item %s: negative downloads", i.ID)
	}
	return nil
}

// Product is a boost package sold in the boutique.
type Product struct {
	Tier        PromotionTier `json:"tier" toml:"tier"`
	Name        string        `json:"name" toml:"name"`
	Description string        `json:"description" toml:"description"`
	Price       float64       `json:"price" toml:"price"`
	Features    []string      `json:"features" toml:"features"`
	Popular     bool          `json:"popular,omitempty" toml:"popular"`
}

// ID returns the product identifier, which is its tier name.
func (p Product) ID() string {
	return p.Tier.String()
}

// Free reports whether the product costs nothing.
func (p Product) Free() bool {
	return p.Price == 0
}

// User is the normalized identity principal exposed to pages.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}
