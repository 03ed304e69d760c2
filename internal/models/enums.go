package models

import (
	"fmt"
	"strings"
)

// Category classifies a [CommunityEntry].
type Category int

const (
	CategoryGaming Category = iota + 1
	CategoryCommunity
	CategoryAdvertising
	CategoryOther
)

// Categories lists every [Category] in display order.
var Categories = []Category{CategoryGaming, CategoryCommunity, CategoryAdvertising, CategoryOther}

func (c Category) String() string {
	switch c {
	case CategoryGaming:
		return "gaming"
	case CategoryCommunity:
		return "community"
	case CategoryAdvertising:
		return "advertising"
	case CategoryOther:
		return "other"
	default:
		return ""
	}
}

// Label returns the display label.
func (c Category) Label() string {
	switch c {
	case CategoryGaming:
		return "Gaming"
	case CategoryCommunity:
		return "Community"
	case CategoryAdvertising:
		return "Advertising"
	case CategoryOther:
		return "Other"
	default:
		return ""
	}
}

// ParseCategory accepts tags and display labels in any case.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gaming":
		return CategoryGaming, nil
	case "community":
		return CategoryCommunity, nil
	case "advertising":
		return CategoryAdvertising, nil
	case "other":
		return CategoryOther, nil
	default:
		return 0, fmt.Errorf("unknown server category %q", s)
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if c.String() == "" {
		return nil, fmt.Errorf("invalid server category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// PromotionTier is the sponsorship level of a promoted server. The zero value means not promoted.
type PromotionTier int

const (
	TierNone PromotionTier = iota
	TierBasic
	TierPremium
	TierUltimate
)

// Tiers lists the purchasable tiers in ascending order.
var Tiers = []PromotionTier{TierBasic, TierPremium, TierUltimate}

func (t PromotionTier) String() string {
	switch t {
	case TierNone:
		return ""
	case TierBasic:
		return "basic"
	case TierPremium:
		return "premium"
	case TierUltimate:
		return "ultimate"
	default:
		return ""
	}
}

// Label returns the badge label.
func (t PromotionTier) Label() string {
	switch t {
	case TierNone:
		return ""
	case TierBasic:
		return "Boosted"
	case TierPremium:
		return "Premium"
	case TierUltimate:
		return "Ultimate"
	default:
		return ""
	}
}

// BadgeColor returns the hex colour of the promotion badge.
func (t PromotionTier) BadgeColor() string {
	switch t {
	case TierNone:
		return ""
	case TierBasic:
		return "#A78BFA"
	case TierPremium:
		return "#FACC15"
	case TierUltimate:
		return "#34D399"
	default:
		return ""
	}
}

// ParsePromotionTier accepts tier names in any case; an empty string is [TierNone].
func ParsePromotionTier(s string) (PromotionTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TierNone, nil
	case "basic":
		return TierBasic, nil
	case "premium":
		return TierPremium, nil
	case "ultimate":
		return TierUltimate, nil
	default:
		return 0, fmt.Errorf("unknown promotion tier %q", s)
	}
}

func (t PromotionTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PromotionTier) UnmarshalText(text []byte) error {
	parsed, err := ParsePromotionTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ItemCategory classifies a [CatalogItem].
type ItemCategory int

const (
	ItemGame ItemCategory = iota + 1
	ItemDiscord
	ItemGameServer
)

// ItemCategories lists every [ItemCategory] in display order.
var ItemCategories = []ItemCategory{ItemGame, ItemDiscord, ItemGameServer}

func (c ItemCategory) String() string {
	switch c {
	case ItemGame:
		return "game"
	case ItemDiscord:
		return "discord"
	case ItemGameServer:
		return "gameserver"
	default:
		return ""
	}
}

// Label returns the display label.
func (c ItemCategory) Label() string {
	switch c {
	case ItemGame:
		return "Games"
	case ItemDiscord:
		return "Discord Servers"
	case ItemGameServer:
		return "Game Servers"
	default:
		return ""
	}
}

// ParseItemCategory accepts names in any case plus the "discord server" and "game server" spellings.
func ParseItemCategory(s string) (ItemCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "game", "games":
		return ItemGame, nil
	case "discord", "discord server", "discord servers":
		return ItemDiscord, nil
	case "gameserver", "game server", "game servers":
		return ItemGameServer, nil
	default:
		return 0, fmt.Errorf("unknown catalog category %q", s)
	}
}

func (c ItemCategory) MarshalText() ([]byte, error) {
	if c.String() == "" {
		return nil, fmt.Errorf("invalid catalog category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *ItemCategory) UnmarshalText(text []byte) error {
	parsed, err := ParseItemCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
