package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/shared"
)

// All selects every category or subcategory in a filter.
const All = "all"

// ItemFilter narrows the secondary catalog. Empty or [All] fields do not constrain.
type ItemFilter struct {
	Query       string
	Category    string
	Subcategory string
}

// folded returns s with Unicode case folding applied. A [cases.Caser] is stateful, so one is made per call.
func folded(s string) string {
	return cases.Fold().String(s)
}

func containsFolded(haystack, needle string) bool {
	return strings.Contains(folded(haystack), needle)
}

func unconstrained(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, All)
}

// SubcategoryLabel title-cases a subcategory for display.
func SubcategoryLabel(s string) string {
	if strings.EqualFold(s, All) {
		return "All"
	}
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// Search returns items whose name, description or any tag contains query, ignoring case.
// Order is kept; a blank query returns every item.
func Search(items []models.CatalogItem, query string) []models.CatalogItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	needle := folded(query)

	var out []models.CatalogItem
	for _, item := range items {
		if matchesItem(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matchesItem(item models.CatalogItem, needle string) bool {
	if containsFolded(item.Name, needle) || containsFolded(item.Description, needle) {
		return true
	}
	for _, tag := range item.Tags {
		if containsFolded(tag, needle) {
			return true
		}
	}
	return false
}

// Filter applies the query and the category and subcategory predicates together.
//
// An unknown category is an error wrapping [shared.ErrInvalidInput].
func Filter(items []models.CatalogItem, f ItemFilter) ([]models.CatalogItem, error) {
	var category models.ItemCategory
	if !unconstrained(f.Category) {
		parsed, err := models.ParseItemCategory(f.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		}
		category = parsed
	}

	var out []models.CatalogItem
	for _, item := range Search(items, f.Query) {
		if category != 0 && item.Category != category {
			continue
		}
		if !unconstrained(f.Subcategory) && !strings.EqualFold(item.Subcategory, strings.TrimSpace(f.Subcategory)) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Featured returns the featured items in order.
func Featured(items []models.CatalogItem) []models.CatalogItem {
	var out []models.CatalogItem
	for _, item := range items {
		if item.Featured {
			out = append(out, item)
		}
	}
	return out
}

// FilterServers matches query against server names and descriptions, optionally restricted to one category.
func FilterServers(entries []models.CommunityEntry, query, category string) ([]models.CommunityEntry, error) {
	var cat models.Category
	if !unconstrained(category) {
		parsed, err := models.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		}
		cat = parsed
	}

	needle := folded(strings.TrimSpace(query))

	var out []models.CommunityEntry
	for _, e := range entries {
		if cat != 0 && e.Category != cat {
			continue
		}
		if needle != "" && !containsFolded(e.Name, needle) && !containsFolded(e.Description, needle) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Promoted returns the promoted servers, highest tier first. Equal tiers keep their order.
func Promoted(entries []models.CommunityEntry) []models.CommunityEntry {
	var out []models.CommunityEntry
	for _, tier := range []models.PromotionTier{models.TierUltimate, models.TierPremium, models.TierBasic, models.TierNone} {
		for _, e := range entries {
			if e.Promoted && e.PromotionTier == tier {
				out = append(out, e)
			}
		}
	}
	return out
}
