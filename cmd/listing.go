package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/reload/internal/catalog"
	"github.com/desertthunder/reload/internal/formatter"
	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/ranking"
	"github.com/desertthunder/reload/internal/shared"
	"github.com/urfave/cli/v3"
)

// Rank prints the leaderboard or writes it to --output in the chosen --format.
func (r *Runner) Rank(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}

	ranked := ranking.Rank(cat.Servers, r.weights())
	if page := cmd.Int("page"); page > 0 {
		var p ranking.Pagination
		ranked, p = ranking.Page(ranked, page, r.config.Ranking.PerPage)
		r.logger.Debug("paginated leaderboard", "page", p.Page, "pages", p.TotalPages)
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(ranked, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("leaderboard exported", "format", format, "entries", len(ranked))
		return r.writePlain("✓ Leaderboard saved to %s\n", written)
	}

	data, err := formatter.Export(ranked, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// CatalogSearch lists catalog items matching the query argument and the category filters.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}

	items, err := catalog.Filter(cat.Items, catalog.ItemFilter{
		Query:       cmd.StringArg("query"),
		Category:    cmd.String("category"),
		Subcategory: cmd.String("subcategory"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if items == nil {
			return r.writeJSON([]any{}, true)
		}
		return r.writeJSON(items, true)
	}

	if len(items) == 0 {
		return r.writePlain("No items found\n")
	}

	r.writePlainHeader(fmt.Sprintf("Catalog (%d items)", len(items)))
	for _, item := range items {
		r.writePlain("%-4s %-32s %-16s ★ %.1f  %d downloads\n",
			item.ID, item.Name, item.Category.Label()+"/"+catalog.SubcategoryLabel(item.Subcategory), item.Rating, item.Downloads)
		if len(item.Tags) > 0 {
			r.writePlain("     #%s\n", strings.Join(item.Tags, " #"))
		}
	}
	return nil
}

// CatalogServers lists community servers matching the query argument.
func (r *Runner) CatalogServers(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}

	servers, err := catalog.FilterServers(cat.Servers, cmd.StringArg("query"), cmd.String("category"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if servers == nil {
			return r.writeJSON([]any{}, true)
		}
		return r.writeJSON(servers, true)
	}

	if len(servers) == 0 {
		return r.writePlain("No servers found\n")
	}

	r.writePlainHeader(fmt.Sprintf("Servers (%d)", len(servers)))
	for _, s := range servers {
		tier := ""
		if label := s.PromotionTier.Label(); label != "" {
			tier = " [" + label + "]"
		}
		r.writePlain("%-28s %-12s %6d members  boost %d%s\n", s.Name, s.Category.Label(), s.MemberCount, s.BoostLevel, tier)
	}
	return nil
}

// Shop lists the promotion products.
func (r *Runner) Shop(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}

	products := cat.Products
	if name := cmd.String("tier"); name != "" {
		tier, err := models.ParsePromotionTier(name)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		}
		product, ok := cat.ProductByTier(tier)
		if !ok {
			return fmt.Errorf("%w: no product for tier %q", shared.ErrInvalidInput, name)
		}
		products = []models.Product{product}
	}

	if cmd.Bool("json") {
		return r.writeJSON(products, true)
	}

	r.writePlainHeader("Boutique")
	for _, p := range products {
		popular := ""
		if p.Popular {
			popular = " ★ popular"
		}
		r.writePlain("%s - %.2f €%s\n", p.Name, p.Price, popular)
		if p.Description != "" {
			r.writePlain("  %s\n", p.Description)
		}
		for _, f := range p.Features {
			r.writePlain("  • %s\n", f)
		}
	}
	return nil
}
