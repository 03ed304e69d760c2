package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/reload/internal/catalog"
	"github.com/desertthunder/reload/internal/identity"
	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/ranking"
	"github.com/desertthunder/reload/internal/shared"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageNames = []string{"home", "login", "servers", "ranked", "about", "shop", "radio", "catalog", "notifications"}

var funcs = template.FuncMap{
	"price": func(p float64) string {
		if p == 0 {
			return "Gratuit"
		}
		return strings.Replace(fmt.Sprintf("%.2f €", p), ".", ",", 1)
	},
	"percent": func(v float64) int {
		return int(v*100 + 0.5)
	},
	"members":          formatCount,
	"subcategoryLabel": catalog.SubcategoryLabel,
	"add":              func(a, b int) int { return a + b },
}

// page is the data every template receives.
type page struct {
	Title     string
	Path      string
	User      *models.User
	Unread    int
	Notices   []shared.Notice
	Federated bool
	Data      any
}

func parsePages() (map[string]*template.Template, error) {
	files, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "layout.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// render executes a page into a buffer first so template errors never produce half a page.
func (a *App) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	t, ok := a.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	user, _ := UserFrom(r.Context())
	view := page{
		Title:     title,
		Path:      r.URL.Path,
		User:      user,
		Notices:   a.popFlash(w, r),
		Federated: a.dir.FederatedEnabled(),
		Data:      data,
	}
	if p, ok := PrincipalFrom(r.Context()); ok {
		n, err := a.dir.UnreadCount(r.Context(), p.UID)
		if err != nil {
			a.logger.Warn("failed to count notifications", "user", p.UID, "error", err)
		}
		view.Unread = n
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", view); err != nil {
		a.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type homeData struct {
	Promoted []models.CommunityEntry
	Podium   []ranking.Ranked
	Featured []models.CatalogItem
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	ranked := ranking.Rank(a.catalog.Servers, a.weights)
	a.render(w, r, http.StatusOK, "home", "Reload", homeData{
		Promoted: catalog.Promoted(a.catalog.Servers),
		Podium:   ranking.Top(ranked, 3),
		Featured: catalog.Featured(a.catalog.Items),
	})
}

type loginData struct {
	Next        string
	MinPassword int
}

func (a *App) loginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFrom(r.Context()); ok {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
		return
	}
	a.render(w, r, http.StatusOK, "login", "Connexion", loginData{
		Next:        r.URL.Query().Get("next"),
		MinPassword: identity.MinPasswordLength,
	})
}

type serversData struct {
	Query      string
	Category   string
	Categories []models.Category
	Promoted   []models.CommunityEntry
	Servers    []models.CommunityEntry
	Error      string
}

func (a *App) servers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := serversData{
		Query:      q.Get("q"),
		Category:   q.Get("category"),
		Categories: models.Categories,
		Promoted:   catalog.Promoted(a.catalog.Servers),
	}

	status := http.StatusOK
	entries, err := catalog.FilterServers(a.catalog.Servers, data.Query, data.Category)
	if err != nil {
		status = statusFor(err)
		data.Error = "Unknown category."
		data.Category = ""
		entries = a.catalog.Servers
	}
	data.Servers = entries

	a.render(w, r, status, "servers", "Serveurs", data)
}

type rankedData struct {
	Podium     []ranking.Ranked
	Entries    []ranking.Ranked
	Pagination ranking.Pagination
}

func (a *App) ranked(w http.ResponseWriter, r *http.Request) {
	ranked := ranking.Rank(a.catalog.Servers, a.weights)
	entries, pagination := ranking.Page(ranked, pageParam(r), a.cfg.Ranking.PerPage)
	a.render(w, r, http.StatusOK, "ranked", "Classement", rankedData{
		Podium:     ranking.Top(ranked, 3),
		Entries:    entries,
		Pagination: pagination,
	})
}

func (a *App) about(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "about", "À propos", nil)
}

func (a *App) shop(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "shop", "Boutique", a.catalog.Products)
}

type catalogData struct {
	Filter        catalog.ItemFilter
	Categories    []models.ItemCategory
	Subcategories []string
	Featured      []models.CatalogItem
	Items         []models.CatalogItem
	Error         string
}

func (a *App) catalogPage(w http.ResponseWriter, r *http.Request) {
	filter := itemFilter(r)
	data := catalogData{
		Filter:     filter,
		Categories: models.ItemCategories,
		Featured:   catalog.Featured(a.catalog.Items),
	}
	if cat, err := models.ParseItemCategory(filter.Category); err == nil {
		data.Subcategories = a.catalog.Subcategories(cat)
	}

	status := http.StatusOK
	items, err := catalog.Filter(a.catalog.Items, filter)
	if err != nil {
		status = statusFor(err)
		data.Error = "Unknown category."
		items = a.catalog.Items
	}
	data.Items = items

	a.render(w, r, status, "catalog", "Catalogue", data)
}

type radioData struct {
	Snapshot playback.Snapshot
	Current  models.Track
	Playing  bool
}

func (a *App) radio(w http.ResponseWriter, r *http.Request) {
	snap := stationFrom(r).Controller.Snapshot()
	current, _ := snap.Current()
	a.render(w, r, http.StatusOK, "radio", "Radio", radioData{
		Snapshot: snap,
		Current:  current,
		Playing:  snap.State.IsPlaying,
	})
}

func (a *App) notifications(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	list, err := a.dir.Notifications(r.Context(), p.UID)
	if err != nil {
		a.logger.Error("failed to list notifications", "user", p.UID, "error", err)
		http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
		return
	}
	a.render(w, r, http.StatusOK, "notifications", "Notifications", list)
}

func (a *App) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	if err := a.dir.MarkRead(r.Context(), p.UID); err != nil {
		a.logger.Error("failed to mark notifications read", "user", p.UID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}

func itemFilter(r *http.Request) catalog.ItemFilter {
	q := r.URL.Query()
	return catalog.ItemFilter{
		Query:       q.Get("q"),
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
	}
}

func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return n
}

// formatCount renders a member count with thin grouping, as in "12 500".
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(c)
	}
	return b.String()
}
