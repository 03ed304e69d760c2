// Package web serves the server-rendered site: the community directory, leaderboard, boutique,
// secondary catalog and radio page, plus the JSON player API and the player websocket.
//
// # Routes
//
//	GET  /                       → home: promoted servers and the podium
//	GET  /login                  → sign-in and registration forms
//	POST /login, /register       → password sign-in and sign-up (rate limited per client)
//	POST /logout                 → revoke the session token
//	GET  /auth/federated         → start Google sign-in
//	GET  /auth/callback          → finish Google sign-in
//	GET  /servers                → directory (requires a session; redirects to /login)
//	GET  /ranked                 → paginated leaderboard
//	GET  /shop, /catalog, /about → static pages over the catalog data
//	GET  /radio                  → player widget
//	GET  /ws/player              → player websocket
//	     /api/...                → JSON player commands and read-only listings
//
// # Sessions
//
// A successful sign-in stores a signed session token in an HttpOnly cookie. Every request is run
// through [App.authenticate], which verifies the token against the identity directory and puts the
// principal in the request context. Notices produced by form posts survive the redirect in a
// short-lived flash cookie.
//
// # Player
//
// Every browser gets its own [Station], keyed by an HttpOnly listener cookie, so one visitor's
// commands never reach another's playlist. A station's [playback.Player] is its [Hub]: directives
// are broadcast to that listener's widgets (one per open tab), which answer with events over the
// same websocket or through POST /api/player/events. Idle stations are swept by [App.Run].
package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reload/internal/catalog"
	"github.com/desertthunder/reload/internal/identity"
	"github.com/desertthunder/reload/internal/ranking"
	"github.com/desertthunder/reload/internal/server"
	"github.com/desertthunder/reload/internal/shared"
)

const sweepInterval = time.Minute

// Options configures an [App].
type Options struct {
	Config    *shared.Config
	Directory *identity.Directory
	Catalog   *catalog.Catalog // nil loads [catalog.Default]
	Logger    *log.Logger
}

// App holds the dependencies shared by every handler.
type App struct {
	cfg      *shared.Config
	dir      *identity.Directory
	catalog  *catalog.Catalog
	stations *Stations
	stop     context.CancelFunc
	limiter  *server.RateLimiter
	weights  ranking.Weights
	pages    map[string]*template.Template
	logger   *log.Logger
}

// New builds the application. Listener stations start from the catalog songs.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Directory == nil {
		return nil, fmt.Errorf("%w: identity directory is required", shared.ErrMissingArgument)
	}
	if opts.Catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		opts.Catalog = c
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	ctx, stop := context.WithCancel(context.Background())
	a := &App{
		cfg:     opts.Config,
		dir:     opts.Directory,
		catalog: opts.Catalog,
		limiter: server.NewLoginLimiter(opts.Config.Auth),
		weights: ranking.Weights{BoostWeight: opts.Config.Ranking.BoostWeight},
		pages:   pages,
		logger:  shared.WithLogger(opts.Logger, "component", "web"),
		stop:    stop,
	}
	a.stations = newStations(ctx, opts.Config.Player, opts.Catalog.Songs, opts.Logger)

	return a, nil
}

// Stations returns the per-listener radio stations.
func (a *App) Stations() *Stations {
	return a.stations
}

// Run sweeps idle stations until ctx is cancelled, then closes the app.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.stations.Sweep(); n > 0 {
				a.logger.Debug("closed idle stations", "count", n, "open", a.stations.Len())
			}
		}
	}
}

// Close shuts down every station and its widgets.
func (a *App) Close() {
	a.stations.Close()
	a.stop()
}

// Handler builds the route table.
func (a *App) Handler() http.Handler {
	r := server.NewBasicRouter()
	r.Use(server.Recover(a.logger), server.Logging(a.logger), a.authenticate)

	r.HandleFunc("GET", "/{$}", a.home)
	r.HandleFunc("GET", "/login", a.loginPage)
	r.HandleFunc("GET", "/about", a.about)
	r.HandleFunc("GET", "/ranked", a.ranked)
	r.HandleFunc("GET", "/shop", a.shop)
	r.HandleFunc("GET", "/catalog", a.catalogPage)
	r.HandleFunc("GET", "/radio", a.radio, a.listen)
	r.HandleFunc("GET", "/servers", a.servers, a.requireAuth)
	r.HandleFunc("GET", "/notifications", a.notifications, a.requireAuth)
	r.HandleFunc("POST", "/notifications/read", a.markNotificationsRead, a.requireAuth)

	r.HandleFunc("POST", "/login", a.login, a.limiter.Middleware)
	r.HandleFunc("POST", "/register", a.register, a.limiter.Middleware)
	r.HandleFunc("POST", "/logout", a.logout)
	r.HandleFunc("GET", "/auth/federated", a.federated)
	r.HandleFunc("GET", server.CallbackPath, a.federatedCallback)

	r.HandleFunc("GET", "/ws/player", a.playerSocket, a.listen)
	r.HandleFunc("GET", "/api/player", a.playerState, a.listen)
	r.HandleFunc("POST", "/api/player/play", a.playerPlay, a.listen)
	r.HandleFunc("POST", "/api/player/pause", a.playerPause, a.listen)
	r.HandleFunc("POST", "/api/player/next", a.playerNext, a.listen)
	r.HandleFunc("POST", "/api/player/previous", a.playerPrevious, a.listen)
	r.HandleFunc("POST", "/api/player/volume", a.playerVolume, a.listen)
	r.HandleFunc("POST", "/api/player/mute", a.playerMute, a.listen)
	r.HandleFunc("POST", "/api/player/tracks", a.playerAddTrack, a.listen)
	r.HandleFunc("DELETE", "/api/player/tracks/{id}", a.playerRemoveTrack, a.listen)
	r.HandleFunc("POST", "/api/player/events", a.playerEvent, a.listen)
	r.HandleFunc("GET", "/api/servers/ranked", a.apiRanked)
	r.HandleFunc("GET", "/api/servers/{id}", a.apiServer)
	r.HandleFunc("GET", "/api/catalog", a.apiCatalog)

	return r
}
