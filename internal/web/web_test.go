package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/reload/internal/catalog"
	"github.com/desertthunder/reload/internal/identity"
	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/shared"
)

func newTestApp(t *testing.T, configure func(*shared.Config)) *App {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := shared.NewLogger(io.Discard)
	dir, err := identity.NewDirectory(db, identity.DirectoryOptions{
		Secret:   []byte("test-secret"),
		HashCost: bcrypt.MinCost,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	cfg := shared.DefaultConfig()
	cfg.Auth.LoginRate = 0
	if configure != nil {
		configure(cfg)
	}

	app, err := New(Options{Config: cfg, Directory: dir, Catalog: cat, Logger: logger})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func serve(h http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func form(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return c
		}
	}
	return nil
}

func register(t *testing.T, h http.Handler, email string) *http.Cookie {
	t.Helper()
	rec := serve(h, form("/register", url.Values{"email": {email}, "password": {"hunter22"}, "name": {"Jean"}}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("register: expected 303, got %d", rec.Code)
	}
	c := cookieNamed(rec, "reload_session")
	if c == nil {
		t.Fatal("register: expected a session cookie")
	}
	return c
}

func TestAuthGate(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()

	t.Run("anonymous visitors are sent to login", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/servers", nil))
		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fservers" {
			t.Errorf("unexpected redirect %q", loc)
		}
	})

	t.Run("signed-in visitors see the directory", func(t *testing.T) {
		session := register(t, h, "jean@example.com")

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/servers", nil), session)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Reload Gaming") {
			t.Error("expected server listing")
		}
	})

	t.Run("forged cookies are ignored", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/servers", nil), &http.Cookie{Name: "reload_session", Value: "forged"})
		if rec.Code != http.StatusFound {
			t.Errorf("expected 302, got %d", rec.Code)
		}
	})

	t.Run("login page redirects once signed in", func(t *testing.T) {
		session := register(t, h, "ana@example.com")
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/login?next=/ranked", nil), session)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/ranked" {
			t.Errorf("expected redirect to /ranked, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})
}

func TestNotifications(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()

	t.Run("anonymous visitors have no bell", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		if strings.Contains(rec.Body.String(), `class="bell"`) {
			t.Error("bell should only show when signed in")
		}

		rec = serve(h, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		if rec.Code != http.StatusFound {
			t.Errorf("expected 302, got %d", rec.Code)
		}
		rec = serve(h, httptest.NewRequest(http.MethodPost, "/notifications/read", nil))
		if rec.Code != http.StatusFound {
			t.Errorf("expected 302, got %d", rec.Code)
		}
	})

	t.Run("bell counts unread notifications until read", func(t *testing.T) {
		session := register(t, h, "bell@example.com")

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil), session)
		if !strings.Contains(rec.Body.String(), `<span class="badge">1</span>`) {
			t.Fatal("expected an unread badge of 1")
		}

		rec = serve(h, httptest.NewRequest(http.MethodGet, "/notifications", nil), session)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Welcome to Reload") || !strings.Contains(body, "notification unread") {
			t.Error("expected the unread welcome notification")
		}

		rec = serve(h, httptest.NewRequest(http.MethodPost, "/notifications/read", nil), session)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/notifications" {
			t.Fatalf("expected redirect to /notifications, got %d %q", rec.Code, rec.Header().Get("Location"))
		}

		rec = serve(h, httptest.NewRequest(http.MethodGet, "/notifications", nil), session)
		body = rec.Body.String()
		if strings.Contains(body, `class="badge"`) || strings.Contains(body, "notification unread") {
			t.Error("expected no unread notifications after marking read")
		}
		if !strings.Contains(body, "Welcome to Reload") {
			t.Error("read notifications stay listed")
		}
	})
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()
	register(t, h, "jean@example.com")

	t.Run("valid credentials follow next", func(t *testing.T) {
		rec := serve(h, form("/login", url.Values{"email": {"jean@example.com"}, "password": {"hunter22"}, "next": {"/servers?q=pub"}}))
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/servers?q=pub" {
			t.Errorf("unexpected redirect %q", loc)
		}
		if cookieNamed(rec, "reload_session") == nil {
			t.Error("expected session cookie")
		}
	})

	t.Run("off-site next is ignored", func(t *testing.T) {
		rec := serve(h, form("/login", url.Values{"email": {"jean@example.com"}, "password": {"hunter22"}, "next": {"//evil.example"}}))
		if loc := rec.Header().Get("Location"); loc != "/servers" {
			t.Errorf("expected /servers, got %q", loc)
		}
	})

	t.Run("failure flashes a notice", func(t *testing.T) {
		rec := serve(h, form("/login", url.Values{"email": {"jean@example.com"}, "password": {"nope"}}))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
		if cookieNamed(rec, "reload_session") != nil {
			t.Error("failed login must not set a session")
		}
		flash := cookieNamed(rec, flashCookie)
		if flash == nil {
			t.Fatal("expected flash cookie")
		}

		page := serve(h, httptest.NewRequest(http.MethodGet, "/login", nil), flash)
		if !strings.Contains(page.Body.String(), "Sign-in failed. Check your credentials.") {
			t.Error("expected flashed notice on the login page")
		}
		if !strings.Contains(page.Body.String(), "notice-error") {
			t.Error("expected error styling")
		}
	})

	t.Run("taken email on register", func(t *testing.T) {
		rec := serve(h, form("/register", url.Values{"email": {"jean@example.com"}, "password": {"hunter22"}}))
		if rec.Header().Get("Location") != "/login" {
			t.Errorf("expected redirect to /login, got %q", rec.Header().Get("Location"))
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		session := register(t, h, "bob@example.com")
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/logout", nil), session)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}

		after := serve(h, httptest.NewRequest(http.MethodGet, "/servers", nil), session)
		if after.Code != http.StatusFound {
			t.Errorf("expected revoked session to be redirected, got %d", after.Code)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		limited := newTestApp(t, func(c *shared.Config) {
			c.Auth.LoginRate = 0.001
			c.Auth.LoginBurst = 1
		}).Handler()

		values := url.Values{"email": {"x@example.com"}, "password": {"whatever"}}
		first := serve(limited, form("/login", values))
		second := serve(limited, form("/login", values))
		if first.Code != http.StatusSeeOther || second.Code != http.StatusTooManyRequests {
			t.Errorf("expected 303 then 429, got %d then %d", first.Code, second.Code)
		}
	})
}

func TestFederatedRoutes(t *testing.T) {
	h := newTestApp(t, nil).Handler()

	t.Run("unconfigured provider", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/auth/federated", nil))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("callback without matching state", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/auth/callback?state=a&code=b", nil), &http.Cookie{Name: stateCookie, Value: "other"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPages(t *testing.T) {
	h := newTestApp(t, nil).Handler()

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, "Reload Ta Pub"},
		{"/login", http.StatusOK, "Créer un compte"},
		{"/ranked", http.StatusOK, "🏆"},
		{"/ranked?page=99", http.StatusOK, "Page 1 / 1"},
		{"/about", http.StatusOK, "À propos"},
		{"/shop", http.StatusOK, "Gratuit"},
		{"/radio", http.StatusOK, "/ws/player"},
		{"/radio", http.StatusOK, `<div id="notices" role="status"`},
		{"/catalog?q=MINECRAFT", http.StatusOK, "Block Party"},
		{"/catalog?category=bogus", http.StatusBadRequest, "Unknown category."},
		{"/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("expected body to contain %q", tt.want)
			}
		})
	}

	t.Run("wrong method", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/ranked", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) playback.Snapshot {
	t.Helper()
	var snap playback.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	return snap
}

func TestPlayerAPI(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()

	first := serve(h, httptest.NewRequest(http.MethodGet, "/api/player", nil))
	listener := cookieNamed(first, listenerCookie)
	if listener == nil {
		t.Fatal("expected a listener cookie")
	}
	initial := decodeSnapshot(t, first)
	if len(initial.Playlist) != 5 || initial.State.HasTrack() {
		t.Fatalf("unexpected initial snapshot %+v", initial)
	}

	controller := app.Stations().Get(listener.Value).Controller
	call := func(req *http.Request) *httptest.ResponseRecorder { return serve(h, req, listener) }

	t.Run("invalid track URL is rejected", func(t *testing.T) {
		rec := call(jsonRequest(http.MethodPost, "/api/player/tracks", `{"url":"not a url"}`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if got := len(controller.Playlist()); got != 5 {
			t.Errorf("expected playlist length 5, got %d", got)
		}
	})

	t.Run("valid track is appended", func(t *testing.T) {
		rec := call(jsonRequest(http.MethodPost, "/api/player/tracks", `{"url":"https://youtu.be/dQw4w9WgXcQ","title":"Never"}`))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if got := len(controller.Playlist()); got != 6 {
			t.Errorf("expected playlist length 6, got %d", got)
		}
	})

	t.Run("play starts the first track", func(t *testing.T) {
		snap := decodeSnapshot(t, call(jsonRequest(http.MethodPost, "/api/player/play", "")))
		if snap.State.CurrentTrackID != snap.Playlist[0].ID || !snap.State.Buffering {
			t.Errorf("unexpected state %+v", snap.State)
		}

		rec := call(jsonRequest(http.MethodPost, "/api/player/events", `{"kind":"ready","seq":0}`))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if controller.State().Buffering {
			t.Error("expected ready to clear buffering")
		}
	})

	t.Run("unknown track", func(t *testing.T) {
		rec := call(jsonRequest(http.MethodPost, "/api/player/play", `{"id":"nope"}`))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("bad event", func(t *testing.T) {
		rec := call(jsonRequest(http.MethodPost, "/api/player/events", `{"kind":"state","state":"rewinding"}`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("next and previous", func(t *testing.T) {
		before := controller.State().CurrentTrackID
		call(jsonRequest(http.MethodPost, "/api/player/next", ""))
		snap := decodeSnapshot(t, call(jsonRequest(http.MethodPost, "/api/player/previous", "")))
		if snap.State.CurrentTrackID != before {
			t.Errorf("expected round trip to %s, got %s", before, snap.State.CurrentTrackID)
		}
	})

	t.Run("volume and mute", func(t *testing.T) {
		snap := decodeSnapshot(t, call(jsonRequest(http.MethodPost, "/api/player/volume", `{"volume":1.7}`)))
		if snap.State.Volume != 1 {
			t.Errorf("expected clamped volume 1, got %v", snap.State.Volume)
		}

		muted := decodeSnapshot(t, call(jsonRequest(http.MethodPost, "/api/player/mute", "")))
		restored := decodeSnapshot(t, call(jsonRequest(http.MethodPost, "/api/player/mute", "")))
		if muted.State.Volume != 0 || restored.State.Volume != 1 {
			t.Errorf("expected 0 then 1, got %v then %v", muted.State.Volume, restored.State.Volume)
		}

		rec := call(jsonRequest(http.MethodPost, "/api/player/volume", `{}`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 without volume, got %d", rec.Code)
		}
	})

	t.Run("pause", func(t *testing.T) {
		snap := decodeSnapshot(t, call(jsonRequest(http.MethodPost, "/api/player/pause", "")))
		if snap.State.IsPlaying {
			t.Error("expected paused")
		}
	})

	t.Run("remove track", func(t *testing.T) {
		id := controller.Playlist()[1].ID
		rec := call(httptest.NewRequest(http.MethodDelete, "/api/player/tracks/"+id, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := len(decodeSnapshot(t, rec).Playlist); got != 5 {
			t.Errorf("expected 5 tracks, got %d", got)
		}

		missing := call(httptest.NewRequest(http.MethodDelete, "/api/player/tracks/"+id, nil))
		if missing.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", missing.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := call(jsonRequest(http.MethodPost, "/api/player/tracks", `{"url":`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPlayerStations(t *testing.T) {
	t.Run("listeners do not share a playlist", func(t *testing.T) {
		app := newTestApp(t, nil)
		h := app.Handler()

		mine := cookieNamed(serve(h, httptest.NewRequest(http.MethodGet, "/radio", nil)), listenerCookie)
		if mine == nil {
			t.Fatal("expected the radio page to issue a listener cookie")
		}
		serve(h, jsonRequest(http.MethodPost, "/api/player/play", ""), mine)

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/player", nil))
		stranger := cookieNamed(rec, listenerCookie)
		if stranger == nil || stranger.Value == mine.Value {
			t.Fatalf("expected a distinct listener cookie, got %+v", stranger)
		}
		for _, track := range decodeSnapshot(t, rec).Playlist {
			serve(h, httptest.NewRequest(http.MethodDelete, "/api/player/tracks/"+track.ID, nil), stranger)
		}
		serve(h, jsonRequest(http.MethodPost, "/api/player/pause", ""), stranger)

		if got := len(decodeSnapshot(t, serve(h, httptest.NewRequest(http.MethodGet, "/api/player", nil), stranger)).Playlist); got != 0 {
			t.Errorf("expected the stranger's own playlist to be empty, got %d", got)
		}

		snap := decodeSnapshot(t, serve(h, httptest.NewRequest(http.MethodGet, "/api/player", nil), mine))
		if len(snap.Playlist) != 5 {
			t.Errorf("expected my 5 tracks to survive, got %d", len(snap.Playlist))
		}
		if !snap.State.IsPlaying {
			t.Error("another visitor's pause must not stop my playback")
		}
	})

	t.Run("a known cookie keeps its station", func(t *testing.T) {
		app := newTestApp(t, nil)
		h := app.Handler()
		listener := &http.Cookie{Name: listenerCookie, Value: "tab-owner"}

		serve(h, jsonRequest(http.MethodPost, "/api/player/tracks", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`), listener)
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/player", nil), listener)
		if cookieNamed(rec, listenerCookie) != nil {
			t.Error("an existing listener should not get a new cookie")
		}
		if got := len(decodeSnapshot(t, rec).Playlist); got != 6 {
			t.Errorf("expected 6 tracks, got %d", got)
		}
		if app.Stations().Len() != 1 {
			t.Errorf("expected one station, got %d", app.Stations().Len())
		}
	})
}

func TestStationNotices(t *testing.T) {
	app := newTestApp(t, nil)
	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	cookie := listenerCookie + "=tab-owner"
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/player", http.Header{"Cookie": {cookie}})
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()
	hub := app.Stations().Get("tab-owner").Hub
	waitFor(t, func() bool { return hub.Clients() == 1 })

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/player/tracks", strings.NewReader(`{"url":"not a url"}`))
	req.Header.Set("Cookie", cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	m := readMessage(t, conn, MsgNotice)
	if m.Notice == nil || m.Notice.Kind != shared.NoticeError || m.Notice.Message != "Invalid YouTube URL" {
		t.Errorf("unexpected notice %+v", m.Notice)
	}
}

func TestStations(t *testing.T) {
	newTestStations := func(t *testing.T, cfg shared.PlayerConfig) (*Stations, *time.Time) {
		t.Helper()
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		cat, err := catalog.Load()
		if err != nil {
			t.Fatalf("failed to load catalog: %v", err)
		}
		s := newStations(ctx, cfg, cat.Songs, shared.NewLogger(io.Discard))
		t.Cleanup(s.Close)

		clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return clock }
		return s, &clock
	}

	t.Run("idle stations are swept", func(t *testing.T) {
		s, clock := newTestStations(t, shared.PlayerConfig{DefaultVolume: 0.8, MuteFallback: 0.5, IdleTimeoutMinutes: 10})
		s.Get("old")
		*clock = clock.Add(8 * time.Minute)
		s.Get("recent")
		*clock = clock.Add(5 * time.Minute)

		if n := s.Sweep(); n != 1 {
			t.Errorf("expected 1 station closed, got %d", n)
		}
		if s.Len() != 1 {
			t.Errorf("expected 1 station left, got %d", s.Len())
		}
	})

	t.Run("the least recently used station is evicted when full", func(t *testing.T) {
		s, clock := newTestStations(t, shared.PlayerConfig{DefaultVolume: 0.8, MuteFallback: 0.5, MaxListeners: 2})
		a := s.Get("a")
		*clock = clock.Add(time.Minute)
		s.Get("b")
		*clock = clock.Add(time.Minute)
		s.Get("a")
		*clock = clock.Add(time.Minute)
		s.Get("c")

		if s.Len() != 2 {
			t.Fatalf("expected 2 stations, got %d", s.Len())
		}
		if s.Get("a") != a {
			t.Error("recently used station should be kept")
		}
	})

	t.Run("stations start at the configured volume", func(t *testing.T) {
		s, _ := newTestStations(t, shared.PlayerConfig{DefaultVolume: 0.3, MuteFallback: 0.5})
		if v := s.Get("x").Controller.State().Volume; v != 0.3 {
			t.Errorf("expected volume 0.3, got %v", v)
		}
	})
}

func TestListingAPI(t *testing.T) {
	h := newTestApp(t, nil).Handler()

	t.Run("ranked servers", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/servers/ranked", nil))
		var body struct {
			Entries []struct {
				Name  string `json:"name"`
				Rank  int    `json:"rank"`
				Score int    `json:"score"`
				Badge string `json:"badge"`
			} `json:"entries"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if body.Pagination.Total != 7 || len(body.Entries) != 7 {
			t.Fatalf("expected 7 entries, got %d/%d", len(body.Entries), body.Pagination.Total)
		}
		first := body.Entries[0]
		if first.Name != "Reload Ta Pub" || first.Rank != 1 || first.Score != 1380 || first.Badge != "gold" {
			t.Errorf("unexpected leader %+v", first)
		}
		if body.Entries[3].Badge != "standard" {
			t.Errorf("expected standard badge at rank 4, got %s", body.Entries[3].Badge)
		}
	})

	t.Run("server by id", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/servers/1", nil))
		var entry struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&entry); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if entry.Name != "Reload Ta Pub" {
			t.Errorf("unexpected server %+v", entry)
		}

		rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/servers/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("catalog search", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/catalog?q=minecraft", nil))
		var items []struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if len(items) != 2 || items[0].ID != "2" || items[1].ID != "4" {
			t.Errorf("unexpected items %+v", items)
		}

		bad := serve(h, httptest.NewRequest(http.MethodGet, "/api/catalog?category=bogus", nil))
		if bad.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", bad.Code)
		}

		empty := serve(h, httptest.NewRequest(http.MethodGet, "/api/catalog?q=zzzz", nil))
		if strings.TrimSpace(empty.Body.String()) != "[]" {
			t.Errorf("expected empty array, got %q", empty.Body.String())
		}
	})
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{0: "0", 95: "95", 1240: "1 240", 1234567: "1 234 567"}
	for n, want := range tests {
		if got := formatCount(n); got != want {
			t.Errorf("formatCount(%d) = %q, want %q", n, got, want)
		}
	}
}
