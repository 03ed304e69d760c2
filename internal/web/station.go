package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/shared"
)

const (
	listenerCookie = "reload_listener"
	listenerMaxAge = 30 * 24 * time.Hour
	maxListenerID  = 64
)

// Station is one listener's radio: a playback controller and the hub its widgets connect to.
type Station struct {
	Controller *playback.Controller
	Hub        *Hub

	cancel   context.CancelFunc
	lastSeen time.Time
}

// Stations keeps one [Station] per listener cookie. Stations idle for longer than the
// configured timeout are closed, and the least recently used one is evicted when full.
type Stations struct {
	mu       sync.Mutex
	ctx      context.Context
	byID     map[string]*Station
	build    func(ctx context.Context) *Station
	idle     time.Duration
	capacity int
	now      func() time.Time
	logger   *log.Logger
}

func newStations(ctx context.Context, cfg shared.PlayerConfig, songs []models.Track, logger *log.Logger) *Stations {
	volume := cfg.DefaultVolume
	build := func(ctx context.Context) *Station {
		st := &Station{}
		st.Hub = NewHub(func(ev playback.Event) error { return st.Controller.Dispatch(ev) }, logger)
		st.Controller = playback.New(songs, playback.Options{
			Player:       st.Hub,
			Notifier:     st.Hub,
			Logger:       logger,
			Volume:       &volume,
			MuteFallback: cfg.MuteFallback,
		})

		ctx, st.cancel = context.WithCancel(ctx)
		go st.Hub.Watch(ctx, st.Controller)
		go st.Hub.Run(ctx)
		return st
	}

	return &Stations{
		ctx:      ctx,
		byID:     make(map[string]*Station),
		build:    build,
		idle:     cfg.IdleTimeout(),
		capacity: cfg.MaxListeners,
		now:      time.Now,
		logger:   shared.WithLogger(logger, "component", "stations"),
	}
}

// Get returns the station for id, creating it on first use.
func (s *Stations) Get(id string) *Station {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.byID[id]; ok {
		st.lastSeen = s.now()
		return st
	}

	if s.capacity > 0 && len(s.byID) >= s.capacity {
		s.evictOldestLocked()
	}
	st := s.build(s.ctx)
	st.lastSeen = s.now()
	s.byID[id] = st
	s.logger.Debug("station opened", "listeners", len(s.byID))
	return st
}

// Len returns the number of open stations.
func (s *Stations) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Sweep closes stations idle for longer than the timeout and returns how many it closed.
func (s *Stations) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)
	closed := 0
	for id, st := range s.byID {
		if st.lastSeen.Before(cutoff) {
			st.cancel()
			delete(s.byID, id)
			closed++
		}
	}
	return closed
}

// Close shuts every station down.
func (s *Stations) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.byID {
		st.cancel()
		delete(s.byID, id)
	}
}

func (s *Stations) evictOldestLocked() {
	var oldestID string
	var oldest *Station
	for id, st := range s.byID {
		if oldest == nil || st.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, st
		}
	}
	if oldest != nil {
		oldest.cancel()
		delete(s.byID, oldestID)
		s.logger.Info("evicted least recently used station")
	}
}

type stationKey struct{}

// listen attaches the caller's station to the request, issuing a listener cookie on first visit.
func (a *App) listen(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(listenerCookie); err == nil && c.Value != "" && len(c.Value) <= maxListenerID {
			id = c.Value
		} else {
			id = shared.GenerateID()
			http.SetCookie(w, &http.Cookie{
				Name:     listenerCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(listenerMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}

		st := a.stations.Get(id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), stationKey{}, st)))
	})
}

// stationFrom returns the station stored by [App.listen].
func stationFrom(r *http.Request) *Station {
	st, _ := r.Context().Value(stationKey{}).(*Station)
	return st
}

func (a *App) playerSocket(w http.ResponseWriter, r *http.Request) {
	stationFrom(r).Hub.ServeHTTP(w, r)
}
