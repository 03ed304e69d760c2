package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/reload/internal/catalog"
	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/ranking"
	"github.com/desertthunder/reload/internal/shared"
)

const maxBody = 1 << 16

var errEmptyPlaylist = fmt.Errorf("%w: playlist is empty", shared.ErrInvalidInput)

type apiError struct {
	Error string `json:"error"`
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("failed to write response", "error", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	a.writeJSON(w, statusFor(err), apiError{Error: err.Error()})
}

// decode reads an optional JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
}

func (a *App) snapshot(w http.ResponseWriter, c *playback.Controller) {
	a.writeJSON(w, http.StatusOK, c.Snapshot())
}

func (a *App) playerState(w http.ResponseWriter, r *http.Request) {
	a.snapshot(w, stationFrom(r).Controller)
}

// playerPlay plays the track named in the body, else resumes the current one, else starts the playlist.
func (a *App) playerPlay(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	var body struct {
		ID string `json:"id"`
	}
	if err := decode(r, &body); err != nil {
		a.writeError(w, err)
		return
	}

	id := body.ID
	if id == "" {
		if current, ok := c.Current(); ok {
			id = current.ID
		} else if playlist := c.Playlist(); len(playlist) > 0 {
			id = playlist[0].ID
		} else {
			a.writeError(w, errEmptyPlaylist)
			return
		}
	}

	if err := c.PlayID(id); err != nil {
		a.writeError(w, err)
		return
	}
	a.snapshot(w, c)
}

func (a *App) playerPause(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	c.Pause()
	a.snapshot(w, c)
}

func (a *App) playerNext(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	c.Next()
	a.snapshot(w, c)
}

func (a *App) playerPrevious(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	c.Previous()
	a.snapshot(w, c)
}

func (a *App) playerVolume(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	var body struct {
		Volume *float64 `json:"volume"`
	}
	if err := decode(r, &body); err != nil {
		a.writeError(w, err)
		return
	}
	if body.Volume == nil {
		a.writeError(w, fmt.Errorf("%w: volume", shared.ErrMissingArgument))
		return
	}
	c.SetVolume(*body.Volume)
	a.snapshot(w, c)
}

func (a *App) playerMute(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	c.ToggleMute()
	a.snapshot(w, c)
}

type trackRequest struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (a *App) playerAddTrack(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	var body trackRequest
	if err := decode(r, &body); err != nil {
		a.writeError(w, err)
		return
	}

	track, err := c.AddTrack(models.Track{
		Title:     body.Title,
		Artist:    body.Artist,
		SourceURL: body.URL,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, track)
}

func (a *App) playerRemoveTrack(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	if err := c.RemoveTrack(r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	a.snapshot(w, c)
}

// playerEvent accepts ready, state and error events from a widget that does not use the websocket.
func (a *App) playerEvent(w http.ResponseWriter, r *http.Request) {
	c := stationFrom(r).Controller
	var ev playback.Event
	if err := decode(r, &ev); err != nil {
		a.writeError(w, err)
		return
	}
	if err := c.Dispatch(ev); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rankedResponse struct {
	Entries    []rankedEntry      `json:"entries"`
	Pagination ranking.Pagination `json:"pagination"`
}

type rankedEntry struct {
	models.CommunityEntry
	Rank  int           `json:"rank"`
	Score int           `json:"score"`
	Badge ranking.Badge `json:"badge"`
}

func (a *App) apiRanked(w http.ResponseWriter, r *http.Request) {
	ranked := ranking.Rank(a.catalog.Servers, a.weights)
	entries, pagination := ranking.Page(ranked, pageParam(r), a.cfg.Ranking.PerPage)

	out := rankedResponse{Entries: make([]rankedEntry, 0, len(entries)), Pagination: pagination}
	for _, e := range entries {
		out.Entries = append(out.Entries, rankedEntry{
			CommunityEntry: e.CommunityEntry,
			Rank:           e.Rank,
			Score:          e.Score,
			Badge:          e.Badge(),
		})
	}
	a.writeJSON(w, http.StatusOK, out)
}

func (a *App) apiServer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, ok := a.catalog.Server(id)
	if !ok {
		a.writeError(w, fmt.Errorf("%w: %s", shared.ErrServerNotFound, id))
		return
	}
	a.writeJSON(w, http.StatusOK, entry)
}

func (a *App) apiCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := catalog.Filter(a.catalog.Items, itemFilter(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if items == nil {
		items = []models.CatalogItem{}
	}
	a.writeJSON(w, http.StatusOK, items)
}
