package playback

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/shared"
)

const (
	DefaultVolume       = 0.8
	DefaultMuteFallback = 0.5
)

// Options configures a [Controller]. Zero fields take defaults.
type Options struct {
	Player       Player
	Notifier     shared.Notifier
	Logger       *log.Logger
	Volume       *float64 // initial volume; nil means [DefaultVolume]
	MuteFallback float64  // volume restored by unmute when no earlier level is known
}

// Snapshot is what observers receive after every change.
type Snapshot struct {
	State    models.PlaybackState `json:"state"`
	Playlist []models.Track       `json:"playlist"`
}

// Current returns the current track of the snapshot, if any.
func (s Snapshot) Current() (models.Track, bool) {
	for _, t := range s.Playlist {
		if t.ID == s.State.CurrentTrackID && t.ID != "" {
			return t, true
		}
	}
	return models.Track{}, false
}

// Controller owns the playlist and [models.PlaybackState].
type Controller struct {
	mu             sync.Mutex
	playlist       []models.Track
	currentID      string
	playing        bool
	buffering      bool
	volume         float64
	previousVolume float64
	muteFallback   float64
	seq            uint64
	errStreak      int

	player   Player
	notifier shared.Notifier
	logger   *log.Logger

	subs    map[int]chan Snapshot
	nextSub int
}

// New creates a controller over an initial playlist.
//
// Tracks whose source URL has no video id are dropped with a warning; empty or duplicate ids are replaced.
func New(playlist []models.Track, opts Options) *Controller {
	if opts.Player == nil {
		opts.Player = nopPlayer{}
	}
	if opts.Notifier == nil {
		opts.Notifier = shared.DiscardNotifier
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.MuteFallback <= 0 || opts.MuteFallback > 1 {
		opts.MuteFallback = DefaultMuteFallback
	}

	volume := DefaultVolume
	if opts.Volume != nil {
		volume = clamp(*opts.Volume)
	}

	c := &Controller{
		volume:       volume,
		muteFallback: opts.MuteFallback,
		player:       opts.Player,
		notifier:     opts.Notifier,
		logger:       shared.WithLogger(opts.Logger, "component", "playback"),
		subs:         map[int]chan Snapshot{},
	}
	if volume > 0 {
		c.previousVolume = volume
	}

	for _, t := range playlist {
		if _, err := ExtractVideoID(t.SourceURL); err != nil {
			c.logger.Warn("skipping track", "id", t.ID, "title", t.Title, "error", err)
			continue
		}
		c.playlist = append(c.playlist, c.normalize(t))
	}

	return c
}

// State returns a snapshot of the playback state.
func (c *Controller) State() models.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Playlist returns a copy of the playlist in play order.
func (c *Controller) Playlist() []models.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.playlist)
}

// Current returns the current track.
func (c *Controller) Current() (models.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(c.currentID); i >= 0 {
		return c.playlist[i], true
	}
	return models.Track{}, false
}

// Snapshot returns state and playlist taken under one lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that always holds the newest [Snapshot] after a change,
// and a function that cancels the subscription and closes the channel.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Snapshot, 1)
	c.subs[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Play makes track current and starts it. Playing the current track again only ensures it is playing.
func (c *Controller) Play(track models.Track) error {
	return c.PlayID(track.ID)
}

// PlayID is [Controller.Play] by track id.
func (c *Controller) PlayID(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errStreak = 0
	return c.playLocked(id)
}

// Pause stops playback; it does nothing when no track is loaded.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentID == "" {
		return
	}
	c.playing = false
	c.player.Pause()
	c.publishLocked()
}

// Next plays the track after the current one, wrapping to the first.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errStreak = 0
	c.stepLocked(1)
}

// Previous plays the track before the current one, wrapping to the last.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errStreak = 0
	c.stepLocked(-1)
}

// SetVolume clamps v to [0,1], applies it and returns the applied value.
func (c *Controller) SetVolume(v float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = clamp(v)
	if c.volume > 0 {
		c.previousVolume = c.volume
	}
	c.player.SetVolume(percent(c.volume))
	c.publishLocked()
	return c.volume
}

// ToggleMute mutes a non-zero volume, or restores the last non-zero volume.
func (c *Controller) ToggleMute() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.volume > 0 {
		c.previousVolume = c.volume
		c.volume = 0
	} else if c.previousVolume > 0 {
		c.volume = c.previousVolume
	} else {
		c.volume = c.muteFallback
	}
	c.player.SetVolume(percent(c.volume))
	c.publishLocked()
	return c.volume
}

// AddTrack validates the candidate's source URL and appends it to the playlist.
//
// Duplicates are allowed; the returned track carries the id it was stored under.
func (c *Controller) AddTrack(candidate models.Track) (models.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate.SourceURL = strings.TrimSpace(candidate.SourceURL)
	if _, err := ExtractVideoID(candidate.SourceURL); err != nil {
		c.notifier.Notify(shared.Notice{Kind: shared.NoticeError, Message: "Invalid YouTube URL"})
		return models.Track{}, err
	}

	track := c.normalize(candidate)
	c.playlist = append(c.playlist, track)
	c.logger.Debug("track added", "id", track.ID, "title", track.Title, "length", len(c.playlist))
	c.notifier.Notify(shared.Notice{Kind: shared.NoticeSuccess, Message: fmt.Sprintf("Added %q to the playlist", track.Title)})
	c.publishLocked()
	return track, nil
}

// RemoveTrack removes a track. When it was current, the track taking its place becomes current
// (wrapping to the first); removing the last track empties the player.
func (c *Controller) RemoveTrack(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	c.playlist = slices.Delete(c.playlist, i, i+1)

	if id == c.currentID {
		if len(c.playlist) == 0 {
			c.currentID = ""
			c.playing = false
			c.buffering = false
			c.seq++
			c.player.Pause()
		} else {
			next := i % len(c.playlist)
			c.currentID = c.playlist[next].ID
			c.loadLocked(next)
		}
	}

	c.publishLocked()
	return nil
}

// Dispatch routes a player [Event] to the matching handler.
func (c *Controller) Dispatch(ev Event) error {
	switch ev.Kind {
	case EventReady:
		c.HandleReady(ev.Seq)
	case EventStateChanged:
		st, err := ParsePlayerState(ev.State)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		}
		c.HandleStateChange(ev.Seq, st)
	case EventError:
		msg := ev.Message
		if msg == "" {
			msg = "unknown"
		}
		c.HandleError(ev.Seq, fmt.Errorf("%w: %s", shared.ErrPlayerFailed, msg))
	default:
		return fmt.Errorf("%w: unknown player event %q", shared.ErrInvalidInput, ev.Kind)
	}
	return nil
}

// HandleReady is called when the player finished cueing load seq.
func (c *Controller) HandleReady(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(seq) || c.currentID == "" {
		return
	}
	c.buffering = false
	c.player.SetVolume(percent(c.volume))
	if c.playing {
		c.player.Play()
	}
	c.publishLocked()
}

// HandleStateChange syncs the transport with the player; an ended track advances the playlist.
func (c *Controller) HandleStateChange(seq uint64, st PlayerState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(seq) || c.currentID == "" {
		return
	}

	// A transport change reported by one widget is echoed so every other widget follows it.
	switch st {
	case PlayerPlaying:
		if !c.playing {
			c.player.Play()
		}
		c.playing = true
		c.buffering = false
		c.errStreak = 0
		c.publishLocked()
	case PlayerPaused:
		if c.playing {
			c.player.Pause()
		}
		c.playing = false
		c.publishLocked()
	case PlayerEnded:
		c.logger.Debug("track ended", "id", c.currentID)
		c.stepLocked(1)
	}
}

// HandleError skips to the next track after a player error. When every track failed in a row,
// playback pauses instead of cycling.
func (c *Controller) HandleError(seq uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(seq) || c.currentID == "" {
		return
	}

	title := c.currentID
	if i := c.indexOf(c.currentID); i >= 0 {
		title = c.playlist[i].Title
	}
	c.errStreak++
	c.logger.Warn("player error", "track", title, "error", err, "streak", c.errStreak)

	if c.errStreak >= len(c.playlist) {
		c.playing = false
		c.buffering = false
		c.player.Pause()
		c.notifier.Notify(shared.Notice{Kind: shared.NoticeError, Message: "No playable track in the playlist"})
		c.publishLocked()
		return
	}

	c.notifier.Notify(shared.Notice{Kind: shared.NoticeError, Message: fmt.Sprintf("Could not play %q, skipping", title)})
	c.stepLocked(1)
}

func (c *Controller) playLocked(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}

	c.playing = true
	if id == c.currentID {
		if !c.buffering {
			c.player.Play()
		}
	} else {
		c.currentID = id
		c.loadLocked(i)
	}

	c.publishLocked()
	return nil
}

// stepLocked moves delta positions from the current track with wraparound and plays the result.
func (c *Controller) stepLocked(delta int) {
	n := len(c.playlist)
	i := c.indexOf(c.currentID)
	if n == 0 || i < 0 {
		return
	}
	next := ((i+delta)%n + n) % n
	_ = c.playLocked(c.playlist[next].ID)
}

// loadLocked cues playlist[i]; playback starts on the matching ready event.
func (c *Controller) loadLocked(i int) {
	c.seq++
	c.buffering = true
	videoID, _ := ExtractVideoID(c.playlist[i].SourceURL)
	c.logger.Debug("loading track", "id", c.playlist[i].ID, "video", videoID, "seq", c.seq)
	c.player.Load(c.seq, videoID)
}

func (c *Controller) stale(seq uint64) bool {
	return seq != 0 && seq != c.seq
}

func (c *Controller) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c.playlist, func(t models.Track) bool { return t.ID == id })
}

// normalize fills display defaults and guarantees a unique id.
func (c *Controller) normalize(t models.Track) models.Track {
	t.Title = strings.TrimSpace(t.Title)
	t.Artist = strings.TrimSpace(t.Artist)
	if t.Title == "" {
		t.Title = "Untitled"
	}
	if t.Artist == "" {
		t.Artist = "Unknown artist"
	}
	if t.CoverArtURL == "" {
		if videoID, err := ExtractVideoID(t.SourceURL); err == nil {
			t.CoverArtURL = ThumbnailURL(videoID)
		}
	}
	if t.ID == "" || c.indexOf(t.ID) >= 0 {
		t.ID = shared.GenerateID()
	}
	return t
}

func (c *Controller) stateLocked() models.PlaybackState {
	return models.PlaybackState{
		CurrentTrackID: c.currentID,
		IsPlaying:      c.playing && c.currentID != "",
		Volume:         c.volume,
		PreviousVolume: c.previousVolume,
		Buffering:      c.buffering,
		Phase:          models.PhaseOf(c.currentID, c.playing),
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{State: c.stateLocked(), Playlist: slices.Clone(c.playlist)}
}

// publishLocked hands the newest snapshot to every subscriber, replacing one not yet received.
func (c *Controller) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}

type nopPlayer struct{}

func (nopPlayer) Load(uint64, string) {}
func (nopPlayer) Play()               {}
func (nopPlayer) Pause()              {}
func (nopPlayer) SetVolume(int)       {}
