package playback

import (
	"fmt"
	"strings"
	"sync"
)

// Player receives directives for the embedded video player.
//
// Implementations are called with the controller lock held and must not block or call back
// into the controller synchronously.
type Player interface {
	Load(seq uint64, videoID string) // cue a video; the player answers with a ready event tagged seq
	Play()
	Pause()
	SetVolume(percent int) // 0-100
}

// PlayerState is reported by the player when its transport changes.
type PlayerState int

const (
	PlayerPlaying PlayerState = iota + 1
	PlayerPaused
	PlayerEnded
)

func (s PlayerState) String() string {
	switch s {
	case PlayerPlaying:
		return "playing"
	case PlayerPaused:
		return "paused"
	case PlayerEnded:
		return "ended"
	default:
		return ""
	}
}

// ParsePlayerState parses "playing", "paused" or "ended".
func ParsePlayerState(s string) (PlayerState, error) {
	switch strings.ToLower(s) {
	case "playing":
		return PlayerPlaying, nil
	case "paused":
		return PlayerPaused, nil
	case "ended":
		return PlayerEnded, nil
	default:
		return 0, fmt.Errorf("unknown player state %q", s)
	}
}

// EventKind identifies a player event.
type EventKind string

const (
	EventReady        EventKind = "ready"
	EventStateChanged EventKind = "state"
	EventError        EventKind = "error"
)

// Event is a message from the player. Seq echoes the Load it refers to; zero means "current".
type Event struct {
	Kind    EventKind `json:"kind"`
	Seq     uint64    `json:"seq"`
	State   string    `json:"state,omitempty"`
	Message string    `json:"message,omitempty"`
}

// EchoPlayer acknowledges every load as ready without producing audio.
//
// The terminal radio uses it: transport and volume behave as with a real player.
type EchoPlayer struct {
	mu      sync.Mutex
	ready   func(seq uint64)
	videoID string
	playing bool
	volume  int
}

// Attach wires ready acknowledgements to c.
func (p *EchoPlayer) Attach(c *Controller) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = c.HandleReady
}

func (p *EchoPlayer) Load(seq uint64, videoID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.videoID = videoID
	p.playing = false
	if p.ready != nil {
		go p.ready(seq)
	}
}

func (p *EchoPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
}

func (p *EchoPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *EchoPlayer) SetVolume(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = percent
}

// Status returns the cued video, whether it is playing and the volume percentage.
func (p *EchoPlayer) Status() (videoID string, playing bool, volume int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.videoID, p.playing, p.volume
}
