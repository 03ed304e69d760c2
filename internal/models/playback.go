package models

import "fmt"

// Track is a playable video reference with display metadata. Tracks are never mutated.
type Track struct {
	ID          string `json:"id" toml:"id"`
	Title       string `json:"title" toml:"title"`
	Artist      string `json:"artist" toml:"artist"`
	SourceURL   string `json:"source_url" toml:"url"`
	CoverArtURL string `json:"cover_art_url,omitempty" toml:"cover_art"`
}

// Phase is the coarse playback state derived from [PlaybackState].
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseLoadedPaused
	PhaseLoadedPlaying
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoadedPaused:
		return "paused"
	case PhaseLoadedPlaying:
		return "playing"
	default:
		return ""
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*p = PhaseEmpty
	case "paused":
		*p = PhaseLoadedPaused
	case "playing":
		*p = PhaseLoadedPlaying
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// PlaybackState is a snapshot of what is playing and how loud.
//
// CurrentTrackID is empty when nothing is loaded. Volume and PreviousVolume are within [0,1].
type PlaybackState struct {
	CurrentTrackID string  `json:"current_track_id,omitempty"`
	IsPlaying      bool    `json:"is_playing"`
	Volume         float64 `json:"volume"`
	PreviousVolume float64 `json:"previous_volume"`
	Buffering      bool    `json:"buffering"` // the player has not signalled ready for the current load
	Phase          Phase   `json:"phase"`
}

// HasTrack reports whether a track is loaded.
func (s PlaybackState) HasTrack() bool {
	return s.CurrentTrackID != ""
}

// Muted reports whether the volume is zero.
func (s PlaybackState) Muted() bool {
	return s.Volume == 0
}

// PhaseOf derives the [Phase] for the given state fields.
func PhaseOf(currentTrackID string, playing bool) Phase {
	switch {
	case currentTrackID == "":
		return PhaseEmpty
	case playing:
		return PhaseLoadedPlaying
	default:
		return PhaseLoadedPaused
	}
}
