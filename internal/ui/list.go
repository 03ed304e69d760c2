package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/reload/internal/models"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track   models.Track
	current bool
	playing bool
}

func (i trackItem) FilterValue() string { return i.track.Title }

func (i trackItem) Title() string {
	switch {
	case i.current && i.playing:
		return "▶ " + i.track.Title
	case i.current:
		return "⏸ " + i.track.Title
	default:
		return i.track.Title
	}
}

func (i trackItem) Description() string {
	return fmt.Sprintf("%s • %s", i.track.Artist, i.track.SourceURL)
}

// trackItems builds list items, marking the current track.
func trackItems(playlist []models.Track, state models.PlaybackState) []list.Item {
	items := make([]list.Item, len(playlist))
	for i, t := range playlist {
		items[i] = trackItem{track: t, current: t.ID == state.CurrentTrackID, playing: state.IsPlaying}
	}
	return items
}
