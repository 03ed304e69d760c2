package ui

import (
	"io"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/ranking"
	"github.com/desertthunder/reload/internal/shared"
	tu "github.com/desertthunder/reload/internal/testing"
)

var tracks = []models.Track{
	{ID: "a", Title: "Reload Jingle", Artist: "Reload", SourceURL: "https://youtu.be/0ycrBHxbolE"},
	{ID: "b", Title: "Lofi Study", Artist: "Reload Music", SourceURL: "https://youtu.be/jfKfPfyJRdk"},
	{ID: "c", Title: "Chill Beats", Artist: "Reload Music", SourceURL: "https://youtu.be/rUxyKA_-grg"},
}

var servers = []models.CommunityEntry{
	{ID: "1", Name: "Small", Category: models.CategoryOther, MemberCount: 10},
	{ID: "2", Name: "Boosted", Category: models.CategoryGaming, MemberCount: 5, BoostLevel: 1, Promoted: true, PromotionTier: models.TierPremium},
	{ID: "3", Name: "Big", Category: models.CategoryCommunity, MemberCount: 0, BoostLevel: 2},
}

func newTestModel(t *testing.T) (*Model, *playback.Controller) {
	t.Helper()
	c := playback.New(tracks, playback.Options{Logger: shared.NewLogger(io.Discard)})
	m := NewModel(c, nil, servers, ranking.DefaultWeights())
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, c
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestModel(t *testing.T) {
	t.Run("lists the playlist", func(t *testing.T) {
		m, _ := newTestModel(t)
		if got := len(m.playlist.Items()); got != 3 {
			t.Fatalf("expected 3 items, got %d", got)
		}
		if !strings.Contains(m.View(), "Nothing playing") {
			t.Error("expected empty now-playing line")
		}
	})

	t.Run("enter plays the selected track", func(t *testing.T) {
		m, c := newTestModel(t)
		press(m, "down", "enter")

		current, ok := c.Current()
		if !ok || current.ID != "b" {
			t.Fatalf("expected b to be current, got %+v", current)
		}
		if !strings.Contains(m.View(), "Lofi Study - Reload Music") {
			t.Error("expected now-playing line")
		}
	})

	t.Run("keys reach the player", func(t *testing.T) {
		player := &tu.MockPlayer{}
		c := playback.New(tracks, playback.Options{Player: player, Logger: shared.NewLogger(io.Discard)})
		m := NewModel(c, nil, servers, ranking.DefaultWeights())
		t.Cleanup(m.Close)

		press(m, "enter")
		load, ok := player.LastLoad()
		if !ok || load.VideoID != "0ycrBHxbolE" {
			t.Fatalf("expected the first track to load, got %+v", load)
		}

		press(m, "m")
		calls := player.Calls()
		if last := calls[len(calls)-1]; last.Op != "volume" || last.Volume != 0 {
			t.Errorf("expected mute to send volume 0, got %+v", last)
		}
	})

	t.Run("transport keys", func(t *testing.T) {
		m, c := newTestModel(t)
		press(m, "enter", "n")
		if current, _ := c.Current(); current.ID != "b" {
			t.Errorf("expected b after next, got %s", current.ID)
		}
		press(m, "b", "b")
		if current, _ := c.Current(); current.ID != "c" {
			t.Errorf("expected wraparound to c, got %s", current.ID)
		}

		press(m, " ")
		if c.State().IsPlaying {
			t.Error("expected space to pause")
		}
		press(m, "p")
		if !c.State().IsPlaying {
			t.Error("expected p to resume")
		}
	})

	t.Run("volume keys", func(t *testing.T) {
		m, c := newTestModel(t)
		press(m, "-")
		if v := c.State().Volume; math.Abs(v-0.7) > 1e-9 {
			t.Errorf("expected 0.7, got %v", v)
		}
		press(m, "+", "+", "+", "+")
		if v := c.State().Volume; v != 1 {
			t.Errorf("expected clamp at 1, got %v", v)
		}

		press(m, "m")
		if !c.State().Muted() || !strings.Contains(m.View(), "muted") {
			t.Error("expected muted")
		}
		press(m, "m")
		if v := c.State().Volume; v != 1 {
			t.Errorf("expected unmute to restore 1, got %v", v)
		}
	})

	t.Run("add track", func(t *testing.T) {
		m, c := newTestModel(t)
		press(m, "a")
		if m.view != AddTrackView {
			t.Fatal("expected add view")
		}

		m.input.SetValue("not a url")
		press(m, "enter")
		if m.view != AddTrackView || len(c.Playlist()) != 3 {
			t.Error("invalid URL must keep the view and the playlist")
		}
		if m.notice == nil || m.notice.Kind != shared.NoticeError {
			t.Error("expected an error notice")
		}

		m.input.SetValue("https://youtu.be/dQw4w9WgXcQ")
		press(m, "enter")
		if m.view != RadioView || len(c.Playlist()) != 4 || len(m.playlist.Items()) != 4 {
			t.Errorf("expected 4 tracks back in the radio view, got %d", len(c.Playlist()))
		}

		press(m, "a", "esc")
		if m.view != RadioView {
			t.Error("esc should return to the radio")
		}
	})

	t.Run("remove track", func(t *testing.T) {
		m, c := newTestModel(t)
		press(m, "d")
		playlist := c.Playlist()
		if len(playlist) != 2 || playlist[0].ID != "b" {
			t.Errorf("expected a to be removed, got %+v", playlist)
		}
	})

	t.Run("leaderboard", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "tab")
		if m.view != RankView {
			t.Fatal("expected leaderboard view")
		}

		view := m.View()
		big, boosted, small := strings.Index(view, "Big"), strings.Index(view, "Boosted"), strings.Index(view, "Small")
		if big < 0 || !(big < boosted && boosted < small) {
			t.Errorf("expected Big, Boosted, Small order in\n%s", view)
		}
		if !strings.Contains(view, "🏆") || !strings.Contains(view, "Premium") {
			t.Error("expected badges and tier label")
		}

		press(m, "esc")
		if m.view != RadioView {
			t.Error("esc should return to the radio")
		}
	})

	t.Run("follows snapshots and notices", func(t *testing.T) {
		m, c := newTestModel(t)
		c.PlayID("c")

		_, cmd := m.Update(snapshotMsg(c.Snapshot()))
		if cmd == nil {
			t.Error("expected to keep waiting for snapshots")
		}
		if !strings.Contains(m.View(), "Chill Beats - Reload Music") {
			t.Error("expected view to follow the snapshot")
		}

		m.Update(noticeMsg{Kind: shared.NoticeError, Message: "Could not play"})
		if !strings.Contains(m.View(), "Could not play") {
			t.Error("expected notice in view")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, _ := newTestModel(t)
		cmd := press(m, "q")
		if cmd == nil {
			t.Fatal("expected a command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected quit")
		}
	})
}

func TestNotices(t *testing.T) {
	n := NewNotices(1)
	n.Notify(shared.Notice{Message: "first"})
	n.Notify(shared.Notice{Message: "dropped"})

	msg := waitForNotice(n)()
	if got := shared.Notice(msg.(noticeMsg)); got.Message != "first" {
		t.Errorf("expected first, got %s", got.Message)
	}
}

func TestVolumeBar(t *testing.T) {
	tests := []struct {
		volume float64
		want   string
	}{
		{1, "██████████ 100%"},
		{0.8, "████████░░ 80%"},
		{0.05, "█░░░░░░░░░ 5%"},
	}
	for _, tt := range tests {
		if got := volumeBar(models.PlaybackState{Volume: tt.volume}); !strings.Contains(got, tt.want) {
			t.Errorf("volumeBar(%v) = %q, want %q", tt.volume, got, tt.want)
		}
	}
	if got := volumeBar(models.PlaybackState{}); !strings.Contains(got, "muted") {
		t.Errorf("expected muted, got %q", got)
	}
}
