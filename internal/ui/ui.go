package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/ranking"
	"github.com/desertthunder/reload/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RadioView ViewState = iota
	AddTrackView
	RankView
)

// VolumeStep is the change applied by the louder and quieter keys.
const VolumeStep = 0.1

// Model represents the TUI application state.
type Model struct {
	view       ViewState
	controller *playback.Controller
	snaps      <-chan playback.Snapshot
	cancel     func()
	notices    <-chan shared.Notice
	snapshot   playback.Snapshot
	ranked     []ranking.Ranked
	playlist   list.Model
	input      textinput.Model
	notice     *shared.Notice
	width      int
	height     int
	help       help.Model
	keys       keyMap
}

// NewModel creates a TUI over c. Servers are ranked once for the leaderboard view.
func NewModel(c *playback.Controller, notices <-chan shared.Notice, servers []models.CommunityEntry, w ranking.Weights) *Model {
	snaps, cancel := c.Subscribe()

	input := textinput.New()
	input.Placeholder = "https://youtu.be/..."
	input.CharLimit = 200

	playlist := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	playlist.Title = "Playlist"
	playlist.SetFilteringEnabled(false)
	playlist.SetShowHelp(false)

	m := &Model{
		view:       RadioView,
		controller: c,
		snaps:      snaps,
		cancel:     cancel,
		notices:    notices,
		ranked:     ranking.Rank(servers, w),
		playlist:   playlist,
		input:      input,
		help:       help.New(),
		keys:       newKeyMap(),
	}
	m.apply(c.Snapshot())
	return m
}

// Close cancels the snapshot subscription.
func (m *Model) Close() {
	m.cancel()
}

// Init starts listening for snapshots and notices.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.snaps), waitForNotice(m.notices))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlist.SetSize(msg.Width-4, max(msg.Height-12, 4))
		return m, nil

	case snapshotMsg:
		m.apply(playback.Snapshot(msg))
		return m, waitForSnapshot(m.snaps)

	case noticeMsg:
		n := shared.Notice(msg)
		m.notice = &n
		return m, waitForNotice(m.notices)

	case closedMsg:
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RadioView:
			return m.handleRadioKeys(msg)
		case AddTrackView:
			return m.handleAddKeys(msg)
		case RankView:
			return m.handleRankKeys(msg)
		}
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RadioView:
		return m.renderRadio()
	case AddTrackView:
		return m.renderAdd()
	case RankView:
		return m.renderRank()
	default:
		return ""
	}
}

func (m *Model) apply(s playback.Snapshot) {
	m.snapshot = s
	m.playlist.SetItems(trackItems(s.Playlist, s.State))
}

func (m *Model) selected() (models.Track, bool) {
	if item, ok := m.playlist.SelectedItem().(trackItem); ok {
		return item.track, true
	}
	return models.Track{}, false
}

func (m *Model) handleRadioKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = nil

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if t, ok := m.selected(); ok {
			m.report(m.controller.Play(t))
		}
	case key.Matches(msg, m.keys.toggle):
		m.toggle()
	case key.Matches(msg, m.keys.next):
		m.controller.Next()
	case key.Matches(msg, m.keys.previous):
		m.controller.Previous()
	case key.Matches(msg, m.keys.louder):
		m.controller.SetVolume(m.controller.State().Volume + VolumeStep)
	case key.Matches(msg, m.keys.quieter):
		m.controller.SetVolume(m.controller.State().Volume - VolumeStep)
	case key.Matches(msg, m.keys.mute):
		m.controller.ToggleMute()
	case key.Matches(msg, m.keys.remove):
		if t, ok := m.selected(); ok {
			m.report(m.controller.RemoveTrack(t.ID))
		}
	case key.Matches(msg, m.keys.add):
		m.view = AddTrackView
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.tab):
		m.view = RankView
	default:
		var cmd tea.Cmd
		m.playlist, cmd = m.playlist.Update(msg)
		return m, cmd
	}

	m.apply(m.controller.Snapshot())
	return m, nil
}

// toggle pauses a playing track, resumes the current one, or starts the selected one.
func (m *Model) toggle() {
	state := m.controller.State()
	if state.IsPlaying {
		m.controller.Pause()
		return
	}
	if current, ok := m.controller.Current(); ok {
		m.report(m.controller.Play(current))
		return
	}
	if t, ok := m.selected(); ok {
		m.report(m.controller.Play(t))
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.notice = &shared.Notice{Kind: shared.NoticeError, Message: err.Error()}
	}
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.input.Blur()
		m.view = RadioView
		return m, nil
	case tea.KeyEnter:
		track, err := m.controller.AddTrack(models.Track{SourceURL: m.input.Value()})
		if err != nil {
			m.notice = &shared.Notice{Kind: shared.NoticeError, Message: "Invalid YouTube URL"}
			return m, nil
		}
		m.notice = &shared.Notice{Kind: shared.NoticeSuccess, Message: fmt.Sprintf("Added %q", track.Title)}
		m.input.Blur()
		m.view = RadioView
		m.apply(m.controller.Snapshot())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleRankKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab), key.Matches(msg, m.keys.back):
		m.view = RadioView
	}
	return m, nil
}

func (m *Model) renderRadio() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Reload Radio"))
	b.WriteString("\n")
	b.WriteString(m.nowPlaying())
	b.WriteString("\n")
	b.WriteString(volumeBar(m.snapshot.State))
	b.WriteString("\n\n")
	b.WriteString(m.playlist.View())
	b.WriteString("\n")
	if m.notice != nil {
		b.WriteString(styles.notice(*m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView([]key.Binding{
		m.keys.enter, m.keys.toggle, m.keys.next, m.keys.previous,
		m.keys.mute, m.keys.add, m.keys.remove, m.keys.tab, m.keys.quit,
	}))
	return b.String()
}

func (m *Model) nowPlaying() string {
	current, ok := m.snapshot.Current()
	if !ok {
		return styles.help.Render("Nothing playing")
	}

	icon := "⏸"
	if m.snapshot.State.IsPlaying {
		icon = "▶"
	}
	line := fmt.Sprintf("%s %s - %s", icon, current.Title, current.Artist)
	if m.snapshot.State.Buffering {
		line += styles.help.Render(" (loading)")
	}
	return styles.ok.Render(line)
}

// volumeBar renders the volume as ten cells and a percentage.
func volumeBar(s models.PlaybackState) string {
	if s.Muted() {
		return "Vol " + styles.warn.Render("muted")
	}
	filled := int(s.Volume*10 + 0.5)
	return fmt.Sprintf("Vol %s%s %d%%", strings.Repeat("█", filled), strings.Repeat("░", 10-filled), int(s.Volume*100+0.5))
}

func (m *Model) renderAdd() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Add a track"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.notice != nil {
		b.WriteString(styles.notice(*m.notice))
		b.WriteString("\n")
	}
	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{submit, m.keys.back}))
	return b.String()
}

func (m *Model) renderRank() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Leaderboard"))
	b.WriteString("\n")

	for _, r := range m.ranked {
		marker := r.Badge().Symbol()
		if marker == "" {
			marker = fmt.Sprintf("%d.", r.Rank)
		}
		line := fmt.Sprintf("%-3s %-28s %6d members  boost %-2d  %d pts", marker, r.Name, r.MemberCount, r.BoostLevel, r.Score)
		b.WriteString(badge(r.Badge(), line))
		if t := tier(r.PromotionTier); t != "" {
			b.WriteString(" ")
			b.WriteString(t)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.tab, m.keys.quit}))
	return b.String()
}
