package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/shared"
)

// snapshotMsg carries the newest controller snapshot.
type snapshotMsg playback.Snapshot

// noticeMsg carries a notice raised by the controller.
type noticeMsg shared.Notice

// closedMsg reports that a source channel was closed.
type closedMsg struct{}

// Notices is a buffered [shared.Notifier] feeding the TUI. Notices are dropped when nobody reads.
type Notices chan shared.Notice

// NewNotices creates a notifier with room for n pending notices.
func NewNotices(n int) Notices {
	return make(Notices, n)
}

func (n Notices) Notify(notice shared.Notice) {
	select {
	case n <- notice:
	default:
	}
}

func waitForSnapshot(ch <-chan playback.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(s)
	}
}

func waitForNotice(ch <-chan shared.Notice) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return noticeMsg(n)
	}
}
