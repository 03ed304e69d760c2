package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/ranking"
	"github.com/desertthunder/reload/internal/shared"
)

var styles = NewPalette("#9333EA", "#04B575", "#FF0000", "#FFA500", "#626262")

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var _ Painter = (*Palette)(nil)

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// notice renders a notice in the colour of its kind.
func (p *Palette) notice(n shared.Notice) string {
	switch n.Kind {
	case shared.NoticeError:
		return p.err.Render(n.Message)
	case shared.NoticeSuccess:
		return p.ok.Render(n.Message)
	default:
		return p.warn.Render(n.Message)
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// badge renders s in the colour of a podium badge.
func badge(b ranking.Badge, s string) string {
	style := NewStyle(b.Color())
	if b != ranking.BadgeStandard {
		style = style.Bold(true)
	}
	return style.Render(s)
}

// tier renders a promotion tier label on its badge colour.
func tier(t models.PromotionTier) string {
	if t == models.TierNone {
		return ""
	}
	return styles.On(" "+t.Label()+" ", lipgloss.Color(t.BadgeColor()))
}
