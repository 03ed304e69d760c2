// Package ranking orders community servers by a linear score of members and boosts.
//
// Every function here is pure: inputs are never mutated and equal inputs give equal output.
package ranking

import (
	"cmp"
	"slices"

	"github.com/desertthunder/reload/internal/models"
)

const (
	DefaultBoostWeight = 10
	DefaultPerPage     = 10
)

// Weights parameterizes [Score].
type Weights struct {
	BoostWeight int // score points per boost level
}

// DefaultWeights returns the weights used when none are configured.
func DefaultWeights() Weights {
	return Weights{BoostWeight: DefaultBoostWeight}
}

// Ranked is a server annotated with its 1-based position and score.
type Ranked struct {
	models.CommunityEntry
	Rank  int `json:"rank"`
	Score int `json:"score"`
}

// Badge is the podium marker shown next to a rank.
type Badge int

const (
	BadgeStandard Badge = iota
	BadgeGold
	BadgeSilver
	BadgeBronze
)

func (b Badge) String() string {
	switch b {
	case BadgeGold:
		return "gold"
	case BadgeSilver:
		return "silver"
	case BadgeBronze:
		return "bronze"
	case BadgeStandard:
		return "standard"
	default:
		return ""
	}
}

// Symbol returns the marker printed in exports and the terminal.
func (b Badge) Symbol() string {
	switch b {
	case BadgeGold:
		return "🏆"
	case BadgeSilver:
		return "🥈"
	case BadgeBronze:
		return "🥉"
	default:
		return ""
	}
}

// Color returns the badge colour as a hex string.
func (b Badge) Color() string {
	switch b {
	case BadgeGold:
		return "#EAB308"
	case BadgeSilver:
		return "#9CA3AF"
	case BadgeBronze:
		return "#B45309"
	case BadgeStandard:
		return "#9333EA"
	default:
		return ""
	}
}

// MarshalText renders the badge by name.
func (b Badge) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Score returns MemberCount + BoostLevel*BoostWeight.
func Score(e models.CommunityEntry, w Weights) int {
	return e.MemberCount + e.BoostLevel*w.BoostWeight
}

// Rank returns entries sorted by descending score. Ties keep their input order.
func Rank(entries []models.CommunityEntry, w Weights) []Ranked {
	ranked := make([]Ranked, len(entries))
	for i, e := range entries {
		ranked[i] = Ranked{CommunityEntry: e, Score: Score(e, w)}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Score, a.Score)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// BadgeFor returns the badge for a 1-based rank.
func BadgeFor(rank int) Badge {
	switch rank {
	case 1:
		return BadgeGold
	case 2:
		return BadgeSilver
	case 3:
		return BadgeBronze
	default:
		return BadgeStandard
	}
}

// Badge returns the badge of r.
func (r Ranked) Badge() Badge {
	return BadgeFor(r.Rank)
}

// Top returns at most n leading entries.
func Top(ranked []Ranked, n int) []Ranked {
	if n <= 0 {
		return nil
	}
	return ranked[:min(n, len(ranked))]
}

// Pagination describes one page of a ranked list.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// HasPrev reports whether a page precedes this one.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a page follows this one.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Page returns the 1-based page of ranked. Out-of-range pages are clamped; a non-positive
// perPage means [DefaultPerPage].
func Page(ranked []Ranked, page, perPage int) ([]Ranked, Pagination) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	total := len(ranked)
	pages := max(1, (total+perPage-1)/perPage)
	page = max(1, min(page, pages))

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return ranked[start:end], Pagination{Page: page, PerPage: perPage, TotalPages: pages, Total: total}
}
