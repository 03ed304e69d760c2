// package formatter exports the community leaderboard to CSV, Markdown, JSON and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/reload/internal/ranking"
	"github.com/desertthunder/reload/internal/shared"
)

// Format names an export format accepted by [Export].
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every supported format in the order they are documented.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat resolves a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// Export renders ranked in format f.
func Export(ranked []ranking.Ranked, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return ExportToText(ranked)
	case FormatMarkdown:
		return ExportToMarkdown(ranked)
	case FormatCSV:
		return ExportToCSV(ranked)
	case FormatJSON:
		return ExportToJSON(ranked)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, f)
	}
}

// ExportToCSV converts a leaderboard to CSV with columns: Rank, Name, Category, Members, Boost, Score, Badge, Tier, Invite
func ExportToCSV(ranked []ranking.Ranked) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Name", "Category", "Members", "Boost", "Score", "Badge", "Tier", "Invite"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range ranked {
		record := []string{
			strconv.Itoa(r.Rank),
			r.Name,
			r.Category.String(),
			strconv.Itoa(r.MemberCount),
			strconv.Itoa(r.BoostLevel),
			strconv.Itoa(r.Score),
			r.Badge().String(),
			r.PromotionTier.String(),
			r.InviteURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the leaderboard as a Markdown table.
func ExportToMarkdown(ranked []ranking.Ranked) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Leaderboard\n\n")
	buf.WriteString(fmt.Sprintf("**Servers**: %d\n\n", len(ranked)))

	buf.WriteString("| Rank | Server | Category | Members | Boost | Score |\n")
	buf.WriteString("| ---: | --- | --- | ---: | ---: | ---: |\n")
	for _, r := range ranked {
		name := escapeCell(r.Name)
		if r.InviteURL != "" {
			name = fmt.Sprintf("[%s](%s)", name, r.InviteURL)
		}
		if label := r.PromotionTier.Label(); label != "" {
			name += fmt.Sprintf(" _%s_", label)
		}
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %d | %d |\n",
			marker(r), name, r.Category.Label(), r.MemberCount, r.BoostLevel, r.Score))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a leaderboard to plain text format
func ExportToText(ranked []ranking.Ranked) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Leaderboard: %d servers\n\n", len(ranked)))
	for _, r := range ranked {
		buf.WriteString(fmt.Sprintf("%s %s (%d members, boost %d) %d pts\n",
			marker(r), r.Name, r.MemberCount, r.BoostLevel, r.Score))
	}

	return buf.Bytes(), nil
}

type jsonEntry struct {
	ranking.Ranked
	Badge ranking.Badge `json:"badge"`
}

// ExportToJSON writes the leaderboard as an indented JSON array with badges.
func ExportToJSON(ranked []ranking.Ranked) ([]byte, error) {
	entries := make([]jsonEntry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, jsonEntry{Ranked: r, Badge: r.Badge()})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders ranked and writes it to path.
//
// Defaults to leaderboard.{ext} when path is empty. Returns the path written.
func WriteExport(ranked []ranking.Ranked, f Format, path string) (string, error) {
	if path == "" {
		path = "leaderboard." + f.Extension()
	}

	data, err := Export(ranked, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

func marker(r ranking.Ranked) string {
	if s := r.Badge().Symbol(); s != "" {
		return s
	}
	return strconv.Itoa(r.Rank) + "."
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
