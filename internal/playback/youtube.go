package playback

import (
	"fmt"
	"regexp"

	"github.com/desertthunder/reload/internal/shared"
)

// videoIDPattern matches the id following watch?v=, &v=, youtu.be/, embed/, v/ or u/<x>/.
// The id must end the path, so "youtu.be/<id>/more" is rejected.
var videoIDPattern = regexp.MustCompile(`(?:youtu\.be/|/v/|/u/\w/|embed/|watch\?v=|&v=)([A-Za-z0-9_-]{11})(?:[#&?]|$)`)

// ExtractVideoID returns the 11-character video id embedded in a YouTube URL.
func ExtractVideoID(rawURL string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("%w: no video id in %q", shared.ErrInvalidTrackURL, rawURL)
	}
	return m[1], nil
}

// ThumbnailURL returns the default cover art for a video id.
func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/hqdefault.jpg"
}
