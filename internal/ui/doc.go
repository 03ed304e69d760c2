// Package ui implements the terminal radio using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [RadioView] : now playing, volume, and the playlist
//  2. [AddTrackView] : paste a YouTube URL to append it to the playlist
//  3. [RankView] : the server leaderboard with podium badges
//
// The [Model] drives a [playback.Controller]; it never changes playback state itself. Snapshots published by the
// controller and notices arrive as messages through channels, so the screen follows changes made elsewhere.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
