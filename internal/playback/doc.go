// Package playback owns the radio's state: the playlist, the current track, transport state and volume.
//
// # Controller
//
// [Controller] is the single writer of [models.PlaybackState]. Every surface (web widget, radio page,
// terminal radio) reads snapshots through [Controller.State] or [Controller.Subscribe] and changes
// state only by issuing commands: Play, Pause, Next, Previous, SetVolume, ToggleMute, AddTrack, RemoveTrack.
// Commands and player events are serialized under one lock and applied in call order.
//
// # Player
//
// Audio is produced by an embedded video player outside this process. The controller sends it
// directives through the [Player] interface and receives its events through [Controller.Dispatch]:
//
//   - ready: the last Load finished buffering; playback starts only now, if still wanted
//   - state changed: playing, paused or ended; ended advances to the next track
//   - error: a non-fatal notice is emitted and the next track is tried
//
// Each Load carries a sequence number. Events tagged with an older sequence belong to a superseded
// load and are ignored, so the last command always wins.
//
// # Track sources
//
// Track URLs must contain an 11-character video id ([ExtractVideoID]); anything else is rejected by
// [Controller.AddTrack] with [shared.ErrInvalidTrackURL].
package playback
