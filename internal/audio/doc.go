// Package audio loads and plays song previews.
//
// A [Factory] opens a [Handle] for a preview URL. Handles report playback through [Events]
// callbacks, which may fire on any goroutine; callers marshal them onto their own loop.
//
// Implementations:
//   - [BeepFactory] : streams mp3 previews over HTTP to the system speaker
//   - [MockFactory] : in-memory handles driven by tests
package audio
