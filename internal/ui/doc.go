// Package ui implements an interactive terminal song list using bubbletea's Elm architecture.
//
// The TUI shows one page at a time:
//  1. [SongsView] : a post's songs with preview playback, favorites and "load more"
//  2. [FavoritesView] : a user's favorites with removal and the public/private toggle
//
// The (view) [Model] drives a songlist.Controller. Network calls and audio events run off
// the event loop; [ProgramScheduler] delivers their completions back as messages, so the
// controller's state only changes inside Update.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, f, x, m, v, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
