package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/songlist"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsFetched MsgKind = iota
	MsgFavoritesFetched
	MsgCompletion
	MsgOpened
)

type songsFetched struct {
	songs []models.Song
	err   error
}

type favoritesFetched struct {
	page *models.FavoritesPage
	err  error
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]
func songsFetchedMsg(songs []models.Song, err error) Msg {
	return Msg{kind: MsgSongsFetched, data: songsFetched{songs, err}}
}

// favoritesFetchedMsg is the constructor for [MsgFavoritesFetched]
func favoritesFetchedMsg(page *models.FavoritesPage, err error) Msg {
	return Msg{kind: MsgFavoritesFetched, data: favoritesFetched{page, err}}
}

// completionMsg is the constructor for [MsgCompletion]
func completionMsg(done songlist.Completion) Msg {
	return Msg{kind: MsgCompletion, data: done}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(url string, err error) Msg {
	return Msg{kind: MsgOpened, data: struct {
		url string
		err error
	}{url, err}}
}
