package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songview/internal/songlist"
)

var (
	_ list.Item = entryItem{}
)

// entryItem wraps a [songlist.Entry] to implement [list.Item].
type entryItem struct {
	entry *songlist.Entry
}

func (i entryItem) FilterValue() string { return i.entry.Song.Label() }

func (i entryItem) Title() string {
	var icon string
	switch {
	case i.entry.Play == nil || i.entry.Play.Inert():
		icon = "· "
	case i.entry.Play.Icon == songlist.IconPause:
		icon = "❚❚"
	default:
		icon = "▶ "
	}

	title := i.entry.Song.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s %s", icon, title)
}

func (i entryItem) Description() string {
	parts := []string{}
	if i.entry.Song.Artist != "" {
		parts = append(parts, i.entry.Song.Artist)
	}
	if i.entry.Favorite != nil {
		if i.entry.Favorite.Heart == songlist.HeartFilled {
			parts = append(parts, styles.heart.Render("♥"))
		} else {
			parts = append(parts, "♡")
		}
	}
	if i.entry.Play != nil && i.entry.Play.Inert() {
		parts = append(parts, "no preview")
	}
	return strings.Join(parts, " • ")
}

func entryItems(l *songlist.List) []list.Item {
	entries := l.Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	return items
}
