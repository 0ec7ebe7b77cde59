package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Song is a song record as rendered on a post page.
//
// The site owns the record; the client only holds a transient view of it.
type Song struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ImageURL    string `json:"image_url"`
	PreviewURL  string `json:"preview_url"`
	SpotifyURL  string `json:"spotify_url"`
	IsFavorited bool   `json:"is_favorited"`
}

// UnmarshalJSON accepts the id as either a JSON number or a string.
func (s *Song) UnmarshalJSON(data []byte) error {
	type alias Song
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := decodeID(aux.ID)
	if err != nil {
		return fmt.Errorf("song id: %w", err)
	}
	s.ID = id
	return nil
}

// HasPreview reports whether the song carries an audio preview.
func (s Song) HasPreview() bool {
	return s.PreviewURL != ""
}

// Label renders "Title - Artist", or whichever half is present.
func (s Song) Label() string {
	switch {
	case s.Title != "" && s.Artist != "":
		return s.Title + " - " + s.Artist
	case s.Title != "":
		return s.Title
	default:
		return s.Artist
	}
}

// SongPage is the body of GET /posts/{id}?offset=N&json=true.
type SongPage struct {
	Songs []Song `json:"songs"`
}

// FavoriteEntry is one row of a user's favorites list.
type FavoriteEntry struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
	Song   Song   `json:"song"`
}

// UnmarshalJSON accepts numeric or string ids for the entry and its post.
func (f *FavoriteEntry) UnmarshalJSON(data []byte) error {
	type alias FavoriteEntry
	aux := struct {
		ID     json.RawMessage `json:"id"`
		PostID json.RawMessage `json:"post_id"`
		*alias
	}{alias: (*alias)(f)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if f.ID, err = decodeID(aux.ID); err != nil {
		return fmt.Errorf("favorite id: %w", err)
	}
	if f.PostID, err = decodeID(aux.PostID); err != nil {
		return fmt.Errorf("favorite post_id: %w", err)
	}
	return nil
}

// FavoritesPage is the body of GET /users/{id}/favorited?json=true.
type FavoritesPage struct {
	Public    bool            `json:"favorites_public"`
	Favorites []FavoriteEntry `json:"favorites"`
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", err
	}
	return n.String(), nil
}
