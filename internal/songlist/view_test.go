package songlist

import (
	"testing"

	"github.com/desertthunder/songview/internal/models"
)

func TestList(t *testing.T) {
	t.Run("Append and Remove keep order", func(t *testing.T) {
		l := NewList()
		for _, s := range makeSongs(4) {
			l.Append(NewSongEntry("1", s))
		}

		if !l.Remove("2") {
			t.Fatal("expected removal of key 2")
		}
		if l.Remove("2") {
			t.Error("second removal should report false")
		}

		var keys []string
		for _, e := range l.Entries() {
			keys = append(keys, e.Key)
		}
		if len(keys) != 3 || keys[0] != "1" || keys[1] != "3" || keys[2] != "4" {
			t.Errorf("unexpected order %v", keys)
		}

		if e, ok := l.Get("4"); !ok || e.Song.Title != "Song 4" {
			t.Error("index should follow shifted entries")
		}
	})

	t.Run("duplicate keys are disambiguated", func(t *testing.T) {
		song := models.Song{ID: "9", Title: "Twice"}
		l := NewList(NewSongEntry("1", song), NewSongEntry("1", song), NewSongEntry("1", song))

		if l.Len() != 3 {
			t.Fatalf("expected 3 entries, got %d", l.Len())
		}
		for _, key := range []string{"9", "9#2", "9#3"} {
			if _, ok := l.Get(key); !ok {
				t.Errorf("missing key %s", key)
			}
		}
	})
}

func TestNewSongEntry(t *testing.T) {
	tests := []struct {
		name      string
		song      models.Song
		wantHeart Heart
		wantInert bool
	}{
		{"favorited with preview", models.Song{ID: "5", PreviewURL: "http://p/5", IsFavorited: true}, HeartFilled, false},
		{"not favorited", models.Song{ID: "6", PreviewURL: "http://p/6"}, HeartOutline, false},
		{"no preview", models.Song{ID: "7"}, HeartOutline, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewSongEntry("42", tt.song)

			if e.Play == nil {
				t.Fatal("every song row gets a play control")
			}
			if e.Play.Inert() != tt.wantInert {
				t.Errorf("Inert() = %v, want %v", e.Play.Inert(), tt.wantInert)
			}
			if e.Play.Icon != IconPlay {
				t.Error("new rows start with the play glyph")
			}
			if e.Favorite.Heart != tt.wantHeart {
				t.Errorf("heart = %v, want %v", e.Favorite.Heart, tt.wantHeart)
			}
			if want := "/posts/42/songs/" + tt.song.ID + "/favorite"; e.Favorite.Form.Action != want {
				t.Errorf("action = %s, want %s", e.Favorite.Form.Action, want)
			}
			if e.Remove != nil {
				t.Error("post rows have no remove control")
			}
		})
	}
}

func TestNewFavoritesView(t *testing.T) {
	page := models.FavoritesPage{
		Public: true,
		Favorites: []models.FavoriteEntry{
			{ID: "100", PostID: "3", Song: models.Song{ID: "1", PreviewURL: "http://p/1"}},
			{ID: "101", Song: models.Song{ID: "2"}},
		},
	}

	v := NewFavoritesView("u1", page, true)
	if v.List.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", v.List.Len())
	}
	if v.Visibility == nil || !v.Visibility.Checked {
		t.Error("owner should see a checked visibility toggle")
	}

	first, _ := v.List.Get("100")
	if first.Remove.Form.Action != "/favorites/100/remove" {
		t.Errorf("unexpected remove action %s", first.Remove.Form.Action)
	}
	if first.Favorite == nil || first.Favorite.Heart != HeartFilled {
		t.Error("favorites rows with a post start filled")
	}

	second, _ := v.List.Get("101")
	if second.Favorite != nil {
		t.Error("rows without a post id cannot toggle")
	}

	visitor := NewFavoritesView("u1", page, false)
	if visitor.Visibility != nil {
		t.Error("visitors get no visibility toggle")
	}
	for _, e := range visitor.List.Entries() {
		if e.Remove != nil {
			t.Errorf("visitor row %s should have no remove form", e.Key)
		}
		if e.Play == nil {
			t.Errorf("visitor row %s should still play", e.Key)
		}
	}
}

func TestFormClone(t *testing.T) {
	f := Form{Action: "/x", Values: map[string][]string{"a": {"1"}}}
	c := f.clone()
	c.Values.Set("a", "2")
	if f.Values.Get("a") != "1" {
		t.Error("clone should not share values")
	}
}
