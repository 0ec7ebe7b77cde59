package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/songview/internal/models"
)

// SiteRequest is one request the fake site received.
type SiteRequest struct {
	Method string
	Path   string
	Form   map[string][]string
	Cookie string
}

// FakeSite is an in-memory song-post site speaking the JSON and form endpoints.
//
// Posts are paginated by PageSize. Favorite toggles flip per (post, song). When Session is
// set, every write without a matching "session" cookie is redirected to /login.
type FakeSite struct {
	*httptest.Server

	mu        sync.Mutex
	PageSize  int
	Session   string
	Posts     map[string][]models.Song
	Favorites map[string]*models.FavoritesPage
	// FailPaths answers the listed paths with this status.
	FailPaths map[string]int
	Requests  []SiteRequest
}

// NewFakeSite starts the fake site. Callers must Close it.
func NewFakeSite(pageSize int) *FakeSite {
	f := &FakeSite{
		PageSize:  pageSize,
		Posts:     make(map[string][]models.Song),
		Favorites: make(map[string]*models.FavoritesPage),
		FailPaths: make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// MakeSongs builds n songs with ids 1..n and previews.
func MakeSongs(n int) []models.Song {
	songs := make([]models.Song, n)
	for i := range songs {
		songs[i] = models.Song{
			ID:         strconv.Itoa(i + 1),
			Title:      fmt.Sprintf("Song %d", i+1),
			Artist:     "Artist",
			ImageURL:   fmt.Sprintf("https://i.scdn.co/image/%d", i+1),
			PreviewURL: fmt.Sprintf("https://p.scdn.co/mp3-preview/%d", i+1),
			SpotifyURL: fmt.Sprintf("https://open.spotify.com/track/%d", i+1),
		}
	}
	return songs
}

// Received returns a copy of the requests seen so far.
func (f *FakeSite) Received() []SiteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SiteRequest(nil), f.Requests...)
}

func (f *FakeSite) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	f.mu.Lock()
	defer f.mu.Unlock()

	cookie := ""
	if c, err := r.Cookie("session"); err == nil {
		cookie = c.Value
	}
	f.Requests = append(f.Requests, SiteRequest{Method: r.Method, Path: r.URL.Path, Form: r.PostForm, Cookie: cookie})

	if status, ok := f.FailPaths[r.URL.Path]; ok {
		w.WriteHeader(status)
		return
	}

	if r.Method == http.MethodPost && f.Session != "" && cookie != f.Session {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "posts":
		f.servePost(w, r, parts[1])
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "users" && parts[2] == "favorited":
		f.serveFavorites(w, parts[1])
	case r.Method == http.MethodPost && len(parts) == 5 && parts[0] == "posts" && parts[4] == "favorite":
		f.toggleFavorite(w, parts[1], parts[3])
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "favorites" && parts[2] == "remove":
		f.removeFavorite(w, parts[1])
	case r.Method == http.MethodPost && r.URL.Path == "/toggle_favorites_public":
		http.Redirect(w, r, "/favorites", http.StatusFound)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeSite) servePost(w http.ResponseWriter, r *http.Request, postID string) {
	songs, ok := f.Posts[postID]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.URL.Query().Get("json") != "true" {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>post</body></html>"))
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	page := []models.Song{}
	if offset < len(songs) {
		end := min(offset+f.PageSize, len(songs))
		page = songs[offset:end]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.SongPage{Songs: page})
}

func (f *FakeSite) serveFavorites(w http.ResponseWriter, userID string) {
	page, ok := f.Favorites[userID]
	if !ok {
		page = &models.FavoritesPage{Favorites: []models.FavoriteEntry{}}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func (f *FakeSite) toggleFavorite(w http.ResponseWriter, postID, songID string) {
	songs := f.Posts[postID]
	for i := range songs {
		if songs[i].ID == songID {
			songs[i].IsFavorited = !songs[i].IsFavorited
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (f *FakeSite) removeFavorite(w http.ResponseWriter, favoriteID string) {
	for _, page := range f.Favorites {
		for i, fav := range page.Favorites {
			if fav.ID == favoriteID {
				page.Favorites = append(page.Favorites[:i], page.Favorites[i+1:]...)
				w.WriteHeader(http.StatusOK)
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}
