package songlist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/audio"
	"github.com/desertthunder/songview/internal/models"
)

type postRequest struct {
	action string
	values url.Values
}

// fakeSite serves post pages from memory and records form posts.
type fakeSite struct {
	mu       sync.Mutex
	posts    map[string][]models.Song
	pageSize int
	status   int
	postErr  error
	songsErr error
	posted   []postRequest
	fetched  []int
}

func newFakeSite(pageSize int) *fakeSite {
	return &fakeSite{posts: make(map[string][]models.Song), pageSize: pageSize, status: http.StatusOK}
}

func (s *fakeSite) Songs(_ context.Context, postID string, offset int) ([]models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetched = append(s.fetched, offset)
	if s.songsErr != nil {
		return nil, s.songsErr
	}

	songs := s.posts[postID]
	if offset >= len(songs) {
		return []models.Song{}, nil
	}
	end := min(offset+s.pageSize, len(songs))
	return append([]models.Song(nil), songs[offset:end]...), nil
}

func (s *fakeSite) PostForm(_ context.Context, action string, values url.Values) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posted = append(s.posted, postRequest{action: action, values: values})
	if s.postErr != nil {
		return 0, s.postErr
	}
	return s.status, nil
}

func (s *fakeSite) postCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posted)
}

func makeSongs(n int) []models.Song {
	songs := make([]models.Song, n)
	for i := range songs {
		songs[i] = models.Song{
			ID:         fmt.Sprint(i + 1),
			Title:      fmt.Sprintf("Song %d", i+1),
			Artist:     "Artist",
			PreviewURL: fmt.Sprintf("https://p.scdn.co/mp3-preview/%d", i+1),
			SpotifyURL: fmt.Sprintf("https://open.spotify.com/track/%d", i+1),
		}
	}
	return songs
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

type harness struct {
	site   *fakeSite
	audio  *audio.MockFactory
	sched  Scheduler
	ctrl   *Controller
	logger *log.Logger
}

func newHarness(sched Scheduler) *harness {
	h := &harness{
		site:   newFakeSite(10),
		audio:  audio.NewMockFactory(),
		sched:  sched,
		logger: quietLogger(),
	}
	h.ctrl = NewController(Options{Site: h.site, Audio: h.audio, Scheduler: sched, Logger: h.logger, PageSize: 10})
	return h
}

// pausedControls counts controls showing the pause glyph.
func pausedControls(l *List) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Play != nil && e.Play.Icon == IconPause {
			n++
		}
	}
	return n
}
