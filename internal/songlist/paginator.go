package songlist

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
)

// Paginator appends the next page of a post's songs to its view.
//
// Every request carries a token. Only the latest request for a view may apply its
// response, and never after the view's load-more control is gone.
type Paginator struct {
	site   Site
	sched  Scheduler
	logger *log.Logger
	tokens map[*SongListView]string
	// PageSize, when set, lets a short page end pagination without a trailing empty fetch.
	PageSize int
	// OnAppend runs on the loop after entries are appended, before anything else can observe them.
	OnAppend func(view *SongListView, added []*Entry)
}

func NewPaginator(site Site, sched Scheduler, logger *log.Logger) *Paginator {
	return &Paginator{site: site, sched: sched, logger: logger, tokens: make(map[*SongListView]string)}
}

// LoadMore requests the page after the view's current offset.
// It returns [shared.ErrPaginationDone] once an empty page has removed the control.
func (p *Paginator) LoadMore(view *SongListView) error {
	if view == nil {
		return shared.ErrNotBound
	}
	if view.LoadMore == nil {
		return shared.ErrPaginationDone
	}

	token := shared.GenerateID()
	p.tokens[view] = token
	view.LoadMore.Loading = true

	postID, offset := view.PostID, view.Offset()
	p.sched.Go(func(ctx context.Context) Completion {
		songs, err := p.site.Songs(ctx, postID, offset)
		return func() { p.apply(view, token, offset, songs, err) }
	})
	return nil
}

// HasMore reports whether a first page of n songs should offer a load-more control.
func HasMore(n, pageSize int) bool {
	if n == 0 {
		return false
	}
	return pageSize <= 0 || n >= pageSize
}

// InFlight reports whether view has an outstanding request.
func (p *Paginator) InFlight(view *SongListView) bool {
	_, ok := p.tokens[view]
	return ok
}

func (p *Paginator) apply(view *SongListView, token string, offset int, songs []models.Song, err error) {
	if p.tokens[view] != token || view.LoadMore == nil || view.Offset() != offset {
		p.logger.Debug("dropping page response", "error", shared.ErrStaleResponse, "post", view.PostID, "offset", offset)
		return
	}
	delete(p.tokens, view)
	view.LoadMore.Loading = false

	if err != nil {
		p.logger.Error("error loading more songs", "error", err, "post", view.PostID, "offset", offset)
		return
	}

	if len(songs) == 0 {
		view.LoadMore = nil
		p.logger.Debug("reached end of song list", "post", view.PostID, "offset", offset)
		return
	}

	added := make([]*Entry, 0, len(songs))
	for _, song := range songs {
		e := NewSongEntry(view.PostID, song)
		view.List.Append(e)
		added = append(added, e)
	}

	if p.PageSize > 0 && len(songs) < p.PageSize {
		view.LoadMore = nil
		p.logger.Debug("short page ends song list", "post", view.PostID, "songs", len(songs))
	}

	if p.OnAppend != nil {
		p.OnAppend(view, added)
	}
}
