package songlist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/audio"
	"github.com/desertthunder/songview/internal/shared"
)

// Options configures a [Controller].
type Options struct {
	Context   context.Context
	Site      Site
	Audio     audio.Factory
	Scheduler Scheduler
	Logger    *log.Logger
	// PageSize is the site's page length; zero relies on an empty page to end pagination.
	PageSize int
}

// Controller wires playback, favorites, visibility and pagination to one attached page.
//
// A page is either a post's song list or a user's favorites. Attaching a page replaces the
// previous one, stops playback and binds every rendered control.
type Controller struct {
	Player     *Player
	Toggler    *FavoriteToggler
	Remover    *FavoriteRemover
	Visibility *VisibilityUpdater
	Paginator  *Paginator

	logger    *log.Logger
	registry  *registry
	songs     *SongListView
	favorites *FavoritesView
}

func NewController(opts Options) *Controller {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = Inline{Ctx: opts.Context}
	}

	c := &Controller{
		Player:     NewPlayer(opts.Context, opts.Audio, opts.Scheduler, opts.Logger.With("component", "player")),
		Toggler:    NewFavoriteToggler(opts.Site, opts.Scheduler, opts.Logger.With("component", "favorites")),
		Remover:    NewFavoriteRemover(opts.Site, opts.Scheduler, opts.Logger.With("component", "favorites")),
		Visibility: NewVisibilityUpdater(opts.Site, opts.Scheduler, opts.Logger.With("component", "visibility")),
		Paginator:  NewPaginator(opts.Site, opts.Scheduler, opts.Logger.With("component", "paginator")),
		logger:     opts.Logger,
		registry:   newRegistry(),
	}

	c.Paginator.PageSize = opts.PageSize
	c.Paginator.OnAppend = func(*SongListView, []*Entry) { c.Bind() }
	c.Remover.OnRemoved = func(list *List, e *Entry) {
		if list != c.List() {
			return
		}
		c.registry.unbind(e.Key)
		c.Player.Release(e.Play)
	}
	return c
}

// AttachSongs makes view the active page.
func (c *Controller) AttachSongs(view *SongListView) {
	c.detach()
	c.songs = view
	c.Bind()
}

// AttachFavorites makes view the active page.
func (c *Controller) AttachFavorites(view *FavoritesView) {
	c.detach()
	c.favorites = view
	c.Bind()
}

func (c *Controller) detach() {
	c.Player.Stop()
	c.registry = newRegistry()
	c.songs, c.favorites = nil, nil
}

// Songs returns the attached song list, or nil.
func (c *Controller) Songs() *SongListView { return c.songs }

// Favorites returns the attached favorites list, or nil.
func (c *Controller) Favorites() *FavoritesView { return c.favorites }

// List returns the entries of the attached page.
func (c *Controller) List() *List {
	switch {
	case c.songs != nil:
		return c.songs.List
	case c.favorites != nil:
		return c.favorites.List
	default:
		return NewList()
	}
}

// Bind attaches listeners to every entry on the page and returns how many were new.
// Safe to repeat; already bound entries are untouched.
func (c *Controller) Bind() int {
	n := 0
	for _, e := range c.List().Entries() {
		n += c.registry.bindEntry(e)
	}
	if n > 0 {
		c.logger.Debug("bound entries", "listeners", n, "entries", c.List().Len())
	}
	return n
}

// Listeners counts the listeners bound to key.
func (c *Controller) Listeners(key string) int {
	return c.registry.listeners(key)
}

func (c *Controller) lookup(cap Capability, key string) (*Entry, error) {
	e, ok := c.List().Get(key)
	if !ok || !c.registry.isBound(cap, key) {
		return nil, fmt.Errorf("%w: %s %q", shared.ErrNotBound, cap, key)
	}
	return e, nil
}

// Play toggles the preview of the entry with key.
func (c *Controller) Play(key string) error {
	e, err := c.lookup(CapPlay, key)
	if err != nil {
		return err
	}
	return c.Player.TogglePlay(e.Play)
}

// ToggleFavorite submits the favorite form of the entry with key.
func (c *Controller) ToggleFavorite(key string) error {
	e, err := c.lookup(CapFavorite, key)
	if err != nil {
		return err
	}
	return c.Toggler.Submit(e)
}

// RemoveFavorite submits the removal form of the favorites row with key.
func (c *Controller) RemoveFavorite(key string) error {
	e, err := c.lookup(CapRemove, key)
	if err != nil {
		return err
	}
	return c.Remover.Submit(c.favorites.List, e)
}

// LoadMore requests the next page of the attached song list.
func (c *Controller) LoadMore() error {
	if c.songs == nil {
		return fmt.Errorf("%w: no song list attached", shared.ErrNotBound)
	}
	return c.Paginator.LoadMore(c.songs)
}

// SetVisibility changes the favorites visibility checkbox.
func (c *Controller) SetVisibility(public bool) error {
	if c.favorites == nil || c.favorites.Visibility == nil {
		return fmt.Errorf("%w: no visibility toggle", shared.ErrNotBound)
	}
	return c.Visibility.Change(c.favorites.Visibility, public)
}

// Close stops playback.
func (c *Controller) Close() {
	c.Player.Stop()
}
