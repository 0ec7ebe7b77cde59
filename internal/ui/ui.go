package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songview/internal/services"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/desertthunder/songview/internal/songlist"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	SongsView
	FavoritesView
	ErrorView
)

// Options configures a [Model]. Exactly one of PostID and UserID is set.
type Options struct {
	Controller *songlist.Controller
	Source     services.SongSource
	PostID     string
	UserID     string
	// Owner shows the visibility toggle and removal on a favorites list.
	Owner    bool
	PageSize int
	// OpenURL opens a link outside the terminal; defaults to [shared.OpenBrowser].
	OpenURL func(string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	opts     Options
	ctrl     *songlist.Controller
	view     ViewState
	width    int
	height   int
	list     list.Model
	bar      progress.Model
	spinner  spinner.Model
	status   string
	statusOK bool
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &Model{
		ctx:     ctx,
		opts:    opts,
		ctrl:    opts.Controller,
		view:    LoadingView,
		list:    l,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the first page of the post or the favorites list.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m *Model) fetch() tea.Cmd {
	if m.opts.UserID != "" {
		return func() tea.Msg {
			page, err := m.opts.Source.Favorites(m.ctx, m.opts.UserID)
			return favoritesFetchedMsg(page, err)
		}
	}
	return func() tea.Msg {
		songs, err := m.opts.Source.Songs(m.ctx, m.opts.PostID, 0)
		return songsFetchedMsg(songs, err)
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		m.bar.Width = max(10, msg.Width-8)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.view != LoadingView && !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSongsFetched:
		data := msg.data.(songsFetched)
		if data.err != nil {
			m.err = data.err
			m.view = ErrorView
			return m, nil
		}
		view := songlist.NewSongListView(m.opts.PostID, data.songs, songlist.HasMore(len(data.songs), m.opts.PageSize))
		m.ctrl.AttachSongs(view)
		m.list.Title = fmt.Sprintf("Post %s", m.opts.PostID)
		m.view = SongsView
		return m, m.refresh()

	case MsgFavoritesFetched:
		data := msg.data.(favoritesFetched)
		if data.err != nil {
			m.err = data.err
			m.view = ErrorView
			return m, nil
		}
		view := songlist.NewFavoritesView(m.opts.UserID, *data.page, m.opts.Owner)
		m.ctrl.AttachFavorites(view)
		m.list.Title = fmt.Sprintf("Favorites of %s", m.opts.UserID)
		m.view = FavoritesView
		return m, m.refresh()

	case MsgCompletion:
		if done, ok := msg.data.(songlist.Completion); ok && done != nil {
			done()
		}
		return m, m.refresh()

	case MsgOpened:
		data := msg.data.(struct {
			url string
			err error
		})
		if data.err != nil {
			m.setStatus(fmt.Sprintf("could not open %s: %v", data.url, data.err), false)
		} else {
			m.setStatus("opened "+data.url, true)
		}
		return m, nil
	}
	return m, nil
}

// refresh re-renders list items from the controller's entries, keeping the cursor in range.
func (m *Model) refresh() tea.Cmd {
	index := m.list.Index()
	cmd := m.list.SetItems(entryItems(m.ctrl.List()))
	if n := len(m.list.Items()); n > 0 {
		m.list.Select(min(index, n-1))
	}
	if m.loading() {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m *Model) loading() bool {
	v := m.ctrl.Songs()
	return v != nil && v.LoadMore != nil && v.LoadMore.Loading
}

func (m *Model) selected() (*songlist.Entry, bool) {
	item, ok := m.list.SelectedItem().(entryItem)
	if !ok {
		return nil, false
	}
	return item.entry, true
}

func (m *Model) setStatus(s string, ok bool) {
	m.status = s
	m.statusOK = ok
}

func (m *Model) report(err error) {
	switch {
	case err == nil:
		m.setStatus("", true)
	case errors.Is(err, shared.ErrPaginationDone):
		m.setStatus("no more songs", true)
	case errors.Is(err, shared.ErrNotBound):
		m.setStatus("not available here", false)
	default:
		m.setStatus(err.Error(), false)
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.ctrl.Close()
		return m, tea.Quit
	}
	if m.view == LoadingView || m.view == ErrorView {
		return m, nil
	}

	entry, hasEntry := m.selected()

	switch {
	case key.Matches(msg, m.keys.play):
		if hasEntry {
			m.report(m.ctrl.Play(entry.Key))
			if entry.Play != nil && entry.Play.Inert() {
				m.setStatus("this song has no preview", false)
			}
		}
		return m, m.refresh()

	case key.Matches(msg, m.keys.favorite):
		if hasEntry {
			m.report(m.ctrl.ToggleFavorite(entry.Key))
		}
		return m, m.refresh()

	case key.Matches(msg, m.keys.remove):
		if hasEntry {
			m.report(m.ctrl.RemoveFavorite(entry.Key))
		}
		return m, m.refresh()

	case key.Matches(msg, m.keys.more):
		m.report(m.ctrl.LoadMore())
		return m, m.refresh()

	case key.Matches(msg, m.keys.visibility):
		fav := m.ctrl.Favorites()
		if fav == nil || fav.Visibility == nil {
			m.report(shared.ErrNotBound)
			return m, nil
		}
		m.report(m.ctrl.SetVisibility(!fav.Visibility.Checked))
		return m, nil

	case key.Matches(msg, m.keys.open):
		if !hasEntry || entry.Song.SpotifyURL == "" {
			m.setStatus("no spotify link", false)
			return m, nil
		}
		return m, m.openURL(entry.Song.SpotifyURL)

	case key.Matches(msg, m.keys.up, m.keys.down):
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) openURL(url string) tea.Cmd {
	open := m.opts.OpenURL
	return func() tea.Msg {
		return openedMsg(url, open(url))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return fmt.Sprintf("%s Loading...", m.spinner.View())
	case ErrorView:
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	case SongsView:
		return m.render(m.keys.songKeys())
	case FavoritesView:
		return m.render(m.keys.favoriteKeys(m.opts.Owner))
	default:
		return ""
	}
}

func (m *Model) render(keys []key.Binding) string {
	out := m.list.View()

	if active := m.ctrl.Player.Active(); active != nil {
		out += "\n" + m.bar.ViewAs(active.Progress)
	}

	switch v := m.ctrl.Songs(); {
	case v == nil:
	case v.LoadMore == nil:
		out += "\n" + styles.help.Render("end of list")
	case v.LoadMore.Loading:
		out += fmt.Sprintf("\n%s loading more...", m.spinner.View())
	}

	if fav := m.ctrl.Favorites(); fav != nil && fav.Visibility != nil {
		out += "\n" + styles.help.Render("favorites are "+shared.VisibilityString(fav.Visibility.Checked))
	}

	if m.status != "" {
		if m.statusOK {
			out += "\n" + styles.ok.Render(m.status)
		} else {
			out += "\n" + styles.warn.Render(m.status)
		}
	}

	return fmt.Sprintf("%s\n\n%s", out, m.help.ShortHelpView(keys))
}
