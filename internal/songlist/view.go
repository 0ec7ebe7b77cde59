package songlist

import (
	"fmt"
	"net/url"

	"github.com/desertthunder/songview/internal/models"
)

// Icon is the glyph shown on a play control.
type Icon int

const (
	IconPlay Icon = iota
	IconPause
)

func (i Icon) String() string {
	if i == IconPause {
		return "pause"
	}
	return "play"
}

// Heart is the fill state of a favorite control.
type Heart int

const (
	HeartOutline Heart = iota
	HeartFilled
)

func (h Heart) String() string {
	if h == HeartFilled {
		return "filled"
	}
	return "outline"
}

// HeartFor maps a favorited flag to its heart.
func HeartFor(favorited bool) Heart {
	if favorited {
		return HeartFilled
	}
	return HeartOutline
}

// PlayControl is a play button and its progress bar.
// An empty Source marks an inert control.
type PlayControl struct {
	Source   string
	Icon     Icon
	Progress float64
}

// Inert reports whether the control can never produce audio.
func (c *PlayControl) Inert() bool {
	return c.Source == ""
}

// Form is a submittable form: its target and its field values.
type Form struct {
	Action string
	Values url.Values
}

// clone copies the form so an in-flight request never sees later edits.
func (f Form) clone() Form {
	values := make(url.Values, len(f.Values))
	for k, v := range f.Values {
		values[k] = append([]string(nil), v...)
	}
	return Form{Action: f.Action, Values: values}
}

// FavoriteControl is the heart form on a song row.
type FavoriteControl struct {
	Form  Form
	Heart Heart
}

// Toggle flips the heart.
func (f *FavoriteControl) Toggle() {
	if f.Heart == HeartFilled {
		f.Heart = HeartOutline
	} else {
		f.Heart = HeartFilled
	}
}

// RemoveControl is the removal form on a favorites row.
type RemoveControl struct {
	Form Form
}

// VisibilityToggle is the public/private favorites checkbox and its form.
type VisibilityToggle struct {
	Form    Form
	Checked bool
}

// LoadMoreControl is the "load more" button; nil on a view means pagination ended.
// Loading is set while a page request is in flight.
type LoadMoreControl struct {
	Loading bool
}

// Entry is one bindable row. A nil control means the row lacks that capability.
type Entry struct {
	Key      string
	Song     models.Song
	Play     *PlayControl
	Favorite *FavoriteControl
	Remove   *RemoveControl
}

// List is an ordered collection of entries addressable by key.
type List struct {
	entries []*Entry
	index   map[string]int
}

func NewList(entries ...*Entry) *List {
	l := &List{index: make(map[string]int)}
	for _, e := range entries {
		l.Append(e)
	}
	return l
}

// Append adds e at the end. A key already in the list gets a "#n" suffix so the
// same song can appear twice on a post.
func (l *List) Append(e *Entry) {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if _, exists := l.index[e.Key]; exists {
		base := e.Key
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s#%d", base, n)
			if _, taken := l.index[candidate]; !taken {
				e.Key = candidate
				break
			}
		}
	}
	l.index[e.Key] = len(l.entries)
	l.entries = append(l.entries, e)
}

// Remove deletes the entry with key and reports whether it was present.
func (l *List) Remove(key string) bool {
	i, ok := l.index[key]
	if !ok {
		return false
	}

	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	delete(l.index, key)
	for j := i; j < len(l.entries); j++ {
		l.index[l.entries[j].Key] = j
	}
	return true
}

func (l *List) Get(key string) (*Entry, bool) {
	i, ok := l.index[key]
	if !ok {
		return nil, false
	}
	return l.entries[i], true
}

func (l *List) Len() int {
	return len(l.entries)
}

// Entries returns the entries in display order. The slice must not be modified.
func (l *List) Entries() []*Entry {
	return l.entries
}

// SongListView is the rendered song list of one post.
type SongListView struct {
	PostID   string
	List     *List
	LoadMore *LoadMoreControl
}

// NewSongListView renders songs as the initial page of postID.
// hasMore controls whether a load-more control is shown.
func NewSongListView(postID string, songs []models.Song, hasMore bool) *SongListView {
	v := &SongListView{PostID: postID, List: NewList()}
	for _, s := range songs {
		v.List.Append(NewSongEntry(postID, s))
	}
	if hasMore {
		v.LoadMore = &LoadMoreControl{}
	}
	return v
}

// Offset is the pagination cursor: the number of rendered entries.
func (v *SongListView) Offset() int {
	return v.List.Len()
}

// Exhausted reports whether pagination has ended.
func (v *SongListView) Exhausted() bool {
	return v.LoadMore == nil
}

// FavoritesView is a user's favorites list.
type FavoritesView struct {
	UserID     string
	List       *List
	Visibility *VisibilityToggle
}

// NewFavoritesView renders a favorites page. Removal and the visibility toggle are only
// present for the owner.
func NewFavoritesView(userID string, page models.FavoritesPage, owner bool) *FavoritesView {
	v := &FavoritesView{UserID: userID, List: NewList()}
	for _, fav := range page.Favorites {
		v.List.Append(NewFavoriteEntry(fav, owner))
	}
	if owner {
		v.Visibility = NewVisibilityToggle(page.Public)
	}
	return v
}

// SongFavoritePath is the favorite toggle target for a song on a post.
func SongFavoritePath(postID, songID string) string {
	return fmt.Sprintf("/posts/%s/songs/%s/favorite", url.PathEscape(postID), url.PathEscape(songID))
}

// FavoriteRemovePath is the removal target for a favorites row.
func FavoriteRemovePath(favoriteID string) string {
	return fmt.Sprintf("/favorites/%s/remove", url.PathEscape(favoriteID))
}

// VisibilityPath is the favorites visibility target.
const VisibilityPath = "/toggle_favorites_public"

// NewSongEntry builds a post row: a play control on the preview and a favorite form.
// A song without a preview still gets a play control, which is inert.
func NewSongEntry(postID string, song models.Song) *Entry {
	return &Entry{
		Key:  song.ID,
		Song: song,
		Play: &PlayControl{Source: song.PreviewURL},
		Favorite: &FavoriteControl{
			Form:  Form{Action: SongFavoritePath(postID, song.ID), Values: url.Values{}},
			Heart: HeartFor(song.IsFavorited),
		},
	}
}

// NewFavoriteEntry builds a favorites row with a play control and a favorite form.
// The owner's rows also get a remove form.
func NewFavoriteEntry(fav models.FavoriteEntry, owner bool) *Entry {
	e := &Entry{
		Key:  fav.ID,
		Song: fav.Song,
		Play: &PlayControl{Source: fav.Song.PreviewURL},
	}
	if owner {
		e.Remove = &RemoveControl{Form: Form{Action: FavoriteRemovePath(fav.ID)}}
	}
	if fav.PostID != "" && fav.Song.ID != "" {
		e.Favorite = &FavoriteControl{
			Form:  Form{Action: SongFavoritePath(fav.PostID, fav.Song.ID), Values: url.Values{}},
			Heart: HeartFilled,
		}
	}
	return e
}

// NewVisibilityToggle builds the favorites visibility checkbox.
func NewVisibilityToggle(public bool) *VisibilityToggle {
	return &VisibilityToggle{Form: Form{Action: VisibilityPath, Values: url.Values{}}, Checked: public}
}
