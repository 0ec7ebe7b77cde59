package songlist

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/shared"
)

func statusError(status int) error {
	return fmt.Errorf("%w: %d", shared.ErrUnexpectedStatus, status)
}

// FavoriteToggler submits favorite forms and flips the heart once the site confirms.
type FavoriteToggler struct {
	site   Site
	sched  Scheduler
	logger *log.Logger
}

func NewFavoriteToggler(site Site, sched Scheduler, logger *log.Logger) *FavoriteToggler {
	return &FavoriteToggler{site: site, sched: sched, logger: logger}
}

// Submit posts entry's favorite form. On 200 the heart flips and the song's
// favorited flag follows it; anything else is logged and leaves both alone.
func (t *FavoriteToggler) Submit(entry *Entry) error {
	if entry == nil || entry.Favorite == nil {
		return shared.ErrNotBound
	}

	form := entry.Favorite.Form.clone()
	t.sched.Go(func(ctx context.Context) Completion {
		status, err := t.site.PostForm(ctx, form.Action, form.Values)
		return func() {
			if err == nil && status != http.StatusOK {
				err = statusError(status)
			}
			if err != nil {
				t.logger.Error("error toggling favorite", "error", err, "song", entry.Song.ID, "action", form.Action)
				return
			}
			entry.Favorite.Toggle()
			entry.Song.IsFavorited = entry.Favorite.Heart == HeartFilled
		}
	})
	return nil
}

// FavoriteRemover submits removal forms and drops the row once the site confirms.
type FavoriteRemover struct {
	site   Site
	sched  Scheduler
	logger *log.Logger
	// OnRemoved runs on the loop after a row leaves the list.
	OnRemoved func(list *List, e *Entry)
}

func NewFavoriteRemover(site Site, sched Scheduler, logger *log.Logger) *FavoriteRemover {
	return &FavoriteRemover{site: site, sched: sched, logger: logger}
}

// Submit posts entry's removal form with no body. On 200 the entry leaves list.
func (r *FavoriteRemover) Submit(list *List, entry *Entry) error {
	if entry == nil || entry.Remove == nil {
		return shared.ErrNotBound
	}

	action := entry.Remove.Form.Action
	r.sched.Go(func(ctx context.Context) Completion {
		status, err := r.site.PostForm(ctx, action, nil)
		return func() {
			if err == nil && status != http.StatusOK {
				err = statusError(status)
			}
			if err != nil {
				r.logger.Error("error removing favorite", "error", err, "favorite", entry.Key)
				return
			}
			if list.Remove(entry.Key) && r.OnRemoved != nil {
				r.OnRemoved(list, entry)
			}
		}
	})
	return nil
}
