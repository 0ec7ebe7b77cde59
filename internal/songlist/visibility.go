package songlist

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/shared"
)

// VisibilityField is the checkbox field posted when favorites are public.
const VisibilityField = "favorites_public"

// VisibilityUpdater submits the favorites visibility checkbox without waiting on the result.
type VisibilityUpdater struct {
	site   Site
	sched  Scheduler
	logger *log.Logger
}

func NewVisibilityUpdater(site Site, sched Scheduler, logger *log.Logger) *VisibilityUpdater {
	return &VisibilityUpdater{site: site, sched: sched, logger: logger}
}

// Change records the user's choice on the checkbox and posts the form.
// An unchecked box contributes no field, as a browser form would. Only transport
// errors and error statuses are reported; the checkbox is never rolled back.
func (u *VisibilityUpdater) Change(toggle *VisibilityToggle, checked bool) error {
	if toggle == nil {
		return shared.ErrNotBound
	}

	toggle.Checked = checked
	form := toggle.Form.clone()
	if checked {
		form.Values.Set(VisibilityField, "y")
	} else {
		form.Values.Del(VisibilityField)
	}

	u.sched.Go(func(ctx context.Context) Completion {
		status, err := u.site.PostForm(ctx, form.Action, form.Values)
		return func() {
			// The site answers with a redirect back to the favorites page.
			if err == nil && (status < http.StatusOK || status >= http.StatusBadRequest) {
				err = statusError(status)
			}
			if err != nil {
				u.logger.Error("error updating favorites visibility", "error", err)
				return
			}
			u.logger.Debug("favorites visibility updated", "public", checked)
		}
	})
	return nil
}
