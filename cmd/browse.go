package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songview/internal/formatter"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/desertthunder/songview/internal/songlist"
	"github.com/desertthunder/songview/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive song list for a post.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	postID := cmd.StringArg("post-id")
	if postID == "" {
		return fmt.Errorf("%w: post-id", shared.ErrMissingArgument)
	}
	return r.runUI(ctx, cmd.String("log-file"), ui.Options{PostID: postID})
}

// Favorites launches the interactive favorites list, or prints it when --format is set.
func (r *Runner) Favorites(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.StringArg("user-id")
	if userID == "" {
		return fmt.Errorf("%w: user-id", shared.ErrMissingArgument)
	}

	if format := cmd.String("format"); format != "" {
		return r.printFavorites(ctx, userID, format)
	}

	return r.runUI(ctx, cmd.String("log-file"), ui.Options{UserID: userID, Owner: cmd.Bool("owner")})
}

func (r *Runner) printFavorites(ctx context.Context, userID, format string) error {
	site, err := r.siteClient()
	if err != nil {
		return err
	}

	page, err := site.Favorites(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch favorites for user %s: %w", userID, err)
	}

	export := &formatter.SongExport{
		Title:  fmt.Sprintf("Favorites of %s", userID),
		Source: sourceURL(site, "/users/"+userID+"/favorited"),
		Public: &page.Public,
	}
	for _, fav := range page.Favorites {
		export.Songs = append(export.Songs, fav.Song)
	}
	return r.writeExport(export, format, "")
}

// runUI hands the terminal to the bubbletea program until the user quits.
//
// Logs are redirected to logFile so they do not interfere with rendering.
func (r *Runner) runUI(ctx context.Context, logFile string, opts ui.Options) error {
	fileLogger, err := shared.NewFileLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	site, err := r.siteClient()
	if err != nil {
		return err
	}

	sched := ui.NewProgramScheduler(ctx)
	ctrl := songlist.NewController(songlist.Options{
		Context:   ctx,
		Site:      site,
		Audio:     r.audioFactory(),
		Scheduler: sched,
		Logger:    fileLogger.With("component", "songlist"),
		PageSize:  r.config.Site.PageSize,
	})
	defer ctrl.Close()

	opts.Controller = ctrl
	opts.Source = site
	opts.PageSize = r.config.Site.PageSize

	p := tea.NewProgram(ui.NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	sched.Attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
