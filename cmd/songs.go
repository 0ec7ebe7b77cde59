package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/songview/internal/formatter"
	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/desertthunder/songview/internal/songlist"
	"github.com/desertthunder/songview/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Songs fetches a post's songs and prints or writes them in the requested format.
//
// With --all the pages are loaded through the same paginator the interactive view uses,
// driven by a headless event loop.
func (r *Runner) Songs(ctx context.Context, cmd *cli.Command) error {
	postID := cmd.StringArg("post-id")
	if postID == "" {
		return fmt.Errorf("%w: post-id", shared.ErrMissingArgument)
	}

	offset := int(cmd.Int("offset"))
	all := cmd.Bool("all")
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", shared.ErrInvalidArgument)
	}
	if all && offset > 0 {
		return fmt.Errorf("%w: --all always starts from the first song", shared.ErrInvalidArgument)
	}

	site, err := r.siteClient()
	if err != nil {
		return err
	}

	var songs []models.Song
	if all {
		songs, err = r.collectSongs(ctx, site, postID)
	} else {
		songs, err = site.Songs(ctx, postID, offset)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch songs for post %s: %w", postID, err)
	}
	r.logger.Info("fetched songs", "post", postID, "count", len(songs))

	if cmd.Bool("fill-previews") {
		if err := r.fillPreviews(ctx, songs, cmd.Bool("cache")); err != nil {
			return err
		}
	}

	export := &formatter.SongExport{
		Title:  fmt.Sprintf("Post %s", postID),
		Source: sourceURL(site, "/posts/"+postID),
		Songs:  songs,
	}
	return r.writeExport(export, cmd.String("format"), cmd.String("output"))
}

// collectSongs loads every page of postID.
func (r *Runner) collectSongs(ctx context.Context, site SiteClient, postID string) ([]models.Song, error) {
	first, err := site.Songs(ctx, postID, 0)
	if err != nil {
		return nil, err
	}

	pageSize := r.config.Site.PageSize
	loop := songlist.NewLoop(ctx)
	ctrl := songlist.NewController(songlist.Options{
		Context:   ctx,
		Site:      site,
		Scheduler: loop,
		Logger:    shared.WithLogger(r.logger, "component", "songlist"),
		PageSize:  pageSize,
	})
	defer ctrl.Close()

	view := songlist.NewSongListView(postID, first, songlist.HasMore(len(first), pageSize))
	ctrl.AttachSongs(view)

	for !view.Exhausted() {
		before := view.Offset()
		if err := ctrl.LoadMore(); err != nil {
			break
		}
		if err := loop.RunUntilIdle(ctx); err != nil {
			return nil, err
		}
		// A failed page leaves the control in place with nothing appended.
		if !view.Exhausted() && view.Offset() == before {
			return nil, fmt.Errorf("%w: page at offset %d failed", shared.ErrAPIRequest, before)
		}
		r.logger.Debug("loaded page", "post", postID, "songs", view.Offset())
	}

	entries := view.List.Entries()
	songs := make([]models.Song, len(entries))
	for i, e := range entries {
		songs[i] = e.Song
	}
	return songs, nil
}

// fillPreviews looks up previews for songs that lack one, in place.
func (r *Runner) fillPreviews(ctx context.Context, songs []models.Song, useCache bool) error {
	engine := r.lookupEngine(ctx, useCache)
	opts := tasks.BulkLookupOpts{NumWorkers: r.config.Lookup.Workers, RateLimit: r.config.Lookup.RateLimit}

	filled, err := engine.FillPreviews(ctx, nil, songs, opts)
	if err != nil {
		return fmt.Errorf("failed to fill previews: %w", err)
	}
	r.logger.Info("filled previews", "count", filled)
	return nil
}

// writeExport renders export to stdout, or writes it to path when one is given.
func (r *Runner) writeExport(export *formatter.SongExport, format, path string) error {
	if path != "" {
		files, err := formatter.WriteExport(export, format, path)
		if err != nil {
			return err
		}
		for _, f := range files {
			r.logger.Info("wrote export", "path", f)
		}
		return nil
	}

	data, err := formatter.Render(export, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		return r.writePlain("\n")
	}
	return nil
}

// sourceURL is the page URL for path when the client knows its base URL.
func sourceURL(site SiteClient, path string) string {
	if b, ok := site.(interface{ BaseURL() string }); ok {
		return strings.TrimRight(b.BaseURL(), "/") + path
	}
	return ""
}
