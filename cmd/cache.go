package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// cachedLookup is the JSON view of one cache row.
type cachedLookup struct {
	Query       string    `json:"query"`
	Name        string    `json:"name,omitempty"`
	SpotifyURL  string    `json:"spotifyUrl,omitempty"`
	PreviewURLs []string  `json:"previewUrls"`
	Hits        int       `json:"hits"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CacheList prints cached lookups, newest first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.lookupRepository()
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if cmd.Bool("matched") {
		criteria["matched"] = true
	}

	records, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list cached lookups: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]cachedLookup, len(records))
		for i, rec := range records {
			res := rec.Result()
			out[i] = cachedLookup{
				Query:       rec.Query(),
				Name:        res.Name,
				SpotifyURL:  res.SpotifyURL,
				PreviewURLs: res.PreviewURLs,
				Hits:        rec.Hits(),
				UpdatedAt:   rec.UpdatedAt(),
			}
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(fmt.Sprintf("Cached lookups (%d)", len(records)))
	for _, rec := range records {
		res := rec.Result()
		name := res.Name
		if name == "" {
			name = "(no match)"
		}
		r.writePlain("%s → %s [%d previews, %d hits]\n", rec.Query(), name, len(res.PreviewURLs), rec.Hits())
		if len(res.PreviewURLs) > 0 {
			r.writePlain("    %s\n", strings.Join(res.PreviewURLs, "\n    "))
		}
	}
	return nil
}

// CachePurge deletes cached lookups last refreshed before --older-than.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.lookupRepository()
	if err != nil {
		return err
	}

	age := cmd.Duration("older-than")
	if age < 0 {
		age = 0
	}

	removed, err := repo.Purge(time.Now().Add(-age))
	if err != nil {
		return err
	}

	r.logger.Info("purged cached lookups", "removed", removed, "older_than", age)
	return r.writePlain("✓ Removed %d cached lookups\n", removed)
}
