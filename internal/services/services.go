// package services implements the HTTP collaborators: the song-post site and the preview lookup.
package services

import (
	"context"

	"github.com/desertthunder/songview/internal/models"
)

// PreviewLookup resolves a free-text query to a track and its preview URLs.
//
// Lookup never fails with a Go error: every failure folds into the result's Error field,
// so callers always have exactly one result to print.
type PreviewLookup interface {
	Lookup(ctx context.Context, query string) models.PreviewLookupResult
}

// SongSource is the read side of the song-post site.
type SongSource interface {
	Songs(ctx context.Context, postID string, offset int) ([]models.Song, error)
	Favorites(ctx context.Context, userID string) (*models.FavoritesPage, error)
}
