package songlist

import (
	"context"
	"net/url"

	"github.com/desertthunder/songview/internal/models"
)

// Site is the slice of the song-post site the controller talks to.
type Site interface {
	// Songs fetches the page of postID starting at offset.
	Songs(ctx context.Context, postID string, offset int) ([]models.Song, error)
	// PostForm submits values to action and returns the response status.
	// A nil or empty values posts no body.
	PostForm(ctx context.Context, action string, values url.Values) (int, error)
}
