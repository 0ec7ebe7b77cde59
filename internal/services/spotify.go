// Spotify implementation of [PreviewLookup]
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyEmbedURL = "https://open.spotify.com/embed/track/"
	maxEmbedBytes   = 2 << 20
)

var previewPattern = regexp.MustCompile(`https://p\.scdn\.co/mp3-preview/[A-Za-z0-9]+(?:\?[^"'\s\\<>]*)?`)

// SpotifyOptions overrides endpoints, mainly for tests.
type SpotifyOptions struct {
	APIBaseURL   string
	TokenURL     string
	EmbedBaseURL string
	HTTPClient   *http.Client
}

// SpotifyLookup finds previews through the Spotify Web API and the track embed page.
type SpotifyLookup struct {
	client     *spotify.Client
	web        *http.Client
	embedURL   string
	maxResults int
	market     string
	logger     *log.Logger
}

// NewSpotifyLookup authenticates with the client-credentials flow.
// Tokens are fetched lazily and refreshed by the oauth2 transport.
func NewSpotifyLookup(ctx context.Context, creds shared.SpotifyConfig, cfg shared.LookupConfig, opts SpotifyOptions, logger *log.Logger) (*SpotifyLookup, error) {
	if !creds.HasCredentials() {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	web := opts.HTTPClient
	if web == nil {
		web = http.DefaultClient
	}
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	embedURL := opts.EmbedBaseURL
	if embedURL == "" {
		embedURL = spotifyEmbedURL
	}

	conf := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
	}
	authed := conf.Client(context.WithValue(ctx, oauth2.HTTPClient, web))

	var clientOpts []spotify.ClientOption
	if opts.APIBaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(strings.TrimRight(opts.APIBaseURL, "/")+"/"))
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 1
	}

	return &SpotifyLookup{
		client:     spotify.New(authed, clientOpts...),
		web:        web,
		embedURL:   embedURL,
		maxResults: maxResults,
		market:     creds.Market,
		logger:     logger,
	}, nil
}

// Lookup searches for query and returns the first track's name, link and previews.
// With more than one result requested, the first track that has a preview wins.
func (s *SpotifyLookup) Lookup(ctx context.Context, query string) models.PreviewLookupResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.LookupError(fmt.Errorf("%w: query is required", shared.ErrMissingArgument))
	}

	opts := []spotify.RequestOption{spotify.Limit(s.maxResults)}
	if s.market != "" {
		opts = append(opts, spotify.Market(s.market))
	}

	results, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, opts...)
	if err != nil {
		s.logger.Error("spotify search failed", "error", err, "query", query)
		return models.LookupError(fmt.Errorf("spotify search failed: %w", err))
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		s.logger.Debug("no tracks matched", "query", query)
		return models.NoMatch()
	}

	var first *models.PreviewLookupResult
	for i := range results.Tracks.Tracks {
		if i >= s.maxResults {
			break
		}
		track := &results.Tracks.Tracks[i]
		result := models.PreviewLookupResult{
			Name:        track.Name,
			SpotifyURL:  trackURL(track),
			PreviewURLs: s.previews(ctx, track),
		}
		if len(result.PreviewURLs) > 0 {
			return result
		}
		if first == nil {
			first = &result
		}
	}
	return *first
}

func trackURL(track *spotify.FullTrack) string {
	if u, ok := track.ExternalURLs["spotify"]; ok && u != "" {
		return u
	}
	if track.ID != "" {
		return "https://open.spotify.com/track/" + string(track.ID)
	}
	return ""
}

// previews collects the API preview and any embed-page previews, first seen first.
func (s *SpotifyLookup) previews(ctx context.Context, track *spotify.FullTrack) []string {
	urls := []string{}
	seen := map[string]bool{}
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	add(track.PreviewURL)

	if track.ID != "" {
		scraped, err := s.scrapeEmbed(ctx, string(track.ID))
		if err != nil {
			s.logger.Warn("failed to read embed page", "error", err, "track", track.ID)
		}
		for _, u := range scraped {
			add(u)
		}
	}
	return urls
}

func (s *SpotifyLookup) scrapeEmbed(ctx context.Context, trackID string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.embedURL+trackID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; songview)")

	resp, err := s.web.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: embed page returned %d", shared.ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEmbedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read embed page: %w", err)
	}
	return ExtractPreviewURLs(string(body)), nil
}

// ExtractPreviewURLs returns the distinct mp3 preview URLs in page, in order of appearance.
func ExtractPreviewURLs(page string) []string {
	page = strings.ReplaceAll(page, `\u002F`, "/")
	page = strings.ReplaceAll(page, `\/`, "/")

	var urls []string
	seen := map[string]bool{}
	for _, u := range previewPattern.FindAllString(page, -1) {
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}
