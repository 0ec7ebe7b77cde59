// Site client for the song-post web app
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
)

const defaultSiteURL = "http://127.0.0.1:5000"

// SiteClient makes session-authenticated requests to the song-post site.
type SiteClient struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	cookie     string
}

// APIResponse is a raw site response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
}

// NewSiteClient creates a client for baseURL. session may be nil for anonymous browsing.
//
// The client's redirect policy is replaced so redirects are returned, not followed.
func NewSiteClient(baseURL string, client *http.Client, session *shared.SiteSession) *SiteClient {
	if baseURL == "" {
		baseURL = defaultSiteURL
	}
	if client == nil {
		client = &http.Client{}
	} else {
		c := *client
		client = &c
	}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	s := &SiteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		headers:    map[string]string{},
	}
	if session != nil {
		for k, v := range session.Headers {
			s.headers[k] = v
		}
		s.cookie = session.Cookie
	}
	return s
}

// NewSiteClientFromConfig builds a client from [shared.SiteConfig], loading the headers file
// when one is configured. session_cookie is sent as the "session" cookie and wins over the file.
func NewSiteClientFromConfig(cfg shared.SiteConfig) (*SiteClient, error) {
	session := &shared.SiteSession{Headers: map[string]string{}}
	if cfg.HeadersPath != "" {
		loaded, err := shared.LoadHeadersFile(cfg.HeadersPath)
		if err != nil {
			return nil, err
		}
		session = loaded
	}

	if cfg.SessionCookie != "" {
		session.Cookie = mergeCookie(session.Cookie, "session", cfg.SessionCookie)
	}

	return NewSiteClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout()}, session), nil
}

// mergeCookie sets name=value in a cookie header string, replacing any existing pair.
func mergeCookie(header, name, value string) string {
	parts := []string{name + "=" + value}
	for _, pair := range strings.Split(header, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" || strings.HasPrefix(pair, name+"=") {
			continue
		}
		parts = append(parts, pair)
	}
	return strings.Join(parts, "; ")
}

// BaseURL returns the site root without a trailing slash.
func (s *SiteClient) BaseURL() string {
	return s.baseURL
}

// resolve turns a site path or absolute URL into a request URL.
func (s *SiteClient) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return s.baseURL + target
}

func (s *SiteClient) do(req *http.Request) (*APIResponse, error) {
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	if s.cookie != "" {
		req.Header.Set("Cookie", s.cookie)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		IsJSON:     json.Valid(body) && len(body) > 0,
	}, nil
}

// Get performs a GET request to path and returns the raw response.
func (s *SiteClient) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.resolve(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return s.do(req)
}

// Post performs a POST request to path with the given body and returns the raw response.
// A nil body sends no content.
func (s *SiteClient) Post(ctx context.Context, path, contentType string, body io.Reader) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return s.do(req)
}

// PostForm submits values as a urlencoded form and returns the status code.
// Empty values post no body, as a bare form submission does.
func (s *SiteClient) PostForm(ctx context.Context, action string, values url.Values) (int, error) {
	var body io.Reader
	if len(values) > 0 {
		body = strings.NewReader(values.Encode())
	}

	resp, err := s.Post(ctx, action, "application/x-www-form-urlencoded", body)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// Songs fetches the page of postID starting at offset in its JSON form.
func (s *SiteClient) Songs(ctx context.Context, postID string, offset int) ([]models.Song, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", shared.ErrInvalidArgument)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0", shared.ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("json", "true")

	var page models.SongPage
	if err := s.getJSON(ctx, "/posts/"+url.PathEscape(postID)+"?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	if page.Songs == nil {
		page.Songs = []models.Song{}
	}
	return page.Songs, nil
}

// Favorites fetches a user's favorites list in its JSON form.
func (s *SiteClient) Favorites(ctx context.Context, userID string) (*models.FavoritesPage, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", shared.ErrInvalidArgument)
	}

	var page models.FavoritesPage
	if err := s.getJSON(ctx, "/users/"+url.PathEscape(userID)+"/favorited?json=true", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *SiteClient) getJSON(ctx context.Context, path string, dst any) error {
	resp, err := s.Get(ctx, path)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned %d", shared.ErrUnexpectedStatus, path, resp.StatusCode)
	}
	if !resp.IsJSON {
		return fmt.Errorf("%w: GET %s did not return JSON", shared.ErrAPIRequest, path)
	}
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
