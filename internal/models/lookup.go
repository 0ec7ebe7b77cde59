package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PreviewLookupResult is what one preview lookup resolves to.
//
// It serializes to exactly one of three shapes:
//
//	{"name":..., "spotifyUrl":..., "previewUrls":[...]}
//	{"previewUrls":[]}
//	{"error":...}
type PreviewLookupResult struct {
	Name        string
	SpotifyURL  string
	PreviewURLs []string
	Error       string
}

// NoMatch is the result for a query with no matching track.
func NoMatch() PreviewLookupResult {
	return PreviewLookupResult{PreviewURLs: []string{}}
}

// LookupError folds err into an error-shaped result.
func LookupError(err error) PreviewLookupResult {
	if err == nil {
		return NoMatch()
	}
	return PreviewLookupResult{Error: err.Error()}
}

// Failed reports whether the result carries an error.
func (r PreviewLookupResult) Failed() bool {
	return r.Error != ""
}

// Matched reports whether a track was found.
func (r PreviewLookupResult) Matched() bool {
	return !r.Failed() && r.Name != ""
}

// FirstPreview returns the first candidate preview URL, if any.
func (r PreviewLookupResult) FirstPreview() (string, bool) {
	if len(r.PreviewURLs) == 0 {
		return "", false
	}
	return r.PreviewURLs[0], true
}

type lookupWire struct {
	Name        string    `json:"name,omitempty"`
	SpotifyURL  string    `json:"spotifyUrl,omitempty"`
	PreviewURLs *[]string `json:"previewUrls,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// MarshalJSON keeps previewUrls present (possibly empty) unless the result is an error.
func (r PreviewLookupResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(lookupWire{Error: r.Error})
	}

	urls := r.PreviewURLs
	if urls == nil {
		urls = []string{}
	}
	return json.Marshal(lookupWire{Name: r.Name, SpotifyURL: r.SpotifyURL, PreviewURLs: &urls})
}

// UnmarshalJSON reads any of the three result shapes.
func (r *PreviewLookupResult) UnmarshalJSON(data []byte) error {
	var w lookupWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = PreviewLookupResult{Name: w.Name, SpotifyURL: w.SpotifyURL, Error: w.Error}
	if w.PreviewURLs != nil {
		r.PreviewURLs = *w.PreviewURLs
	} else if w.Error == "" {
		r.PreviewURLs = []string{}
	}
	return nil
}

// MarshalLine renders the result as one JSON line terminated by a newline.
func (r PreviewLookupResult) MarshalLine() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// LookupRecord is a cached lookup result keyed by normalized query.
type LookupRecord struct {
	id        string
	queryKey  string
	query     string
	result    PreviewLookupResult
	hits      int
	createdAt time.Time
	updatedAt time.Time
}

// NewLookupRecord creates a record for query holding result.
// queryKey is the normalized form used for cache hits.
func NewLookupRecord(queryKey, query string, result PreviewLookupResult) *LookupRecord {
	now := time.Now()
	return &LookupRecord{
		queryKey:  queryKey,
		query:     query,
		result:    result,
		createdAt: now,
		updatedAt: now,
	}
}

func (l *LookupRecord) ID() string                  { return l.id }
func (l *LookupRecord) QueryKey() string            { return l.queryKey }
func (l *LookupRecord) Query() string               { return l.query }
func (l *LookupRecord) Result() PreviewLookupResult { return l.result }
func (l *LookupRecord) Hits() int                   { return l.hits }
func (l *LookupRecord) CreatedAt() time.Time        { return l.createdAt }
func (l *LookupRecord) UpdatedAt() time.Time        { return l.updatedAt }

func (l *LookupRecord) SetID(id string)                      { l.id = id }
func (l *LookupRecord) SetHits(n int)                        { l.hits = n }
func (l *LookupRecord) SetCreatedAt(t time.Time)             { l.createdAt = t }
func (l *LookupRecord) SetUpdatedAt(t time.Time)             { l.updatedAt = t }
func (l *LookupRecord) SetResult(result PreviewLookupResult) { l.result = result }

// Validate rejects records that must never reach the cache.
// Error results are not cached so a transient outage is retried on the next lookup.
func (l *LookupRecord) Validate() error {
	if strings.TrimSpace(l.queryKey) == "" {
		return errors.New("query key is required")
	}
	if l.result.Failed() {
		return fmt.Errorf("refusing to cache failed lookup: %s", l.result.Error)
	}
	return nil
}
