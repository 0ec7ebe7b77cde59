// package tasks implements batch preview lookups against a [services.PreviewLookup].
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/services"
	"github.com/desertthunder/songview/internal/shared"
)

// LookupCacher persists lookup results between runs.
//
// Implemented by repositories.LookupCacheAdapter.
type LookupCacher interface {
	CachedLookup(query string) (models.PreviewLookupResult, bool)
	CacheLookup(query string, result models.PreviewLookupResult) error
}

// LookupOutcome is the result for one query of a batch.
type LookupOutcome struct {
	Index  int                        // Position in the input
	Query  string                     // Query as given
	Result models.PreviewLookupResult // Lookup result, never nil-shaped
	Cached bool                       // Served from the cache
}

// BulkLookupResult contains every outcome of a batch in input order.
type BulkLookupResult struct {
	Outcomes  []LookupOutcome
	Matched   int // Outcomes with a track
	NoMatch   int // Outcomes with no track
	Failed    int // Outcomes carrying an error
	CacheHits int // Outcomes served from the cache
}

// LookupEngine resolves queries through a preview lookup with an optional cache.
type LookupEngine struct {
	lookup services.PreviewLookup
	cache  LookupCacher
	logger *log.Logger
}

// NewLookupEngine creates a new LookupEngine. cache may be nil.
func NewLookupEngine(lookup services.PreviewLookup, cache LookupCacher, logger *log.Logger) *LookupEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LookupEngine{lookup: lookup, cache: cache, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *LookupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Lookup resolves a single query, consulting and filling the cache.
//
// LookupEngine satisfies [services.PreviewLookup] so the single-shot command shares the cache.
func (e *LookupEngine) Lookup(ctx context.Context, query string) models.PreviewLookupResult {
	out, _ := e.resolve(ctx, query, nil)
	return out
}

// resolve runs one lookup. wait, when set, is called before a non-cached lookup.
func (e *LookupEngine) resolve(ctx context.Context, query string, wait func(context.Context) error) (models.PreviewLookupResult, bool) {
	if e.lookup == nil {
		return models.LookupError(fmt.Errorf("%w: preview lookup not initialized", shared.ErrServiceUnavailable)), false
	}
	if strings.TrimSpace(query) == "" {
		return models.LookupError(fmt.Errorf("%w: query is required", shared.ErrMissingArgument)), false
	}

	if e.cache != nil {
		if result, ok := e.cache.CachedLookup(query); ok {
			e.logger.Debug("lookup cache hit", "query", query)
			return result, true
		}
	}

	if wait != nil {
		if err := wait(ctx); err != nil {
			return models.LookupError(err), false
		}
	}

	result := e.lookup.Lookup(ctx, query)
	if e.cache != nil && !result.Failed() {
		if err := e.cache.CacheLookup(query, result); err != nil {
			e.logger.Warn("failed to cache lookup", "error", err, "query", query)
		}
	}
	return result, false
}

// Tally recounts the summary fields from Outcomes.
func (r *BulkLookupResult) Tally() {
	r.Matched, r.NoMatch, r.Failed, r.CacheHits = 0, 0, 0, 0
	for _, o := range r.Outcomes {
		switch {
		case o.Result.Failed():
			r.Failed++
		case o.Result.Matched():
			r.Matched++
		default:
			r.NoMatch++
		}
		if o.Cached {
			r.CacheHits++
		}
	}
}
