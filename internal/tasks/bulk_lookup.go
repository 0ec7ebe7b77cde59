package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
	"golang.org/x/time/rate"
)

// BulkLookupOpts contains configuration for batch lookups.
type BulkLookupOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Uncached lookups per second (default: 5)
}

type lookupJob struct {
	index int
	query string
}

// BulkLookup resolves every query concurrently with rate limiting and progress tracking.
//
// Cache hits skip the limiter. Outcomes keep input order. A cancelled context marks the
// remaining queries as failed rather than dropping them.
func (e *LookupEngine) BulkLookup(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	queries []string,
	opts BulkLookupOpts,
) (*BulkLookupResult, error) {
	if e.lookup == nil {
		return nil, fmt.Errorf("%w: preview lookup not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	total := len(queries)
	result := &BulkLookupResult{Outcomes: make([]LookupOutcome, total)}
	if total == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan lookupJob, total)
	outcomes := make(chan LookupOutcome, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.lookupWorker(ctx, &wg, jobs, outcomes, limiter)
	}

	e.sendProgress(prog, startLookupUpdate(total))
	for i, q := range queries {
		jobs <- lookupJob{index: i, query: q}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	completed := 0
	for o := range outcomes {
		completed++
		result.Outcomes[o.Index] = o
		e.sendProgress(prog, lookupDoneUpdate(completed, total, o))
	}

	result.Tally()
	return result, nil
}

// lookupWorker is a worker goroutine that resolves queries from the jobs channel.
func (e *LookupEngine) lookupWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan lookupJob,
	outcomes chan<- LookupOutcome,
	limiter *rate.Limiter,
) {
	defer wg.Done()

	for job := range jobs {
		o := LookupOutcome{Index: job.index, Query: job.query}
		if err := ctx.Err(); err != nil {
			o.Result = models.LookupError(err)
		} else {
			o.Result, o.Cached = e.resolve(ctx, job.query, limiter.Wait)
		}
		outcomes <- o
	}
}

// SongQuery is the free-text query used to find a song's preview.
func SongQuery(s models.Song) string {
	return strings.TrimSpace(s.Title + " " + s.Artist)
}

// FillPreviews looks up every song without a preview and fills PreviewURL and SpotifyURL
// from the first match. Songs are modified in place; the count of filled songs is returned.
func (e *LookupEngine) FillPreviews(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	songs []models.Song,
	opts BulkLookupOpts,
) (int, error) {
	var (
		queries []string
		targets []int
	)
	for i, s := range songs {
		if s.HasPreview() || SongQuery(s) == "" {
			continue
		}
		queries = append(queries, SongQuery(s))
		targets = append(targets, i)
	}

	res, err := e.BulkLookup(ctx, prog, queries, opts)
	if err != nil {
		return 0, err
	}

	filled := 0
	for i, o := range res.Outcomes {
		song := &songs[targets[i]]
		if url, ok := o.Result.FirstPreview(); ok {
			song.PreviewURL = url
			filled++
		}
		if song.SpotifyURL == "" && o.Result.SpotifyURL != "" {
			song.SpotifyURL = o.Result.SpotifyURL
		}
		if o.Result.Failed() {
			e.logger.Warn("preview lookup failed", "error", o.Result.Error, "song", song.ID)
		}
	}

	e.sendProgress(prog, fillPreviewsUpdate(len(queries), filled))
	return filled, nil
}
