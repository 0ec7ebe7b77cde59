package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
)

// LookupCacheAdapter implements tasks.LookupCacher using LookupRepository.
//
// Entries older than TTL are treated as misses. A zero TTL never expires entries.
type LookupCacheAdapter struct {
	repo *LookupRepository
	TTL  time.Duration
}

// NewLookupCacheAdapter creates a new LookupCacheAdapter with the given repository
func NewLookupCacheAdapter(repo *LookupRepository, ttl time.Duration) *LookupCacheAdapter {
	return &LookupCacheAdapter{repo: repo, TTL: ttl}
}

// CachedLookup returns the stored result for query and counts the hit.
func (a *LookupCacheAdapter) CachedLookup(query string) (models.PreviewLookupResult, bool) {
	rec, err := a.repo.GetByQuery(shared.NormalizeQuery(query))
	if err != nil {
		return models.PreviewLookupResult{}, false
	}
	if a.TTL > 0 && time.Since(rec.UpdatedAt()) > a.TTL {
		return models.PreviewLookupResult{}, false
	}

	_ = a.repo.Touch(rec.ID())
	return rec.Result(), true
}

// CacheLookup stores result for query, replacing any earlier entry.
// Failed results are skipped without error.
func (a *LookupCacheAdapter) CacheLookup(query string, result models.PreviewLookupResult) error {
	if result.Failed() {
		return nil
	}

	key := shared.NormalizeQuery(query)
	existing, err := a.repo.GetByQuery(key)
	if err == nil {
		existing.SetResult(result)
		return a.repo.Update(existing)
	}
	if !errors.Is(err, shared.ErrRecordNotFound) {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	if err := a.repo.Create(models.NewLookupRecord(key, strings.TrimSpace(query), result)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache lookup: %w", err)
	}
	return nil
}
