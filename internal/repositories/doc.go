// Package repositories implements SQLite persistence for cached preview lookups.
//
// Key Implementations:
//   - [LookupRepository] : lookup results keyed by normalized query, with a hit counter
//   - [LookupCacheAdapter] : the cache seen by tasks.CachedLookup and tasks.BulkLookup
//
// Failed lookups are never stored, so a transient outage is retried on the next run.
package repositories
