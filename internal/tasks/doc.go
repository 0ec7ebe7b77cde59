// Package tasks resolves preview lookups in bulk with real-time progress reporting.
//
// # Core Operations
//
//  1. [LookupEngine.Lookup] : one query, through the cache when one is configured
//  2. [LookupEngine.BulkLookup] : many queries over a rate-limited worker pool
//     - Cache hits skip the limiter
//     - Outcomes keep input order; failures are recorded, never fatal
//  3. [LookupEngine.FillPreviews] : look up songs that have no preview and fill them in
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default so a slow consumer never blocks a batch.
//
// # Lookup Caching
//
// The optional [LookupCacher] interface (repositories.LookupCacheAdapter) stores successful
// results keyed by normalized query. Cache write errors are logged and otherwise ignored.
package tasks
