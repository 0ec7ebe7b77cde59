// Package models defines the entities shared by the song-list controller, the preview lookup and the lookup cache.
//
// The package contains two categories of types:
//
// 1. Wire types: JSON bodies exchanged with the song-post site and printed by the lookup command
//   - [Song] : one rendered song record from a post page
//   - [SongPage] : the machine-readable response of a post page
//   - [FavoriteEntry] : one row of a user's favorites list
//   - [PreviewLookupResult] : the single-line result of a preview lookup
//
// 2. Persistent entities: database-backed models with lifecycle timestamps
//   - [LookupRecord] : a cached preview lookup keyed by normalized query
//
// Persistent entities implement [Model]; [Repository] is the CRUD contract their stores satisfy.
package models
