// Package songlist drives an interactive song list: single-track preview playback,
// favorite toggling and removal, the favorites visibility preference and "load more" pagination.
//
// All state mutation happens on one loop. Network calls are [Task]s run off the loop by a
// [Scheduler]; each returns a [Completion] that the scheduler applies back on the loop.
// Overlapping triggers on the same control are not serialized.
//
// Components:
//   - [Player] : owns the one playback session and reports progress
//   - [FavoriteToggler] : flips a heart after the site confirms
//   - [FavoriteRemover] : drops a favorites row after the site confirms
//   - [VisibilityUpdater] : fire-and-forget favorites visibility
//   - [Paginator] : appends the next page of a post's songs
//   - [Controller] : composition root with an idempotent binding registry
package songlist
