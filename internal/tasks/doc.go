// Package tasks mirrors a remote playlist into a directory of numbered audio files with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines two operations:
//
//  1. [SyncEngine.Run] : Incremental sync
//     - Takes an advisory lock on the target directory
//     - Scans the directory before any network activity
//     - Fetches the playlist and reconciles it against the catalog by identity key
//     - Acquires up to the quota of missing tracks, numbered after the highest local id
//
//  2. [SyncEngine.Plan] : Dry run
//     - Same scan, fetch and reconcile steps
//     - Returns the pending list without downloading or cleaning up
//
// # Pipeline
//
// [Reconcile], [Select] and [Assign] are pure functions over the catalog and the remote snapshot.
// [Driver] consumes the pending list strictly in order: download to a temp file, tag through [TagWriter],
// rename into place. A failed track is recorded and does not consume its id.
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
