// Package models defines the entities shared by the catalog scanner, the remote service and the sync engine.
//
// Local state:
//   - [LocalEntry] : a track file in the target directory, parsed from its name
//   - [Catalog] : all entries found by one scan, ordered by sequence id
//
// Remote state:
//   - [Playlist] : ordered snapshot of the remote playlist
//   - [RemoteTrack] : one playlist track with opaque stream and cover handles
//   - [Media] : audio stream, cover bytes and lyrics fetched for a track
//
// Run state:
//   - [PendingTrack] : a selected track with its assigned sequence id
//   - [RunSummary] : succeeded and failed tracks of one run
//
// Identity is decided by [TrackKey] alone; sequence ids never take part in deduplication.
package models
