// Package snapshot persists committed markup.
//
// A Publisher renders the document on the scheduler loop right after a
// commit and hands the result to a background goroutine, which writes it
// to a Store. The loop never waits on storage; when commits outpace the
// store, only the newest pending snapshot is written.
//
// Stores are keyed by name. FileStore writes one JSON file per key,
// S3Store one object per key, RedisStore one string per key with an
// optional TTL and a sorted-set index for List.
package snapshot
