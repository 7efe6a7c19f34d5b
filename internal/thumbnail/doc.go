// Package thumbnail generates and caches photo thumbnails.
//
// Derivatives are 300x200 center-cropped JPEGs written under the output
// directory mirroring the collection layout (<folder>/<original name>),
// so thumbnail URLs are predictable from photo URLs. The in-memory cache
// maps keys to URLs and is rebuilt lazily from disk after a restart.
//
// Generation runs on a bounded worker pool fed by browsing requests;
// when the queue is full, requests are dropped and retried by later
// listings. The synchronous Generate path exists for warm-up and tests.
package thumbnail
