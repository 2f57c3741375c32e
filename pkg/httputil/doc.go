// Package httputil fetches remote JSON documents and caches them on disk.
//
// [GetJSON] performs a GET with automatic retry for transient failures,
// meaning connection errors and 5xx responses. [Cache] persists fetched
// payloads together with the time they were fetched; entries older than
// the cache TTL are treated as absent, so callers refetch on their next
// access. Staleness is judged purely by wall-clock entry age, never by
// content comparison.
//
//	cache, err := httputil.NewCache(dir, 24*time.Hour)
//	if raw, ok := cache.GetRaw(url); ok {
//	    return raw, nil
//	}
//	raw, err := httputil.GetJSON(ctx, client, url, nil)
//	if err != nil {
//	    return nil, err
//	}
//	_ = cache.SetRaw(url, raw)
//
// The catalog store and the remote detector tiers share this discipline,
// so deleting the cache directory forces a full refresh everywhere.
package httputil
