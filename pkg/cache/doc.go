// Package cache implements the read-through cache layer that sits in front
// of the platform's expensive aggregate queries: quiz lists, quiz detail,
// leaderboards, and AI generation results.
//
// The central primitive is [Fetch], a cache-aside fetch-or-compute keyed by
// string. The backing store is Redis, connected lazily on first use. Both
// the connection and every individual operation degrade gracefully: a
// missing endpoint, a failed dial, a read error, or a malformed payload all
// behave as a cache miss, and write-backs are fire-and-forget. Callers never
// see a cache-layer error; only latency changes.
//
//	store := cache.New(cfg, cache.WithLogger(log))
//	defer store.Close()
//
//	quiz, found, err := cache.Fetch(ctx, store, cache.QuizDetailKey(id), cfg.DetailTTL,
//	    func(ctx context.Context) (Quiz, bool, error) {
//	        return queries.QuizByID(ctx, id)
//	    })
//
// A compute that finds nothing is remembered too: the not-found marker is
// cached with its own short TTL so repeated lookups of a nonexistent id do
// not hammer the data layer.
//
// Writers invalidate with [Store.Invalidate] and the pattern builders in
// keys.go. Invalidation sweeps the keyspace with cursor-based SCAN in
// bounded batches and is best-effort, like everything else here.
package cache
