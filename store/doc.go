// Package store persists finished run reports.
//
// Storage goes through the [Adapter] interface, a small key-value contract
// over JSON values. [MemoryAdapter] keeps values in process; [RedisAdapter]
// keeps them in Redis with an optional TTL.
//
// [Collection] adds typed access on top of an adapter:
//
//	runs := store.NewCollection[agent.Result](store.NewMemoryAdapter())
//	if err := runs.Save(ctx, result.TaskID, *result); err != nil {
//	    return err
//	}
//
//	r, err := runs.Load(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // unknown or expired
//	}
package store
