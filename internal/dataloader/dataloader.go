package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/storage"
)

type contextKey string

// Middleware installs a request-scoped loader for collection. Lookups by id
// made while serving the request are batched into one store call and cached
// until the request ends.
func Middleware(collection string, store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := dataloader.NewBatchedLoader(batchFn(store), dataloader.WithWait(time.Millisecond))
			ctx := context.WithValue(r.Context(), contextKey(collection), loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func batchFn(store storage.Storage) dataloader.BatchFunc {
	return func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]string, len(keys))
		for i, key := range keys {
			ids[i] = key.String()
		}

		records, err := store.GetByIDs(ctx, ids)
		results := make([]*dataloader.Result, len(keys))
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// results must follow key order
		for i, id := range ids {
			if rec, ok := records[id]; ok {
				results[i] = &dataloader.Result{Data: rec}
			} else {
				results[i] = &dataloader.Result{Error: storage.ErrNotFound}
			}
		}
		return results
	}
}

// Load resolves id through the request loader of collection, or directly
// through the store when no loader is installed.
func Load(ctx context.Context, collection string, store storage.Storage, id string) (*domain.Record, error) {
	loader, ok := ctx.Value(contextKey(collection)).(*dataloader.Loader)
	if !ok {
		return store.GetByID(ctx, id)
	}
	data, err := loader.Load(ctx, dataloader.StringKey(id))()
	if err != nil {
		return nil, err
	}
	return data.(*domain.Record), nil
}

// Forget drops id from the request cache after the record changed.
func Forget(ctx context.Context, collection, id string) {
	if loader, ok := ctx.Value(contextKey(collection)).(*dataloader.Loader); ok {
		loader.Clear(ctx, dataloader.StringKey(id))
	}
}
