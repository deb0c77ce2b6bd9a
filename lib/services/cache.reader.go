package services

import (
	"context"

	"arena/lib/ledger"
)

// CachedReader is a read-through wrapper over the ledger client. Single and
// multi object fetches go through the shared object cache; dynamic-field
// enumerations and owned-object listings always hit the network because
// their results change under the parent id without the id itself changing.
type CachedReader struct {
	reader ledger.Reader
	cache  ObjectCache
}

func NewCachedReader(reader ledger.Reader, cache ObjectCache) *CachedReader {
	return &CachedReader{
		reader: reader,
		cache:  cache,
	}
}

func (cached *CachedReader) GetObject(ctx context.Context, id string, opts ledger.ObjectOptions) (*ledger.ObjectData, error) {
	if object, ok := cached.cache.GetObject(ctx, id); ok {
		return object, nil
	}
	object, err := cached.reader.GetObject(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	cached.cache.SetObject(ctx, id, object)
	return object, nil
}

func (cached *CachedReader) MultiGetObjects(ctx context.Context, ids []string, opts ledger.ObjectOptions) ([]*ledger.ObjectData, error) {
	objects := make([]*ledger.ObjectData, len(ids))
	var missing []string
	var missing_idx []int
	for i, id := range ids {
		if object, ok := cached.cache.GetObject(ctx, id); ok {
			objects[i] = object
			continue
		}
		missing = append(missing, id)
		missing_idx = append(missing_idx, i)
	}
	if len(missing) == 0 {
		return objects, nil
	}

	fetched, err := cached.reader.MultiGetObjects(ctx, missing, opts)
	if err != nil {
		return nil, err
	}
	for i, object := range fetched {
		objects[missing_idx[i]] = object
		if object != nil {
			cached.cache.SetObject(ctx, missing[i], object)
		}
	}
	return objects, nil
}

func (cached *CachedReader) GetDynamicFields(ctx context.Context, parentID string) ([]ledger.DynamicFieldRef, error) {
	return cached.reader.GetDynamicFields(ctx, parentID)
}

func (cached *CachedReader) GetOwnedObjects(ctx context.Context, owner string, structType string, opts ledger.ObjectOptions) ([]*ledger.ObjectData, error) {
	return cached.reader.GetOwnedObjects(ctx, owner, structType, opts)
}

// Invalidate force-evicts the given object ids so the next read is forced to
// hit the network. This is the only path that evicts shared cache entries.
func (cached *CachedReader) Invalidate(ctx context.Context, ids []string) {
	cached.cache.InvalidateObjects(ctx, ids)
}
