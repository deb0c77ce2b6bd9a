package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"arena/lib/ledger"

	"github.com/redis/go-redis/v9"
)

// OBJECT_TTL sits under the 5s poll interval so every polling tick observes
// fresh ledger state while burst reads within one tick share entries.
const OBJECT_TTL = 3 * time.Second

// ObjectCache is the ledger-read cache shared across all sync components,
// keyed by object id. Only InvalidateObjects force-evicts entries; everything
// else ages out by TTL.
type ObjectCache interface {
	GetObject(ctx context.Context, id string) (*ledger.ObjectData, bool)
	SetObject(ctx context.Context, id string, object *ledger.ObjectData)
	InvalidateObjects(ctx context.Context, ids []string)
}

func objectKey(id string) string {
	return fmt.Sprintf("ledger:object:%s", id)
}

func (cache *Cache) GetObject(ctx context.Context, id string) (*ledger.ObjectData, bool) {
	object_json, err := cache.Db.Get(ctx, objectKey(id)).Result()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		slog.Debug("object cache read failed, falling back to ledger", "object_id", id, "error", err)
		return nil, false
	}

	var object ledger.ObjectData
	if err := json.Unmarshal([]byte(object_json), &object); err != nil {
		return nil, false
	}
	return &object, true
}

func (cache *Cache) SetObject(ctx context.Context, id string, object *ledger.ObjectData) {
	object_json, err := json.Marshal(object)
	if err != nil {
		return
	}
	if err := cache.Db.Set(ctx, objectKey(id), object_json, OBJECT_TTL).Err(); err != nil {
		slog.Debug("object cache write failed", "object_id", id, "error", err)
	}
}

func (cache *Cache) InvalidateObjects(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, objectKey(id))
	}
	if err := cache.Db.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("object cache invalidation failed", "count", len(keys), "error", err)
	}
}

// MemoryCache is the in-process ObjectCache used when no redis address is
// configured, and by tests.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	object    *ledger.ObjectData
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
	}
}

func (cache *MemoryCache) GetObject(ctx context.Context, id string) (*ledger.ObjectData, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	entry, ok := cache.entries[id]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(cache.entries, id)
		return nil, false
	}
	return entry.object, true
}

func (cache *MemoryCache) SetObject(ctx context.Context, id string, object *ledger.ObjectData) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.entries[id] = memoryEntry{
		object:    object,
		expiresAt: time.Now().Add(OBJECT_TTL),
	}
}

func (cache *MemoryCache) InvalidateObjects(ctx context.Context, ids []string) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	for _, id := range ids {
		delete(cache.entries, id)
	}
}
