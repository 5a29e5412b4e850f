package metadata

import (
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// Cache wraps ReadBatches with an mtime-keyed LRU so a hot metadata log
// doesn't get parsed from scratch on every request, while still handing
// back fresh data the moment the file on disk changes (spec.md §9 design
// note: "may cache, must mtime-invalidate"). Modeled on the lru.Cache
// field shown in kryptco-kr's ssh agent (a single fixed-size cache guarding
// a slow lookup behind a mutex).
type Cache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

type cacheEntry struct {
	mtime   int64
	size    int64
	batches []RecordBatch
}

// NewCache builds a Cache holding up to size distinct log paths.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "metadata: building cache")
	}
	return &Cache{cache: c}, nil
}

// ReadBatchesFile returns the decoded batches for path, reusing a cached
// decode only if the file's mtime and size haven't changed since.
func (c *Cache) ReadBatchesFile(path string) ([]RecordBatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "metadata: stat %s", path)
	}

	if v, ok := c.cache.Get(path); ok {
		entry := v.(cacheEntry)
		if entry.mtime == info.ModTime().UnixNano() && entry.size == info.Size() {
			return entry.batches, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "metadata: open %s", path)
	}
	defer f.Close()

	batches, err := ReadBatches(f)
	if err != nil {
		return nil, err
	}

	c.cache.Add(path, cacheEntry{
		mtime:   info.ModTime().UnixNano(),
		size:    info.Size(),
		batches: batches,
	})
	return batches, nil
}
