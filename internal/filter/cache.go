package filter

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// retainedTables bounds the LRU that holds fully-released tables.
// Sinc tables are ~100 KiB each, so this caps retained memory at a few
// MiB while sparing links that churn from rebuilding on reacquire.
const retainedTables = 32

// tableCache shares lazily-built coefficient tables between filter
// instances. Live entries are reference-counted: the entry stays while
// any holder exists and at most one builder runs per key, with
// concurrent requesters waiting on the in-flight build. When the last
// reference drops, the table moves to a bounded LRU instead of being
// discarded, so a transient release does not force a rebuild.
//
// The cache has its own lock and is never held together with any other
// lock in the core.
type tableCache[K comparable] struct {
	mu       sync.Mutex
	once     sync.Once
	entries  map[K]*cacheEntry
	retained *lru.Cache[K, *CoefficientTable]
}

type cacheEntry struct {
	table *CoefficientTable
	refs  int
	ready chan struct{} // closed once table is set
}

// TableRef is a counted handle on a shared coefficient table.
// Release must be called exactly once when the holder is done.
type TableRef[K comparable] struct {
	cache *tableCache[K]
	key   K
	table *CoefficientTable
}

// Table returns the shared table.
func (r *TableRef[K]) Table() *CoefficientTable { return r.table }

// Release drops this handle's reference.
func (r *TableRef[K]) Release() {
	r.cache.release(r.key)
	r.table = nil
}

func (c *tableCache[K]) init() {
	c.once.Do(func() {
		c.entries = make(map[K]*cacheEntry)
		retained, err := lru.New[K, *CoefficientTable](retainedTables)
		if err != nil {
			// Only reachable with a non-positive size constant.
			panic(err)
		}
		c.retained = retained
	})
}

// get returns a counted handle for key, building the table on first
// use. build runs on the caller's goroutine, outside the cache lock;
// other goroutines requesting the same key block until it completes.
func (c *tableCache[K]) get(key K, build func() *CoefficientTable) *TableRef[K] {
	c.init()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.refs++
		c.mu.Unlock()
		<-e.ready
		return &TableRef[K]{cache: c, key: key, table: e.table}
	}

	if table, ok := c.retained.Get(key); ok {
		c.retained.Remove(key)
		e := &cacheEntry{table: table, refs: 1, ready: closedChan()}
		c.entries[key] = e
		c.mu.Unlock()
		return &TableRef[K]{cache: c, key: key, table: table}
	}

	e := &cacheEntry{refs: 1, ready: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	table := build()

	c.mu.Lock()
	e.table = table
	close(e.ready)
	c.mu.Unlock()

	return &TableRef[K]{cache: c, key: key, table: table}
}

func (c *tableCache[K]) release(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(c.entries, key)
	c.retained.Add(key, e.table)
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
