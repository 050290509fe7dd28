package preview

import (
	"container/list"
	"hash/fnv"
	"sync"
)

// DefaultCacheBytes bounds the total size of cached preview content.
const DefaultCacheBytes = 8 * 1024 * 1024

// Key identifies a cached preview. The channel revision is part of the
// key so a channel switch can never serve stale content; the output hash
// (not the raw text) is used because two entries with different raw text
// may produce the same preview target.
type Key struct {
	Revision uint64
	Output   uint64
}

// NewKey hashes an entry's output under a channel revision.
func NewKey(revision uint64, output string) Key {
	h := fnv.New64a()
	_, _ = h.Write([]byte(output))
	return Key{Revision: revision, Output: h.Sum64()}
}

type cacheItem struct {
	key     Key
	content Content
	size    int
}

// cache is a byte-bounded LRU. Failures are cached too, so a known-broken
// preview command is not re-run for the same entry.
type cache struct {
	mutex    sync.Mutex
	maxBytes int
	bytes    int
	order    *list.List // front = most recent
	items    map[Key]*list.Element
}

func newCache(maxBytes int) *cache {
	if maxBytes <= 0 {
		maxBytes = DefaultCacheBytes
	}
	return &cache{
		maxBytes: maxBytes,
		order:    list.New(),
		items:    make(map[Key]*list.Element),
	}
}

// get returns the cached content and marks it recently used.
func (c *cache) get(k Key) (Content, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	el, ok := c.items[k]
	if !ok {
		return Content{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem).content, true
}

// put stores content, evicting least-recently-used items past the byte
// bound. A single oversized item is still stored; it just evicts the rest.
func (c *cache) put(k Key, content Content) {
	size := len(content.Text) + len(content.Stderr) + 64

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if el, ok := c.items[k]; ok {
		it := el.Value.(*cacheItem)
		c.bytes += size - it.size
		it.content = content
		it.size = size
		c.order.MoveToFront(el)
	} else {
		el := c.order.PushFront(&cacheItem{key: k, content: content, size: size})
		c.items[k] = el
		c.bytes += size
	}

	for c.bytes > c.maxBytes && c.order.Len() > 1 {
		back := c.order.Back()
		it := back.Value.(*cacheItem)
		c.order.Remove(back)
		delete(c.items, it.key)
		c.bytes -= it.size
	}
}

// drop removes one key (used to clear a Pending marker after a cancelled
// run so the next request retries).
func (c *cache) drop(k Key) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if el, ok := c.items[k]; ok {
		it := el.Value.(*cacheItem)
		c.order.Remove(el)
		delete(c.items, k)
		c.bytes -= it.size
	}
}

// purgeOlder removes every item from revisions before rev.
func (c *cache) purgeOlder(rev uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for el := c.order.Front(); el != nil; {
		next := el.Next()
		it := el.Value.(*cacheItem)
		if it.key.Revision < rev {
			c.order.Remove(el)
			delete(c.items, it.key)
			c.bytes -= it.size
		}
		el = next
	}
}

func (c *cache) len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.order.Len()
}
