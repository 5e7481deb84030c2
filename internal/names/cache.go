// Package names resolves AppleTalk addresses and sockets to display names.
package names

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"firestige.xyz/atalkdump/internal/core"
	"firestige.xyz/atalkdump/internal/log"
)

const hashSize = 4096

type entry struct {
	key  uint32
	name string
}

// Cache maps (network, host) pairs to display names. Entries are appended
// and never evicted, so a name returned once is returned again for the
// lifetime of the cache. Safe for concurrent use.
type Cache struct {
	path    string
	resolve bool

	mu      sync.Mutex
	loaded  bool
	buckets [hashSize][]entry
}

// New creates a cache. When resolve is false the override file is never
// read and every name is numeric.
func New(path string, resolve bool) *Cache {
	return &Cache{path: path, resolve: resolve}
}

// Lookup returns the display name for net.host.
//
// Lookup order: an exact entry, then the network's whole-net entry (stored
// under host 255) extended with ".<host>", then the numeric form. Whatever
// is synthesized is cached under the exact key.
func (c *Cache) Lookup(net uint16, host uint8) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.loaded = true
		if c.resolve {
			c.load()
		}
	}

	addr := core.Addr{Net: net, Node: host}
	key := addr.Key()
	if name, ok := c.find(key); ok {
		return name
	}

	var name string
	if netName, ok := c.find(key | core.BroadcastNode); ok {
		name = fmt.Sprintf("%s.%d", netName, host)
	} else if host != core.BroadcastNode {
		name = fmt.Sprintf("%d.%d", net, host)
	} else {
		name = fmt.Sprintf("%d", net)
	}
	c.insert(key, name)
	return name
}

// Len reports how many entries the cache holds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for i := range c.buckets {
		n += len(c.buckets[i])
	}
	return n
}

func (c *Cache) find(key uint32) (string, bool) {
	for _, e := range c.buckets[key&(hashSize-1)] {
		if e.key == key {
			return e.name, true
		}
	}
	return "", false
}

func (c *Cache) insert(key uint32, name string) {
	b := &c.buckets[key&(hashSize-1)]
	*b = append(*b, entry{key: key, name: name})
}

// load reads the override file. Called with mu held, at most once.
func (c *Cache) load() {
	logger := log.GetLogger().WithField("file", c.path)
	n, err := readFile(c.path, c.insert)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("appletalk names file not found, using numeric names")
		return
	}
	if err != nil {
		logger.WithError(err).Warn("appletalk names file unreadable, using numeric names")
		return
	}
	logger.WithField("entries", n).Debug("appletalk names file loaded")
}
