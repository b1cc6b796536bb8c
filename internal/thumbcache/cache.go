// Package thumbcache stores generated thumbnails in a bbolt database so
// reopening a folder does not decode every photo again.
package thumbcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fpang/photoswipe/internal/filehandler"
)

var bucketThumbs = []byte("thumbnails")

// DefaultMemoryEntries bounds the in-memory promote cache.
const DefaultMemoryEntries = 256

type entry struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// Cache is safe for concurrent use.
type Cache struct {
	db *bolt.DB

	mu         sync.RWMutex
	mem        map[string]entry
	maxEntries int
}

// Open opens (or creates) the cache database in dir. An empty dir gives a
// memory-only cache.
func Open(dir string) (*Cache, error) {
	c := &Cache{mem: make(map[string]entry), maxEntries: DefaultMemoryEntries}
	if dir == "" {
		return c, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	db, err := bolt.Open(filepath.Join(dir, "thumbs.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketThumbs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	c.db = db
	return c, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Key derives the cache key of a thumbnail. A photo that changed on disk
// (size or modification time) gets a new key.
func Key(uri string, size int64, modified time.Time, maxDimension int) string {
	h := sha256.New()
	h.Write([]byte(uri))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(size, 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(modified.UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(maxDimension)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached thumbnail. Database hits are promoted to memory.
func (c *Cache) Get(key string) (filehandler.Thumbnail, bool) {
	c.mu.RLock()
	e, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return filehandler.Thumbnail{Data: e.Data, MIMEType: e.MIMEType}, true
	}
	if c.db == nil {
		return filehandler.Thumbnail{}, false
	}

	var raw []byte
	c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketThumbs).Get([]byte(key)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if raw == nil || json.Unmarshal(raw, &e) != nil {
		return filehandler.Thumbnail{}, false
	}

	c.remember(key, e)
	return filehandler.Thumbnail{Data: e.Data, MIMEType: e.MIMEType}, true
}

// Put stores a thumbnail.
func (c *Cache) Put(key string, thumb filehandler.Thumbnail) error {
	e := entry{MIMEType: thumb.MIMEType, Data: thumb.Data}
	c.remember(key, e)
	if c.db == nil {
		return nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketThumbs).Put([]byte(key), data)
	})
}

// Len returns the number of persisted thumbnails, or the memory count for a
// memory-only cache.
func (c *Cache) Len() int {
	if c.db == nil {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return len(c.mem)
	}
	n := 0
	c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketThumbs).Stats().KeyN
		return nil
	})
	return n
}

// remember adds e to the memory cache, dropping an arbitrary entry when full.
func (c *Cache) remember(key string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.mem[key]; !ok && len(c.mem) >= c.maxEntries {
		for k := range c.mem {
			delete(c.mem, k)
			break
		}
	}
	c.mem[key] = e
}
