// Package cache keeps analysis reports in an LRU keyed by file path and
// validated by a content hash, with msgpack persistence between runs.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/minio/highwayhash"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-codepath/pkg/report"
)

// FileName is the name of the persisted cache inside the cache directory.
const FileName = "reports.msgpack"

// formatVersion is bumped whenever FileReport changes shape.
const formatVersion = 1

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// HashContent returns the HighwayHash-64 of src.
func HashContent(src []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	_, err = h.Write(src)
	return h.Sum64(), err
}

// Entry is one cached report.
type Entry struct {
	Key        string             `msgpack:"key"`
	Hash       uint64             `msgpack:"hash"`
	Report     *report.FileReport `msgpack:"report"`
	AccessedAt time.Time          `msgpack:"accessed_at"`
	CreatedAt  time.Time          `msgpack:"created_at"`
}

// LRUCache is an in-memory LRU of reports with optional disk persistence.
type LRUCache struct {
	mu        sync.Mutex
	items     map[string]*listItem
	lru       *list // most recent at front
	maxSize   int
	onEvict   func(key string)
	hitCount  int64
	missCount int64
}

type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

type list struct {
	head *listItem // most recently accessed
	tail *listItem // least recently accessed
	len  int
}

func (l *list) remove(item *listItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	item.prev, item.next = nil, nil
	l.len--
}

func (l *list) pushFront(item *listItem) {
	item.next = l.head
	item.prev = nil
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}
	l.remove(item)
	l.pushFront(item)
}

// Options configures the LRU cache.
type Options struct {
	// MaxSize is the maximum number of entries. 0 means unlimited.
	MaxSize int

	// OnEvict is called when an entry is evicted to make room.
	OnEvict func(key string)
}

// New creates a new LRU cache with the given options.
func New(opts Options) *LRUCache {
	return &LRUCache{
		items:   make(map[string]*listItem),
		lru:     &list{},
		maxSize: opts.MaxSize,
		onEvict: opts.OnEvict,
	}
}

// Get returns the report cached for key if it was computed from content
// with the given hash. A stale entry is dropped and reported as a miss.
func (c *LRUCache) Get(key string, hash uint64) (*report.FileReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		c.missCount++
		return nil, false
	}
	if item.Hash != hash {
		c.lru.remove(item)
		delete(c.items, key)
		c.missCount++
		return nil, false
	}

	c.hitCount++
	item.AccessedAt = time.Now()
	c.lru.moveToFront(item)
	return item.Report, true
}

// Set stores rep for key, replacing any previous entry.
func (c *LRUCache) Set(key string, hash uint64, rep *report.FileReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if item, exists := c.items[key]; exists {
		item.Hash = hash
		item.Report = rep
		item.AccessedAt = now
		c.lru.moveToFront(item)
		return
	}

	item := &listItem{Entry: Entry{
		Key:        key,
		Hash:       hash,
		Report:     rep,
		AccessedAt: now,
		CreatedAt:  now,
	}}
	c.items[key] = item
	c.lru.pushFront(item)
	c.evictIfNeeded()
}

// Delete removes a key from the cache.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, found := c.items[key]; found {
		c.lru.remove(item)
		delete(c.items, key)
	}
}

// Clear removes all entries and resets the statistics.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	c.hitCount, c.missCount = 0, 0
}

// Len returns the number of entries in the cache.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns the cached keys from most to least recently used.
func (c *LRUCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.lru.len)
	for item := c.lru.head; item != nil; item = item.next {
		keys = append(keys, item.Key)
	}
	return keys
}

func (c *LRUCache) evictIfNeeded() {
	for c.maxSize > 0 && c.lru.len > c.maxSize {
		item := c.lru.tail
		c.lru.remove(item)
		delete(c.items, item.Key)
		if c.onEvict != nil {
			c.onEvict(item.Key)
		}
	}
}

// Stats returns cache statistics.
type Stats struct {
	Length    int   `json:"length"`
	HitCount  int64 `json:"hit_count"`
	MissCount int64 `json:"miss_count"`
}

// HitRate returns the share of lookups that were hits.
func (s Stats) HitRate() float64 {
	total := s.HitCount + s.MissCount
	if total == 0 {
		return 0
	}
	return float64(s.HitCount) / float64(total)
}

// Stats returns the current cache statistics.
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Length:    len(c.items),
		HitCount:  c.hitCount,
		MissCount: c.missCount,
	}
}

type cacheData struct {
	Version int     `msgpack:"version"`
	Entries []Entry `msgpack:"entries"`
}

// Save writes the entries to w using msgpack, most recently used first.
func (c *LRUCache) Save(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := cacheData{Version: formatVersion, Entries: make([]Entry, 0, c.lru.len)}
	for item := c.lru.head; item != nil; item = item.next {
		data.Entries = append(data.Entries, item.Entry)
	}
	return msgpack.NewEncoder(w).Encode(data)
}

// Load replaces the cache contents with the entries read from r. Data
// written by another format version is discarded without error.
func (c *LRUCache) Load(r io.Reader) error {
	var data cacheData
	if err := msgpack.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	if data.Version != formatVersion {
		return nil
	}
	for i := len(data.Entries) - 1; i >= 0; i-- {
		entry := data.Entries[i]
		if entry.Report == nil {
			continue
		}
		item := &listItem{Entry: entry}
		c.items[entry.Key] = item
		c.lru.pushFront(item)
	}
	c.evictIfNeeded()
	return nil
}

// PersistToFile saves the cache to path atomically, creating parent
// directories as needed.
func PersistToFile(c *LRUCache, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".reports-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	tmp := f.Name()

	if err := c.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// LoadFromFile loads the cache from path. A missing file is not an error.
func LoadFromFile(c *LRUCache, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}
