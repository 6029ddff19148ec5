// Package cache memoizes parse results.
//
// Entries are keyed by a BLAKE2b digest of the source text and the effective
// parser settings, so the same source parsed with a different file name, depth
// limit or host value count is a separate entry. Parse errors are cached too.
package cache

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/parser"
)

// DefaultSize is the number of entries a cache holds when no size is given.
const DefaultSize = 512

// Key identifies a cache entry.
type Key [blake2b.Size256]byte

// String returns the key in hex.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// NewKey returns the key for parsing source with the given settings.
func NewKey(source string, settings parser.Settings) Key {
	h, _ := blake2b.New256(nil)
	var buf [binary.MaxVarintLen64]byte
	writeString := func(s string) {
		n := binary.PutUvarint(buf[:], uint64(len(s)))
		h.Write(buf[:n])
		h.Write([]byte(s))
	}
	writeInt := func(v int) {
		n := binary.PutVarint(buf[:], int64(v))
		h.Write(buf[:n])
	}
	writeString(source)
	writeString(settings.Filename)
	writeInt(settings.MaxDepth)
	writeInt(settings.HostValues)
	var key Key
	h.Sum(key[:0])
	return key
}

type entry struct {
	script *ast.Script
	err    error
}

// Stats reports cache activity.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for hit and miss events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithSize sets the maximum number of entries.
func WithSize(size int) Option {
	return func(c *Cache) {
		c.size = size
	}
}

// Cache is an LRU cache of parsed scripts. It is safe for concurrent use.
// Returned scripts are shared between callers and must not be modified.
// Concurrent misses for the same key share a single parse.
type Cache struct {
	mu     sync.Mutex
	group  singleflight.Group
	lru    *lru.Cache
	size   int
	logger zerolog.Logger
	hits   uint64
	misses uint64
}

// New returns an empty cache.
func New(options ...Option) (*Cache, error) {
	c := &Cache{
		size:   DefaultSize,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	l, err := lru.NewWithEvict(c.size, func(key, _ any) {
		c.logger.Trace().Stringer("key", key.(Key)).Msg("cache evict")
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	c.lru = l
	return c, nil
}

// Parse returns the parse result for source, parsing it on a miss. The
// cache lock is not held while parsing.
func (c *Cache) Parse(source string, options ...parser.Option) (*ast.Script, error) {
	settings := parser.ResolveOptions(options...)
	key := NewKey(source, settings)

	if e, ok := c.lookup(key, settings); ok {
		return e.script, e.err
	}

	// counted is set when this caller ran the function and so already
	// recorded a hit or a miss. Callers sharing its result count a hit.
	var counted bool
	v, _, _ := c.group.Do(key.String(), func() (any, error) {
		counted = true
		// Another caller may have stored the entry since the lookup above.
		if e, ok := c.lookup(key, settings); ok {
			return e, nil
		}
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		c.logger.Debug().
			Stringer("key", key).
			Str("file", settings.Filename).
			Int("bytes", len(source)).
			Msg("cache miss")

		script, err := parser.Parse(source, options...)
		e := &entry{script: script, err: err}
		c.mu.Lock()
		c.lru.Add(key, e)
		c.mu.Unlock()
		return e, nil
	})
	e := v.(*entry)
	if !counted {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return e.script, e.err
}

// lookup returns the cached entry for key and counts the hit.
func (c *Cache) lookup(key Key, settings parser.Settings) (*entry, bool) {
	c.mu.Lock()
	v, ok := c.lru.Get(key)
	if ok {
		c.hits++
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	c.logger.Debug().
		Stringer("key", key).
		Str("file", settings.Filename).
		Msg("cache hit")
	return v.(*entry), true
}

// ParseTemplate is like Parse for a template. The host values are not part
// of the key, so templates with the same source and number of values share
// an entry.
func (c *Cache) ParseTemplate(t *parser.Template, options ...parser.Option) (*ast.Script, error) {
	options = append(options[:len(options):len(options)], parser.WithHostValues(len(t.Values)))
	return c.Parse(t.Source, options...)
}

// Contains reports whether a result for source and options is cached,
// without updating its recency.
func (c *Cache) Contains(source string, options ...parser.Option) bool {
	return c.lru.Contains(NewKey(source, parser.ResolveOptions(options...)))
}

// Purge removes every entry and resets the counters.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.hits, c.misses = 0, 0
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Len: c.lru.Len()}
}
