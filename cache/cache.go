// Package cache stores completion replies in badger so a repeated utterance
// skips the network round-trip.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultTTL is how long a reply stays valid.
const DefaultTTL = 10 * time.Minute

// Usage mirrors the token accounting of the reply that was cached.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Entry is one cached reply.
type Entry struct {
	Text      string    `json:"text"`
	Usage     Usage     `json:"usage"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache is a TTL key/value store backed by badger.
type Cache struct {
	db *badger.DB
}

// New opens (or creates) a cache directory at path.
func New(path string) (*Cache, error) {
	if path == "" {
		return nil, errors.New("cache path required")
	}
	return open(badger.DefaultOptions(path))
}

// NewInMemory returns a cache that lives only as long as the process.
func NewInMemory() (*Cache, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Cache, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the entry for key, if present and not expired.
func (c *Cache) Get(key string) (*Entry, bool) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, false
	}
	return &entry, true
}

// Set stores entry under key for ttl. A non-positive ttl never expires.
func (c *Cache) Set(key string, entry *Entry, ttl time.Duration) error {
	val, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), val)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Close flushes and closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GenerateKey hashes the parts into a fixed-size key.
func GenerateKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
