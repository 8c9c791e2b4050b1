package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lowc/internal/version"
)

// Key identifies a cached container: the input bytes plus every option that
// influences lowering.
type Key [32]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// KeyFor hashes the source text together with a textual rendering of the
// lowering options.
func KeyFor(src []byte, options string) Key {
	h := sha256.New()
	h.Write(src)
	h.Write([]byte{0})
	h.Write([]byte(options))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Cache stores containers under <dir>/ir/<key>.mp. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open returns the cache rooted at $XDG_CACHE_HOME/<app>, falling back to
// ~/.cache/<app>.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

func OpenDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("artifact: cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(k Key) string {
	return filepath.Join(c.dir, "ir", k.String()+".mp")
}

func (c *Cache) Put(k Key, ct *Container) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Write(c.pathFor(k), ct)
}

// Get returns the cached container for k. A missing entry, a foreign schema
// or a producer outside the running ~MAJOR.MINOR range is a miss.
func (c *Cache) Get(k Key) (*Container, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	ct, err := Read(c.pathFor(k))
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, ErrSchema):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	if !version.Compatible(ct.Producer) {
		return nil, false, nil
	}
	return ct, true, nil
}

// Drop removes every cached container.
func (c *Cache) Drop() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "ir"))
}
