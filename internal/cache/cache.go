// Package cache keeps the graph list of each Rexster server on disk so graph
// name matching does not need a round trip on every call.
//
// Entries are JSON files named after the server URL. The default TTL is five
// minutes. Set REXSTER_NO_CACHE=1 to disable the cache and REXSTER_CACHE_DIR
// to move it.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultTTL = 5 * time.Minute

	EnvNoCache  = "REXSTER_NO_CACHE"
	EnvCacheDir = "REXSTER_CACHE_DIR"

	filePrefix = "graphs_"
)

type entry struct {
	CachedAt time.Time `json:"cached_at"`
	BaseURL  string    `json:"base_url"`
	Graphs   []string  `json:"graphs"`
}

// Store reads and writes the cached graph list of one server.
type Store struct {
	path    string
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a Store for baseURL under dir with DefaultTTL.
func NewStore(dir, baseURL string) *Store {
	return NewStoreWithTTL(dir, baseURL, DefaultTTL)
}

// NewStoreWithTTL creates a Store with a custom TTL.
func NewStoreWithTTL(dir, baseURL string, ttl time.Duration) *Store {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	hash := sha1.Sum([]byte(baseURL))
	return &Store{
		path:    filepath.Join(dir, filePrefix+hex.EncodeToString(hash[:6])+".json"),
		baseURL: baseURL,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Graphs returns the cached graph names. ok is false on a miss: no file,
// an expired or foreign entry, or a disabled cache.
func (s *Store) Graphs() (graphs []string, ok bool) {
	if disabled() {
		return nil, false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if e.BaseURL != s.baseURL || s.now().Sub(e.CachedAt) > s.ttl {
		return nil, false
	}
	return e.Graphs, true
}

// Put stores graphs. Failures are ignored; the cache is best effort.
func (s *Store) Put(graphs []string) {
	if disabled() {
		return
	}
	if graphs == nil {
		graphs = []string{}
	}
	data, err := json.Marshal(entry{CachedAt: s.now(), BaseURL: s.baseURL, Graphs: graphs})
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}

	// Write a temp file and rename so readers never see a partial entry.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return
	}
	_ = os.Rename(tmp, s.path)
}

// Clear removes this server's entry.
func (s *Store) Clear() {
	_ = os.Remove(s.path)
}

// ClearAll removes every cache entry in dir and returns how many were removed.
// Files that do not follow the entry naming scheme are left alone.
func ClearAll(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// DefaultDir returns REXSTER_CACHE_DIR, or "rexster-cli" under the user
// cache directory.
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvCacheDir)); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "rexster-cli"), nil
}

func disabled() bool {
	return os.Getenv(EnvNoCache) != ""
}

func isCacheFilename(name string) bool {
	if filepath.Ext(name) != ".json" || !strings.HasPrefix(name, filePrefix) {
		return false
	}
	_, err := hex.DecodeString(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".json"))
	return err == nil && len(name) == len(filePrefix)+12+len(".json")
}
