package posters

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// filePrefix namespaces poster files inside the cache directory so Clear
// and Stats never touch files written by anything else.
const filePrefix = "catalog_"

// Stats is a snapshot of current cache state returned by Stats.
type Stats struct {
	FileCount      int     `json:"fileCount"`
	TotalSizeBytes int64   `json:"totalSizeBytes"`
	TotalSizeMB    float64 `json:"totalSizeMB"`
	MaxSizeMB      float64 `json:"maxSizeMB"`
}

// Cache stores downloaded poster images on disk, keyed by a hash of the
// source URL so repeated loads of the same catalog reuse the local copy.
type Cache struct {
	dir      string
	http     *http.Client
	maxBytes int64 // 0 means unlimited
	mu       sync.Mutex
	log      *zerolog.Logger
}

// New creates a Cache rooted at dir. maxBytes of 0 disables eviction.
func New(dir string, hc *http.Client, maxBytes int64, log *zerolog.Logger) *Cache {
	return &Cache{
		dir:      dir,
		http:     hc,
		maxBytes: maxBytes,
		log:      log,
	}
}

// Path returns the cache file path a poster URL maps to, whether or not
// the file exists yet.
func (c *Cache) Path(url string) string {
	hash := md5.Sum([]byte(url))
	return filepath.Join(c.dir, fmt.Sprintf("%s%x.jpg", filePrefix, hash))
}

// Get returns the cached file path for url and whether it exists.
func (c *Cache) Get(url string) (string, bool) {
	path := c.Path(url)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	c.log.Debug().Str("url", url).Msg("poster cache hit")
	return path, true
}

// Fetch returns the cached file path for url, downloading the image first
// if it is not cached yet.
func (c *Cache) Fetch(ctx context.Context, url string) (string, error) {
	if path, ok := c.Get(url); ok {
		return path, nil
	}

	c.log.Debug().Str("url", url).Msg("downloading poster")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download poster: status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read poster body: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	path := c.Path(url)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	c.log.Debug().Str("path", path).Int("bytes", len(data)).Msg("cached poster")

	if c.maxBytes > 0 {
		if removed, err := c.evict(); err != nil {
			c.log.Warn().Err(err).Msg("poster cache eviction failed")
		} else if removed > 0 {
			c.log.Info().Int("removed", removed).Msg("poster cache evicted old files")
		}
	}

	return path, nil
}

// Stats returns a snapshot of the cache contents.
func (c *Cache) Stats() (*Stats, error) {
	files, err := c.list()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		FileCount: len(files),
		MaxSizeMB: float64(c.maxBytes) / (1024 * 1024),
	}
	for _, f := range files {
		stats.TotalSizeBytes += f.size
	}
	stats.TotalSizeMB = float64(stats.TotalSizeBytes) / (1024 * 1024)

	return stats, nil
}

// Clear removes every cached poster and returns how many files were deleted.
func (c *Cache) Clear() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	files, err := c.list()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if err := os.Remove(f.path); err != nil {
			c.log.Warn().Err(err).Str("path", f.path).Msg("failed to remove cached poster")
			continue
		}
		removed++
	}

	c.log.Info().Int("removed", removed).Msg("poster cache cleared")
	return removed, nil
}

type cacheFile struct {
	path    string
	size    int64
	modTime time.Time
}

// list returns the poster files currently in the cache directory. A missing
// directory is treated as an empty cache.
func (c *Cache) list() ([]cacheFile, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.dir, err)
	}

	var files []cacheFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, cacheFile{
			path:    filepath.Join(c.dir, entry.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}

	return files, nil
}

// evict removes the oldest poster files until the cache is back under
// maxBytes. It returns the number of files removed.
func (c *Cache) evict() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	files, err := c.list()
	if err != nil {
		return 0, err
	}

	var totalSize int64
	for _, f := range files {
		totalSize += f.size
	}
	if totalSize <= c.maxBytes {
		return 0, nil
	}

	// Oldest first, then remove from the front until under the limit.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	removed := 0
	for _, f := range files {
		if totalSize <= c.maxBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			c.log.Warn().Err(err).Str("path", f.path).Msg("failed to evict cached poster")
			continue
		}
		totalSize -= f.size
		removed++
	}

	return removed, nil
}
