package application

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dfryer1193/mdblog/blog/domain"
	"github.com/rs/zerolog"
)

var _ domain.PostCache = (*ContentCache)(nil)

type postMap map[string]*domain.Post

// ContentCache holds the parsed posts of one content directory, keyed by post id.
//
// Readers work on an immutable snapshot and never block. Writers parse
// outside the lock, then clone the latest snapshot, apply their changes and
// publish the result.
type ContentCache struct {
	dir    string
	parser *PostParser
	logger zerolog.Logger

	mu    sync.Mutex // serializes publishers
	posts atomic.Pointer[postMap]
}

// update replaces the entry for id, provided the current entry is still prev.
type update struct {
	id   string
	prev *domain.Post
	post *domain.Post
}

// FromDir creates a cache bound to dir and performs the initial scan.
func FromDir(dir string, parser *PostParser, logger zerolog.Logger) (*ContentCache, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrNotADirectory, dir, err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrNotADirectory, absDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotADirectory, absDir)
	}

	c := &ContentCache{
		dir:    absDir,
		parser: parser,
		logger: logger.With().Str("component", "content_cache").Str("dir", absDir).Logger(),
	}
	empty := postMap{}
	c.posts.Store(&empty)

	if err := c.Scan(); err != nil {
		return nil, err
	}

	return c, nil
}

// Dir returns the absolute path of the content directory.
func (c *ContentCache) Dir() string {
	return c.dir
}

func (c *ContentCache) snapshot() postMap {
	return *c.posts.Load()
}

// Len returns the number of cached posts.
func (c *ContentCache) Len() int {
	return len(c.snapshot())
}

// Scan adds posts that appeared and re-parses posts whose modification time
// changed since they were cached. Posts whose files were deleted are kept.
func (c *ContentCache) Scan() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read content directory %s: %w", c.dir, err)
	}

	current := c.snapshot()
	var updates []update

	for _, entry := range entries {
		id, ok := strings.CutSuffix(entry.Name(), domain.PostSuffix)
		if !ok || id == "" {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("Failed to stat post file")
			continue
		}
		// pending/ and any other subdirectory is never scanned
		if info.IsDir() {
			continue
		}

		existing, cached := current[id]
		if cached && existing.Path != path && fileExists(existing.Path) {
			c.logger.Warn().
				Err(domain.ErrIDConflict).
				Str("postID", id).
				Str("path", path).
				Str("cachedPath", existing.Path).
				Msg("Two post files map to the same id; keeping the cached one")
			continue
		}
		if cached && existing.Path == path && existing.ModTime.Equal(info.ModTime()) {
			continue
		}

		post, err := c.parse(path)
		if err != nil {
			c.logger.Error().Err(err).Str("path", path).Msg("Failed to parse post")
			continue
		}
		updates = append(updates, update{id: id, prev: existing, post: post})
	}

	c.apply(updates)
	return nil
}

// Get returns the post with the given id. If its file changed on disk since
// it was cached, the file is re-parsed and the cached entry replaced first.
// Unknown ids return domain.ErrPostNotFound without touching the cache.
func (c *ContentCache) Get(id string) (*domain.Post, error) {
	if !domain.ValidPostID(id) {
		return nil, fmt.Errorf("%w: invalid id %q", domain.ErrPostNotFound, id)
	}

	post, ok := c.snapshot()[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, id)
	}

	info, err := os.Stat(post.Path)
	if err == nil && info.ModTime().Equal(post.ModTime) {
		return post, nil
	}

	fresh, err := c.parse(post.Path)
	if err != nil {
		c.logger.Error().Err(err).Str("postID", id).Str("path", post.Path).Msg("Failed to refresh post")
		return nil, err
	}

	c.apply([]update{{id: id, prev: post, post: fresh}})

	// A concurrent writer may have published a different copy in the meantime.
	if latest, ok := c.snapshot()[id]; ok && !latest.ModTime.Before(fresh.ModTime) {
		return latest, nil
	}
	return fresh, nil
}

func (c *ContentCache) parse(path string) (*domain.Post, error) {
	result, err := c.parser.Parse(path)
	if err != nil {
		return nil, err
	}

	if len(result.Problems) > 0 {
		c.logger.Warn().
			Err(errors.Join(result.Problems...)).
			Str("postID", result.Post.ID).
			Str("path", path).
			Msg("Incomplete post")
	}

	return result.Post, nil
}

// apply publishes a new snapshot containing updates. An update computed
// against an entry that has since been replaced is dropped, unless it was
// parsed from the same file at a newer modification time.
func (c *ContentCache) apply(updates []update) {
	if len(updates) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := maps.Clone(c.snapshot())
	changed := 0
	for _, u := range updates {
		if cur := next[u.id]; cur != u.prev && !newerParse(u.post, cur) {
			c.logger.Debug().Str("postID", u.id).Msg("Post replaced concurrently; dropping stale update")
			continue
		}
		next[u.id] = u.post
		changed++
	}

	if changed == 0 {
		return
	}

	c.posts.Store(&next)
	c.logger.Debug().Int("updated", changed).Int("posts", len(next)).Msg("Published post snapshot")
}

// newerParse reports whether post was read from the same file as cur at a
// later modification time.
func newerParse(post, cur *domain.Post) bool {
	return cur != nil && post.Path == cur.Path && post.ModTime.After(cur.ModTime)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
