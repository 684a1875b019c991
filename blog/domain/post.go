package domain

import (
	"regexp"
	"time"
)

// PostSuffix is the extension every post file must carry.
const PostSuffix = ".markdown"

var validIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Post represents a blog post parsed from a single markdown file.
// A Post is never modified after it is built; a changed file produces a new Post.
type Post struct {
	Path     string
	ID       string
	Topic    string
	Date     string
	Category string
	Contents string
	HTML     string
	Summary  string
	ModTime  time.Time
}

// PostCache is the read API the web layer consumes.
type PostCache interface {
	// Scan picks up new and modified post files from the content directory.
	Scan() error

	// Get returns the post with the given id, refreshing it first if its file changed.
	Get(id string) (*Post, error)

	ByDate() []*Post
	ByModTime() []*Post
	ByTopic() []*Post
	ByCategory(query string) []*Post

	Len() int
}

// ValidPostID reports whether id is safe to use for lookups and paths.
func ValidPostID(id string) bool {
	return validIDRegex.MatchString(id)
}
