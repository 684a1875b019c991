package application

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dfryer1193/mdblog/blog/domain"
)

// Views are built from a single snapshot, so a concurrent scan is either
// fully visible or not visible at all. Ties are broken by id to keep the
// order stable across calls.

// ByDate returns all posts, most recent Date first. Dates compare as strings.
func (c *ContentCache) ByDate() []*domain.Post {
	posts := c.values()
	slices.SortFunc(posts, compareByDateDesc)
	return posts
}

// ByModTime returns all posts, oldest modification time first.
func (c *ContentCache) ByModTime() []*domain.Post {
	posts := c.values()
	slices.SortFunc(posts, func(a, b *domain.Post) int {
		if n := a.ModTime.Compare(b.ModTime); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return posts
}

// ByTopic returns all posts ordered by Topic.
func (c *ContentCache) ByTopic() []*domain.Post {
	posts := c.values()
	slices.SortFunc(posts, func(a, b *domain.Post) int {
		if n := cmp.Compare(a.Topic, b.Topic); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return posts
}

// ByCategory returns the posts whose Category contains query, ignoring case,
// most recent Date first.
func (c *ContentCache) ByCategory(query string) []*domain.Post {
	query = strings.ToLower(query)

	var posts []*domain.Post
	for _, post := range c.snapshot() {
		if strings.Contains(strings.ToLower(post.Category), query) {
			posts = append(posts, post)
		}
	}

	slices.SortFunc(posts, compareByDateDesc)
	return posts
}

func (c *ContentCache) values() []*domain.Post {
	snap := c.snapshot()
	posts := make([]*domain.Post, 0, len(snap))
	for _, post := range snap {
		posts = append(posts, post)
	}
	return posts
}

func compareByDateDesc(a, b *domain.Post) int {
	if n := cmp.Compare(b.Date, a.Date); n != 0 {
		return n
	}
	return cmp.Compare(a.ID, b.ID)
}
