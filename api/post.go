package api

import (
	"time"

	"github.com/dfryer1193/mdblog/blog/domain"
)

// PostSummary is the listing form of a post.
type PostSummary struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Date      string    `json:"date"`
	Category  string    `json:"category"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post is a single post with its rendered body.
type Post struct {
	PostSummary
	HTML string `json:"html"`
}

type PostList struct {
	Posts []PostSummary `json:"posts"`
	Count int           `json:"count"`
}

func NewPostSummary(p *domain.Post) PostSummary {
	return PostSummary{
		ID:        p.ID,
		Topic:     p.Topic,
		Date:      p.Date,
		Category:  p.Category,
		Summary:   p.Summary,
		UpdatedAt: p.ModTime.UTC(),
	}
}

func NewPost(p *domain.Post) Post {
	return Post{
		PostSummary: NewPostSummary(p),
		HTML:        p.HTML,
	}
}

func NewPostList(posts []*domain.Post) PostList {
	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, NewPostSummary(p))
	}
	return PostList{
		Posts: summaries,
		Count: len(summaries),
	}
}
