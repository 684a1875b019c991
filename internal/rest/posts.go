package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/mdblog/api"
	"github.com/dfryer1193/mdblog/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	sortByDate    = "date"
	sortByModTime = "mtime"
	sortByTopic   = "topic"
)

// PostsHandler serves posts out of a PostCache.
type PostsHandler struct {
	cache      domain.PostCache
	scanOnRead bool
}

// NewPostsHandler creates a handler. With scanOnRead set, every listing
// rescans the content directory before it is built.
func NewPostsHandler(cache domain.PostCache, scanOnRead bool) *PostsHandler {
	return &PostsHandler{
		cache:      cache,
		scanOnRead: scanOnRead,
	}
}

func (h *PostsHandler) GetPosts(c *gin.Context) {
	h.refresh()

	var posts []*domain.Post
	if category, ok := c.GetQuery("category"); ok {
		posts = h.cache.ByCategory(category)
	} else {
		switch c.DefaultQuery("sort", sortByDate) {
		case sortByDate:
			posts = h.cache.ByDate()
		case sortByModTime:
			posts = h.cache.ByModTime()
		case sortByTopic:
			posts = h.cache.ByTopic()
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be one of date, mtime, topic"})
			return
		}
	}

	c.JSON(http.StatusOK, api.NewPostList(posts))
}

func (h *PostsHandler) GetPost(c *gin.Context) {
	postID := c.Param("postId")

	post, err := h.cache.Get(postID)
	if errors.Is(err, domain.ErrPostNotFound) && domain.ValidPostID(postID) {
		// The file may have appeared since the last scan; look once more.
		if scanErr := h.cache.Scan(); scanErr != nil {
			log.Error().Err(scanErr).Msg("Failed to scan content directory")
		}
		post, err = h.cache.Get(postID)
	}

	if err != nil {
		if !errors.Is(err, domain.ErrPostNotFound) {
			log.Error().Err(err).Str("postID", postID).Msg("Failed to load post")
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	c.JSON(http.StatusOK, api.NewPost(post))
}

func (h *PostsHandler) GetCategory(c *gin.Context) {
	h.refresh()

	posts := h.cache.ByCategory(c.Param("category"))
	c.JSON(http.StatusOK, api.NewPostList(posts))
}

func (h *PostsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "posts": h.cache.Len()})
}

// refresh rescans before a listing when scan-on-read is enabled. A failed
// scan still serves whatever the cache already holds.
func (h *PostsHandler) refresh() {
	if !h.scanOnRead {
		return
	}
	if err := h.cache.Scan(); err != nil {
		log.Error().Err(err).Msg("Failed to scan content directory; serving cached posts")
	}
}
