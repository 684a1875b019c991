package rest

import "github.com/gin-gonic/gin"

func NewApi(router *gin.Engine, posts *PostsHandler) {
	router.GET("/healthz", posts.Health)

	postsV1 := router.Group("posts/v1")
	{
		postsV1.GET("/", posts.GetPosts)
		postsV1.GET("/:postId", posts.GetPost)
	}

	categoriesV1 := router.Group("categories/v1")
	{
		categoriesV1.GET("/:category", posts.GetCategory)
	}
}
