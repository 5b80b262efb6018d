package rest

import (
	"github.com/dfryer1193/microblog/blog/application"
	"github.com/gin-gonic/gin"
)

func NewApi(router *gin.Engine, service *application.PostService) {
	h := &handler{service: service}

	postsV1 := router.Group("api/v1/posts")
	{
		postsV1.GET("", h.ListPosts)
		postsV1.POST("", h.CreatePost)
		postsV1.DELETE("/:postId", h.DeletePost)
	}

	imagesV1 := router.Group("api/v1/images")
	{
		imagesV1.GET("/posts/:uuid", h.GetPostImage)
		imagesV1.GET("/avatars/:uuid", h.GetAvatarImage)
	}
}

type handler struct {
	service *application.PostService
}
