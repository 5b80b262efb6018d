package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dfryer1193/microblog/blog/domain"
	"github.com/dfryer1193/microblog/blog/images"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// genericErrorMessage is what clients see for server-side faults. Database
// and filesystem details stay in the logs.
const genericErrorMessage = "Something went wrong on our end. Sorry about that!"

// CreatePostRequest is the JSON body of a post creation request.
// Image is base64-encoded raw bytes; AvatarURL points at a remote PNG.
// Both are optional.
type CreatePostRequest struct {
	Username  string `json:"username" binding:"required"`
	Body      string `json:"body" binding:"required"`
	Image     []byte `json:"image,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (h *handler) ListPosts(c *gin.Context) {
	posts, err := h.service.ListPosts(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericErrorMessage})
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), req.Username, req.Body, req.Image, req.AvatarURL)
	if err != nil {
		// Bad images are the client's fault; everything else is ours
		if images.IsBadInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("Failed to create post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericErrorMessage})
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *handler) DeletePost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), postID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Error().Err(err).Int64("postId", postID).Msg("Failed to delete post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericErrorMessage})
		return
	}

	c.Status(http.StatusNoContent)
}
