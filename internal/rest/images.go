package rest

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/dfryer1193/microblog/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// parseImageID validates the uuid path parameter. Identifiers are only ever
// store-generated UUIDs, so anything else is rejected before it can reach
// path derivation.
func parseImageID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return "", false
	}
	return id.String(), true
}

func (h *handler) GetPostImage(c *gin.Context) {
	id, ok := parseImageID(c)
	if !ok {
		return
	}

	data, err := h.service.LoadPostImage(c.Request.Context(), domain.PostImageID(id))
	if err != nil {
		h.imageError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

func (h *handler) GetAvatarImage(c *gin.Context) {
	id, ok := parseImageID(c)
	if !ok {
		return
	}

	data, err := h.service.LoadAvatarImage(c.Request.Context(), domain.AvatarImageID(id))
	if err != nil {
		h.imageError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

func (h *handler) imageError(c *gin.Context, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	log.Error().Err(err).Msg("Failed to load image")
	c.JSON(http.StatusInternalServerError, gin.H{"error": genericErrorMessage})
}
