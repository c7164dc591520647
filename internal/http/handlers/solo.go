package handlers

import (
	"errors"
	"net/http"

	"synonym_arena/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordSolo stores a finished single-player game for the authenticated
// player and returns the rating change.
func (h *Handler) RecordSolo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var in service.SoloGameInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in.UserID = userID

	g, err := h.Solo.Record(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("record solo game failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record game"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"game":          g,
		"new_rating":    g.RatingAfter,
		"rating_change": g.RatingChange,
	})
}
