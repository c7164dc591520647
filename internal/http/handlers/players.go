package handlers

import (
	"errors"
	"net/http"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"
	"synonym_arena/internal/service"

	"github.com/gin-gonic/gin"
)

const recentMatchesLimit = 20

type playerCard struct {
	*domain.Player
	Rank          game.Rank            `json:"rank"`
	SoloRank      game.Rank            `json:"solo_rank"`
	RecentMatches []domain.MatchRecord `json:"recent_matches"`
}

// GetPlayer returns the rating card of a player with the latest matches.
func (h *Handler) GetPlayer(c *gin.Context) {
	userID := c.Param("user_id")
	ctx := c.Request.Context()

	p, err := h.Players.GetPlayer(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		h.log.Error("get player failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load player"})
		return
	}

	recent, err := h.Matches.RecentByPlayer(ctx, userID, recentMatchesLimit)
	if err != nil {
		// карточка важнее истории
		h.log.Warn("load recent matches failed", "user_id", userID, "error", err)
	}
	if recent == nil {
		recent = []domain.MatchRecord{}
	}

	c.JSON(http.StatusOK, playerCard{
		Player:        p,
		Rank:          game.RankFor(p.Rating),
		SoloRank:      game.RankFor(p.SoloRating),
		RecentMatches: recent,
	})
}

// Me returns the card of the authenticated player, creating it on first use.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p := &domain.Player{UserID: userID}
	if err := h.Players.UpsertPlayer(c.Request.Context(), p); err != nil {
		h.log.Error("upsert player failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load player"})
		return
	}

	c.JSON(http.StatusOK, playerCard{
		Player:        p,
		Rank:          game.RankFor(p.Rating),
		SoloRank:      game.RankFor(p.SoloRating),
		RecentMatches: []domain.MatchRecord{},
	})
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"max=64"`
	AvatarRef   string `json:"avatar_ref" binding:"max=256"`
}

// UpdateMe sets the display name and avatar of the authenticated player.
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p := &domain.Player{UserID: userID, DisplayName: req.DisplayName, AvatarRef: req.AvatarRef}
	if err := h.Players.UpsertPlayer(c.Request.Context(), p); err != nil {
		h.log.Error("update player failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update player"})
		return
	}
	c.JSON(http.StatusOK, p)
}
