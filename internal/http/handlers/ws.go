package handlers

import (
	"log/slog"
	"net/http"

	"synonym_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	Parse(token string) (string, error)
}

type WSHandler struct {
	hub           *ws.Hub
	dispatcher    *ws.Dispatcher
	tokens        TokenParser
	requireAuth   bool
	allowedOrigin string
	log           *slog.Logger
}

type WSConfig struct {
	Hub        *ws.Hub
	Dispatcher *ws.Dispatcher
	Tokens     TokenParser
	// RequireAuth rejects connections without a valid token.
	RequireAuth   bool
	AllowedOrigin string
	Logger        *slog.Logger
}

func NewWSHandler(cfg WSConfig) *WSHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &WSHandler{
		hub:           cfg.Hub,
		dispatcher:    cfg.Dispatcher,
		tokens:        cfg.Tokens,
		requireAuth:   cfg.RequireAuth,
		allowedOrigin: cfg.AllowedOrigin,
		log:           cfg.Logger,
	}
}

// Serve upgrades the request to a game socket. The token is optional unless
// authentication is required; an invalid token is always rejected.
func (h *WSHandler) Serve(c *gin.Context) {
	var userID string
	if token := c.Query("token"); token != "" {
		id, err := h.tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		userID = id
	} else if h.requireAuth {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.allowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(conn, h.hub, h.dispatcher, userID)
	go client.Run()
}
