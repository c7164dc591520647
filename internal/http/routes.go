package http

import (
	"time"

	"synonym_arena/internal/http/handlers"
	"synonym_arena/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

const (
	soloRateLimit  = 30
	soloRateWindow = time.Minute
)

type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	WS      *handlers.WSHandler
	Tokens  middleware.TokenParser
	// Redis is optional; without it rate limits are kept in process.
	Redis         *redis.Client
	APIRateLimit  int
	APIRateWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(d.Redis, d.APIRateLimit, d.APIRateWindow))
	registerAPIRoutes(v1, d)

	// Game socket
	r.GET("/ws", d.WS.Serve)
}

func registerAPIRoutes(api *gin.RouterGroup, d Deps) {
	h := d.Handler
	auth := middleware.JWT(d.Tokens)

	api.GET("/words", h.GetWords)
	api.GET("/chain-words", h.GetChainWords)

	api.GET("/players/:user_id", h.GetPlayer)
	api.GET("/me", auth, h.Me)
	api.PATCH("/me", auth, h.UpdateMe)

	soloRL := middleware.UserRateLimit(d.Redis, "solo", soloRateLimit, soloRateWindow)
	api.POST("/solo/games", auth, soloRL, h.RecordSolo)
}
