package http

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/adapters/signal"
	"github.com/clubroom/clubroom/internal/app"
	"github.com/clubroom/clubroom/internal/config"
	"github.com/clubroom/clubroom/internal/resolver"
)

// ClientTokenMiddleware issues the durable client identity token. The
// token is the only persistent artifact: a returning client replays it
// to re-associate with its player.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Password    string `json:"password"`
}

func SetupRouter(cfg *config.Config, manager *app.RoomManager, ctl *signal.Controller, res *resolver.Client) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ClubSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, manager.List())
	})

	api.POST("/rooms", func(c *gin.Context) {
		var req createRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		room, err := manager.Create(app.CreateRoomParams{
			Name:        req.Name,
			Description: req.Description,
			Password:    req.Password,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, app.ErrRoomExists) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		meta := room.Meta()
		c.JSON(http.StatusCreated, gin.H{"id": meta.ID, "name": meta.Name})
	})

	api.GET("/ws", ctl.HandleWS)

	r.GET("/youtube/resolve/:videoId", func(c *gin.Context) {
		resolved, err := res.Resolve(c.Request.Context(), c.Param("videoId"))
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("video", c.Param("videoId")).Msg("resolve failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve video"})
			return
		}
		c.JSON(http.StatusOK, resolved)
	})

	r.GET("/youtube/:search", func(c *gin.Context) {
		query := c.Param("search")
		videos, err := res.Search(c.Request.Context(), query, 24)
		if err == nil {
			c.JSON(http.StatusOK, videos)
			return
		}
		log.Warn().Err(err).Str("module", "adapters.http").Msg("search service failed, falling back to legacy scraping")

		videos, err = res.LegacySearch(c.Request.Context(), query, 24)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("legacy search fallback failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
			return
		}
		c.JSON(http.StatusOK, videos)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
