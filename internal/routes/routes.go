// Package routes assembles the HTTP engine.
package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/auth"
	"vidshare-api/internal/config"
	"vidshare-api/internal/database"
	"vidshare-api/internal/handlers"
	"vidshare-api/internal/middleware"
	"vidshare-api/internal/services"
	"vidshare-api/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Config   *config.Config
	Store    database.Store
	Services *services.Services
	Tokens   *auth.TokenManager
	Limiter  *middleware.IPRateLimiter
	Logger   *log.Logger
	// MediaRoot, when set, is served under /media for the disk media store.
	MediaRoot string
}

func SetupRoutes(d Deps) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = d.Config.Server.MaxMultipartMB << 20
	_ = router.SetTrustedProxies(nil)

	router.Use(middleware.Recovery(d.Logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware(d.Logger))
	router.Use(middleware.ErrorHandlingMiddleware(d.Logger))
	router.Use(cors.New(corsConfig(d.Config.Server.CORSOrigin)))
	router.Use(func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})
	router.Use(middleware.RateLimitMiddleware(d.Limiter))

	router.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, apperror.NotFound("Route not found."))
	})

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			middleware.Abort(c, apperror.Dependency("Database unavailable.", err))
			return
		}
		utils.Respond(c, http.StatusOK, gin.H{"status": "ok"}, "OK")
	})

	if d.MediaRoot != "" {
		router.Static("/media", d.MediaRoot)
	}

	users := handlers.NewUserHandler(d.Services.Users, d.Config.Server.Mode == gin.ReleaseMode)
	videos := handlers.NewVideoHandler(d.Services.Videos)
	playlists := handlers.NewPlaylistHandler(d.Services.Playlists)
	subscriptions := handlers.NewSubscriptionHandler(d.Services.Subscriptions)

	requireAuth := middleware.AuthMiddleware(d.Tokens)

	api := router.Group("/api/v1")
	{
		u := api.Group("/users")
		{
			u.POST("/register", users.Register)
			u.POST("/login", users.Login)
			u.GET("/current-user", requireAuth, users.CurrentUser)
			u.GET("/c/:username", middleware.OptionalAuthMiddleware(d.Tokens), users.ChannelProfile)
		}

		v := api.Group("/videos")
		{
			v.GET("", videos.ListVideos)
			v.GET("/:videoId", videos.GetVideo)
			v.POST("/publish", requireAuth, videos.PublishVideo)
			v.PATCH("/:videoId", requireAuth, videos.UpdateVideo)
			v.DELETE("/:videoId", requireAuth, videos.DeleteVideo)
			v.PATCH("/:videoId/toggle-publish", requireAuth, videos.TogglePublish)
		}

		p := api.Group("/playlists")
		{
			p.GET("/user/:userId", playlists.GetUserPlaylists)
			p.GET("/:playlistId", playlists.GetPlaylist)
			p.POST("", requireAuth, playlists.CreatePlaylist)
			p.PATCH("/:playlistId", requireAuth, playlists.UpdatePlaylist)
			p.DELETE("/:playlistId", requireAuth, playlists.DeletePlaylist)
			p.PATCH("/:playlistId/add/:videoId", requireAuth, playlists.AddVideo)
			p.PATCH("/:playlistId/remove/:videoId", requireAuth, playlists.RemoveVideo)
		}

		s := api.Group("/subscriptions")
		{
			s.POST("/c/:channelId", requireAuth, subscriptions.ToggleSubscription)
			s.GET("/channel/:channelId", subscriptions.GetChannelSubscribers)
			s.GET("/user/:subscriberId", subscriptions.GetSubscribedChannels)
		}
	}

	return router
}

// corsConfig allows the configured comma separated origins, or every origin
// for "*".
func corsConfig(origins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
		return cfg
	}
	cfg.AllowOrigins = allowed
	return cfg
}
