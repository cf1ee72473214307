// Package site wires the public-facing HTTP surface: session middleware,
// auth form endpoints, and the content API.
package site

import (
	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/config"
	"github.com/riefer02/astro-wordpress-starter/internal/middleware"
	"github.com/riefer02/astro-wordpress-starter/internal/routes"
	"github.com/riefer02/astro-wordpress-starter/internal/session"
	"github.com/riefer02/astro-wordpress-starter/internal/site/handlers"
	"github.com/riefer02/astro-wordpress-starter/internal/token"
	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  logger.Logger
	Auth    *wordpress.AuthClient
	Content *wordpress.ContentClient
	Store   token.Store
	Policy  *routes.Policy
}

// NewRouter builds the site's gin engine. The session middleware runs
// on every request, so route handlers can rely on session state being
// present in the context.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewRequestLogger(deps.Logger).Handler())
	engine.Use(session.New(session.Config{
		Store:     deps.Store,
		Authority: deps.Auth,
		Policy:    deps.Policy,
		Logger:    deps.Logger,
		MarkerTTL: deps.Config.Session.RedirectMarkerTTL,
		Secure:    deps.Config.Session.SecureCookies,
	}).Handler())

	authHandler := handlers.NewAuthHandler(
		deps.Auth,
		deps.Store,
		deps.Config.Session.TokenTTLDays,
		deps.Config.Session.SecureCookies,
		deps.Logger,
	)
	contentHandler := handlers.NewContentHandler(deps.Content, deps.Logger)

	engine.GET("/healthz", handlers.Health)

	auth := engine.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/logout", authHandler.Logout)
		auth.POST("/register", authHandler.Register)
		auth.POST("/profile", authHandler.UpdateProfile)
		auth.POST("/change-password", authHandler.ChangePassword)
	}

	engine.GET("/", contentHandler.ListPosts)
	engine.GET("/posts", contentHandler.ListPosts)
	engine.GET("/posts/:slug", contentHandler.GetPost)
	engine.GET("/about", contentHandler.StaticPage("about"))
	engine.GET("/contact", contentHandler.StaticPage("contact"))
	engine.GET("/profile", handlers.Me)

	return engine
}
