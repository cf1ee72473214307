package identity

import (
	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/config"
	"github.com/riefer02/astro-wordpress-starter/internal/middleware"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

// RouterDeps carries everything the identity router needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  logger.Logger
	Handler *Handler
	DB      *DB
}

// NewRouter builds the identity service's gin engine. Routes live under
// /wp-json so the site gateway can treat this service like any other
// WordPress REST host.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewRequestLogger(deps.Logger).Handler())

	engine.GET("/healthz", func(c *gin.Context) {
		if deps.DB != nil {
			if err := deps.DB.Health(c.Request.Context()); err != nil {
				c.JSON(503, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	wpJSON := engine.Group("/wp-json")

	jwtAuth := wpJSON.Group("/jwt-auth/v1")
	{
		jwtAuth.POST("/token", deps.Handler.Token)
		jwtAuth.POST("/token/validate", deps.Handler.Validate)
	}

	auth := wpJSON.Group("/auth/v1")
	{
		auth.POST("/register", deps.Handler.Register)
		auth.GET("/profile", deps.Handler.Profile)
		auth.PUT("/profile", deps.Handler.UpdateProfile)
		auth.POST("/change-password", deps.Handler.ChangePassword)
	}

	return engine
}
