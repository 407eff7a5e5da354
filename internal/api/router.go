package api

import (
	"net/http"

	"github.com/bizsuite/bizsuite/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ServiceName is reported by / and /ready
const ServiceName = "bizsuite"

// Version is overridden at build time with -ldflags
var Version = "dev"

// RouterConfig carries what the router needs beyond the handler
type RouterConfig struct {
	JWTSecret    string
	AllowOrigins []string
}

// NewRouter wires middleware and routes
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if len(cfg.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/ready", handler.Health)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg.JWTSecret))
	{
		contacts := v1.Group("/contacts")
		contacts.GET("", RequirePermission(PermContactsRead), handler.ListContacts)
		contacts.GET("/:id", RequirePermission(PermContactsRead), handler.GetContact)
		contacts.POST("", RequirePermission(PermContactsCreate), handler.CreateContact)
		contacts.PUT("/:id", RequirePermission(PermContactsUpdate), handler.UpdateContact)
		contacts.DELETE("/:id", RequirePermission(PermContactsDelete), handler.DeleteContact)

		v1.GET("/dashboard/summary", handler.DashboardSummary)
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": ServiceName,
			"version": Version,
			"status":  "running",
		})
	})

	return router
}
