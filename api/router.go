package api

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	AllowedOrigins []string
	// SwaggerDir holds bookit.swagger.json. Empty disables /docs.
	SwaggerDir string
}

// NewRouter mounts every handler under /api.
func NewRouter(cfg RouterConfig, experiences *ExperienceHandler, bookings *BookingHandler, promos *PromoHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CORS(cfg.AllowedOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := router.Group("/api")
	experiences.Register(group.Group("/experiences"))
	bookings.Register(group.Group("/bookings"))
	promos.Register(group.Group("/promo"))

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/bookit.swagger.json"))))
	}
	return router
}

// CORS allows the listed origins; "*" allows any.
func CORS(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (slices.Contains(allowed, "*") || slices.Contains(allowed, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
