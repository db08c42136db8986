package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"viewingdesk/handlers"
	"viewingdesk/middleware"
	"viewingdesk/utils"
)

// RegisterReservationRoutes registers the lookup / availability / update / cancel endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/lookup", hb.LookupHandler)
		api.POST("/check-availability", hb.CheckAvailabilityHandler)

		// Mutations require the token handed out by lookup.
		protected := api.Group("")
		protected.Use(middleware.LookupTokenMiddleware(hb.Tokens))
		protected.POST("/update", hb.UpdateHandler)
		protected.POST("/cancel", hb.CancelHandler)
	}
}

// RegisterPropertyRoutes registers the read-only catalog endpoint.
func RegisterPropertyRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/properties", hb.ListPropertiesHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterReservationRoutes(r, hb)
	RegisterPropertyRoutes(r, hb)
	RegisterHealthRoute(r)
}
