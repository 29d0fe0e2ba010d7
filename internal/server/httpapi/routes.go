package httpapi

import (
	"html/template"
	"net/http"
	"time"

	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handler builds the gin engine with every route registered.
func (s *HTTPServer) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.requestLogger())
	r.Use(cors.New(s.corsConfig()))
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")))

	r.GET("/health", s.health)
	r.GET("/track/:trackingId", s.trackPage)
	r.GET("/api/qrcode/:trackingId", s.publicQRCode)

	a := r.Group("/api/auth")
	{
		a.POST("/register", s.register)
		a.POST("/login", s.login)
		a.POST("/refresh", s.refresh)
		a.POST("/logout", s.requireAuth(), s.logout)
		a.GET("/session", s.requireAuth(), s.session)
	}

	api := r.Group("/api")
	api.Use(s.requireAuth())
	moderator := requireRole(models.RoleManager, models.RoleAdmin)

	cl := api.Group("/clients")
	{
		cl.GET("", s.listClients)
		cl.POST("", s.createClient)
		cl.GET("/:id", s.getClient)
		cl.PUT("/:id", s.updateClient)
		cl.DELETE("/:id", moderator, s.deleteClient)
	}

	lb := api.Group("/labels")
	{
		lb.GET("", s.listLabels)
		lb.POST("", s.createLabel)
		lb.GET("/:id", s.getLabel)
		lb.PUT("/:id", s.updateLabel)
		lb.DELETE("/:id", moderator, s.deleteLabel)
		lb.POST("/:id/cancel", s.cancelLabel)
		lb.GET("/:id/download", s.downloadLabel)
		lb.GET("/:id/qrcode", s.labelQRCode)
		lb.GET("/:id/archive-url", s.archiveURL)

		lb.GET("/:id/packages", s.listPackages)
		lb.POST("/:id/packages", s.addPackage)
		lb.GET("/:id/packages/:packageId", s.getPackage)
		lb.PUT("/:id/packages/:packageId", s.updatePackage)
		lb.DELETE("/:id/packages/:packageId", s.removePackage)
	}

	db := api.Group("/dashboard")
	{
		db.GET("/stats", s.dashboardStats)
		db.GET("/charts", s.dashboardCharts)
		db.GET("/activity", s.dashboardActivity)
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "route not found")
	})

	return r
}

// corsConfig allows the configured origins. An empty list or "*" opens the
// API to any origin without credentials.
func (s *HTTPServer) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range s.origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(s.origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = s.origins
	return cfg
}
