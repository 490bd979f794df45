package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the poster API under /api.
func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/posters", s.createPoster)
		api.GET("/posters", s.listPosters)
		api.GET("/posters/:id/image", s.posterImage)
		api.GET("/posters/:id/qr", s.posterQR)
	}
}
