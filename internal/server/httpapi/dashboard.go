package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) dashboardStats(c *gin.Context) {
	st, err := s.svc.Dashboard.Stats(c.Request.Context(), userID(c))
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *HTTPServer) dashboardCharts(c *gin.Context) {
	points, err := s.svc.Dashboard.Charts(c.Request.Context(), userID(c))
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *HTTPServer) dashboardActivity(c *gin.Context) {
	items, err := s.svc.Dashboard.Activity(c.Request.Context(), userID(c))
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
