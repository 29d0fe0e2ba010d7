package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/colisso/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) listPackages(c *gin.Context) {
	labelID, ok := idParam(c, "id")
	if !ok {
		return
	}

	list, err := s.svc.Packages.List(c.Request.Context(), labelID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) addPackage(c *gin.Context) {
	labelID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.PackageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.svc.Packages.Add(c.Request.Context(), labelID, in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *HTTPServer) getPackage(c *gin.Context) {
	labelID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "packageId")
	if !ok {
		return
	}

	p, err := s.svc.Packages.Get(c.Request.Context(), labelID, id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *HTTPServer) updatePackage(c *gin.Context) {
	labelID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "packageId")
	if !ok {
		return
	}
	var in services.PackageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.svc.Packages.Update(c.Request.Context(), labelID, id, in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *HTTPServer) removePackage(c *gin.Context) {
	labelID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "packageId")
	if !ok {
		return
	}

	if err := s.svc.Packages.Remove(c.Request.Context(), labelID, id); err != nil {
		s.failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
