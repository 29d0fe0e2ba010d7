package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/colisso/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// idParam returns the named path parameter when it is a UUID; anything
// else cannot name a stored row and is answered with 404.
func idParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusNotFound, "not found")
		return "", false
	}
	return id, true
}

func (s *HTTPServer) listClients(c *gin.Context) {
	list, err := s.svc.Clients.List(c.Request.Context())
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) createClient(c *gin.Context) {
	var in services.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	cl, err := s.svc.Clients.Create(c.Request.Context(), in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (s *HTTPServer) getClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	d, err := s.svc.Clients.Get(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *HTTPServer) updateClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	cl, err := s.svc.Clients.Update(c.Request.Context(), id, in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (s *HTTPServer) deleteClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.svc.Clients.Delete(c.Request.Context(), id); err != nil {
		s.failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
