package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func queryInt(c *gin.Context, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, common.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}

// checkClientID rejects a body clientId that cannot name a stored client.
// A blank one is left to the service's required-field check.
func checkClientID(in services.LabelInput) error {
	id := strings.TrimSpace(in.ClientID)
	if id == "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return common.NewValidationError("clientId", "unknown client")
	}
	return nil
}

func (s *HTTPServer) listLabels(c *gin.Context) {
	f := models.LabelFilter{Status: lifecycle.Status(c.Query("status"))}
	var err error
	if f.Limit, err = queryInt(c, "limit"); err != nil {
		s.failErr(c, err)
		return
	}
	if f.Offset, err = queryInt(c, "offset"); err != nil {
		s.failErr(c, err)
		return
	}

	list, err := s.svc.Labels.List(c.Request.Context(), f)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) createLabel(c *gin.Context) {
	var in services.LabelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkClientID(in); err != nil {
		s.failErr(c, err)
		return
	}

	d, err := s.svc.Labels.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (s *HTTPServer) getLabel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	d, err := s.svc.Labels.Get(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *HTTPServer) updateLabel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.LabelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkClientID(in); err != nil {
		s.failErr(c, err)
		return
	}

	l, err := s.svc.Labels.Update(c.Request.Context(), id, in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *HTTPServer) deleteLabel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.svc.Labels.Delete(c.Request.Context(), id); err != nil {
		s.failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) cancelLabel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	l, err := s.svc.Labels.Cancel(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *HTTPServer) downloadLabel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	r, err := s.svc.Labels.Download(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, r.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", r.PDF)
}

func (s *HTTPServer) labelQRCode(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	opts, err := qrOptions(c)
	if err != nil {
		s.failErr(c, err)
		return
	}

	png, l, err := s.svc.Labels.QRCode(c.Request.Context(), id, opts)
	if err != nil {
		s.failErr(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="qrcode-%s.png"`, l.TrackingID))
	c.Data(http.StatusOK, "image/png", png)
}

func (s *HTTPServer) archiveURL(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	url, err := s.svc.Labels.ArchiveURL(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
