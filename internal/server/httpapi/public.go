package httpapi

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/qrcode"
	"github.com/gin-gonic/gin"
)

const (
	minQRWidth = 50
	maxQRWidth = 1000

	qrCacheControl = "public, max-age=3600"
)

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// qrOptions reads ?width=&fg=&bg= over the default raster options.
func qrOptions(c *gin.Context) (qrcode.Options, error) {
	opts := qrcode.DefaultOptions()
	if w := c.Query("width"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < minQRWidth || n > maxQRWidth {
			return opts, common.NewValidationError("width", fmt.Sprintf("must be between %d and %d", minQRWidth, maxQRWidth))
		}
		opts.Width = n
	}
	if fg := c.Query("fg"); fg != "" {
		col, err := qrcode.ParseHexColor(fg)
		if err != nil {
			return opts, common.NewValidationError("fg", err.Error())
		}
		opts.Foreground = col
	}
	if bg := c.Query("bg"); bg != "" {
		col, err := qrcode.ParseHexColor(bg)
		if err != nil {
			return opts, common.NewValidationError("bg", err.Error())
		}
		opts.Background = col
	}
	return opts, nil
}

// publicQRCode encodes the literal tracking ID (or its tracking URL with
// ?mode=url). It never consults storage.
func (s *HTTPServer) publicQRCode(c *gin.Context) {
	trackingID := strings.TrimSpace(c.Param("trackingId"))
	if trackingID == "" {
		fail(c, http.StatusBadRequest, "tracking id is required")
		return
	}
	opts, err := qrOptions(c)
	if err != nil {
		s.failErr(c, err)
		return
	}

	payload := qrcode.Payload(qrcode.ParseMode(c.Query("mode")), s.baseURL, trackingID)
	png, err := s.svc.QR.Encode(payload, opts)
	if err != nil {
		if errors.Is(err, qrcode.ErrWidthTooSmall) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		s.failErr(c, fmt.Errorf("%w: %w", common.ErrorRender, err))
		return
	}

	c.Header("Cache-Control", qrCacheControl)
	c.Data(http.StatusOK, "image/png", png)
}

// trackPage renders the public tracking page, or its JSON view when the
// client prefers application/json.
func (s *HTTPServer) trackPage(c *gin.Context) {
	trackingID := c.Param("trackingId")
	wantJSON := c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON

	v, err := s.svc.Labels.Track(c.Request.Context(), trackingID)
	if err != nil {
		if wantJSON {
			s.failErr(c, err)
			return
		}
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			s.logger.Error(c.Request.Context(), "tracking page", "tracking_id", trackingID, "error", err)
		}
		c.HTML(code, "track.html", gin.H{"TrackingID": strings.ToUpper(trackingID), "NotFound": code == http.StatusNotFound})
		return
	}

	if wantJSON {
		c.JSON(http.StatusOK, v)
		return
	}

	data := gin.H{"TrackingID": v.TrackingID, "View": v}
	qr, err := s.svc.QR.EncodeDataURL(qrcode.Payload(qrcode.PayloadTrackingURL, s.baseURL, v.TrackingID), qrcode.DefaultOptions())
	if err != nil {
		s.logger.Warn(c.Request.Context(), "tracking page qr", "tracking_id", v.TrackingID, "error", err)
	} else {
		data["QR"] = template.URL(qr)
	}
	c.HTML(http.StatusOK, "track.html", data)
}
