// Package qrcode renders tracking payloads as PNG QR codes.
//
// The matrix comes from skip2/go-qrcode at medium error correction; the
// raster is drawn here so that pixel width, quiet-zone margin and colours
// are under the caller's control. Output is deterministic for identical
// inputs.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strconv"
	"strings"

	goqr "github.com/skip2/go-qrcode"
)

var (
	// ErrEncoding is wrapped by every failure returned from Encode.
	ErrEncoding = errors.New("qr encoding failed")
	// ErrWidthTooSmall is wrapped together with ErrEncoding when the
	// requested width leaves less than one pixel per module.
	ErrWidthTooSmall = errors.New("width too small")
)

// PayloadMode selects what a tracking QR code carries.
type PayloadMode int

const (
	// PayloadTrackingID encodes the bare tracking identifier.
	PayloadTrackingID PayloadMode = iota
	// PayloadTrackingURL encodes <base>/track/<id>.
	PayloadTrackingURL
)

// ParseMode maps "url" to PayloadTrackingURL and anything else to
// PayloadTrackingID.
func ParseMode(s string) PayloadMode {
	if strings.EqualFold(s, "url") {
		return PayloadTrackingURL
	}
	return PayloadTrackingID
}

// Payload builds the string to encode for trackingID.
func Payload(mode PayloadMode, baseURL, trackingID string) string {
	if mode == PayloadTrackingURL {
		return strings.TrimRight(baseURL, "/") + "/track/" + url.PathEscape(trackingID)
	}
	return trackingID
}

// Options controls the raster.
type Options struct {
	// Width is the image side in pixels.
	Width int
	// Margin is the quiet zone in modules.
	Margin     int
	Foreground color.Color
	Background color.Color
}

// DefaultOptions returns a 150 px black-on-white image with a one-module
// margin.
func DefaultOptions() Options {
	return Options{
		Width:      150,
		Margin:     1,
		Foreground: color.Black,
		Background: color.White,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Foreground == nil {
		o.Foreground = d.Foreground
	}
	if o.Background == nil {
		o.Background = d.Background
	}
	return o
}

// Service encodes payloads. It keeps no state between calls.
type Service struct {
	level goqr.RecoveryLevel
}

func NewService() *Service {
	return &Service{level: goqr.Medium}
}

// Encode returns the PNG bytes of payload rendered with opts.
func (s *Service) Encode(payload string, opts Options) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrEncoding)
	}
	opts = opts.normalized()

	q, err := goqr.New(payload, s.level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	q.DisableBorder = true
	matrix := q.Bitmap()

	total := len(matrix) + 2*opts.Margin
	scale := opts.Width / total
	if scale < 1 {
		return nil, fmt.Errorf("%w: %w (%d px for %d modules)", ErrEncoding, ErrWidthTooSmall, opts.Width, total)
	}
	offset := (opts.Width-scale*total)/2 + opts.Margin*scale

	img := image.NewPaletted(image.Rect(0, 0, opts.Width, opts.Width), color.Palette{opts.Background, opts.Foreground})
	for y, row := range matrix {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0, y0 := offset+x*scale, offset+y*scale
			for py := y0; py < y0+scale; py++ {
				for px := x0; px < x0+scale; px++ {
					img.SetColorIndex(px, py, 1)
				}
			}
		}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

// EncodeDataURL is Encode wrapped as a data:image/png;base64 URL.
func (s *Service) EncodeDataURL(payload string, opts Options) (string, error) {
	b, err := s.Encode(payload, opts)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB".
func ParseHexColor(s string) (color.Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return nil, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
