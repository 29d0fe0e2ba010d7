// Package labelpdf lays out a 400x600 pt shipping label as a one-page PDF.
//
// Coordinates below are in points from the top-left corner of the page,
// which is how fpdf addresses the page. Text positions are baselines.
package labelpdf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/qrcode"
	"github.com/go-pdf/fpdf"
)

const (
	PageWidth  = 400.0
	PageHeight = 600.0

	font = "Helvetica"

	senderX = 80.0

	barBoxX   = 20.0
	barBoxTop = 80.0
	barBoxH   = 50.0
	barCount  = 40
	barInset  = 5.0

	qrSize = 60.0
	qrX    = PageWidth - 80
	qrTop  = barBoxTop + barBoxH - qrSize

	leftColX   = 20.0
	middleColX = 150.0
	rightColX  = 180.0

	lineStep     = 12.0
	bottomMargin = 30.0

	qrPixelWidth = 240
)

// Party is one side of the shipment.
type Party struct {
	Name  string
	City  string
	Phone string
}

// Parcel is one physical package listed on the label.
type Parcel struct {
	Description string
	Weight      float64
	Length      float64
	Width       float64
	Height      float64
	Value       *float64
}

// Document is everything printed on a label.
type Document struct {
	TrackingID    string
	Sender        Party
	Recipient     Party
	Destination   string
	Weight        float64
	Length        float64
	Width         float64
	Height        float64
	ServiceCode   string
	ServiceType   string
	Cost          *float64
	PaymentStatus lifecycle.PaymentStatus
	CreatedAt     time.Time
	Parcels       []Parcel
}

// parcels returns the explicit parcels, or the label's own dimensions as a
// single implicit parcel when there are none.
func (d Document) parcels() []Parcel {
	if len(d.Parcels) > 0 {
		return d.Parcels
	}
	return []Parcel{{Weight: d.Weight, Length: d.Length, Width: d.Width, Height: d.Height}}
}

// QREncoder produces the PNG embedded in the top-right corner.
type QREncoder interface {
	Encode(payload string, opts qrcode.Options) ([]byte, error)
}

// Renderer turns Documents into PDF bytes. It is safe for concurrent use.
type Renderer struct {
	qr       QREncoder
	logger   logging.Logger
	now      func() time.Time
	qrMode   qrcode.PayloadMode
	baseURL  string
	compress bool
}

type Option func(*Renderer)

// WithClock fixes the document creation date source.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithTrackingURL makes the QR code carry <baseURL>/track/<id> instead of
// the bare identifier.
func WithTrackingURL(baseURL string) Option {
	return func(r *Renderer) {
		r.qrMode = qrcode.PayloadTrackingURL
		r.baseURL = baseURL
	}
}

// WithCompression toggles stream compression. On by default.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

func NewRenderer(qr QREncoder, logger logging.Logger, opts ...Option) *Renderer {
	r := &Renderer{
		qr:       qr,
		logger:   logger.With("module", "labelpdf"),
		now:      time.Now,
		qrMode:   qrcode.PayloadTrackingID,
		compress: true,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// page wraps the fpdf document with the cp1252 translator the core fonts
// need for accented text and the euro sign.
type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *page) text(x, y float64, style string, size float64, s string) {
	p.pdf.SetFont(font, style, size)
	p.pdf.Text(x, y, p.tr(s))
}

func (p *page) centered(y float64, style string, size float64, s string) {
	p.pdf.SetFont(font, style, size)
	t := p.tr(s)
	p.pdf.Text((PageWidth-p.pdf.GetStringWidth(t))/2, y, t)
}

// Render lays out doc. A QR failure degrades to a placeholder pattern; any
// other failure wraps common.ErrorRender.
func (r *Renderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	ts := r.now()
	pdf.SetCreationDate(ts)
	pdf.SetModificationDate(ts)
	pdf.SetTitle("Etiquette "+doc.TrackingID, true)
	pdf.SetCreator("Colisso", true)
	pdf.AddPage()

	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)

	r.drawSender(p, doc.Sender)
	r.drawBars(p, doc.TrackingID)
	r.drawQR(ctx, p, doc.TrackingID)
	y := r.drawAttributes(p, doc)
	y = r.drawPayment(p, y, doc.PaymentStatus)
	y = r.drawRoute(p, y, doc)
	r.drawParcels(p, y, doc.parcels())

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorRender, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorRender, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawSender(p *page, s Party) {
	if s.Name != "" {
		p.text(senderX, 30, "B", 14, s.Name)
	}
	p.text(senderX, 45, "", 10, s.City)
	p.text(senderX, 58, "", 10, s.Phone)
}

// drawBars draws the decorative bar block. It is not a machine-readable
// barcode: bar i is filled when the code of the tracking ID character under
// it, plus i, is even.
func (r *Renderer) drawBars(p *page, trackingID string) {
	p.pdf.SetLineWidth(1)
	p.pdf.Rect(barBoxX, barBoxTop, PageWidth-140, barBoxH, "D")

	if trackingID != "" {
		barW := (PageWidth - 164) / barCount
		p.pdf.SetFillColor(0, 0, 0)
		for i := 0; i < barCount; i++ {
			c := int(trackingID[i%len(trackingID)])
			if (c+i)%2 != 0 {
				continue
			}
			p.pdf.Rect(barBoxX+2+float64(i)*barW, barBoxTop+barInset, barW-1, barBoxH-2*barInset, "F")
		}
	}

	p.text(leftColX, barBoxTop+barBoxH+15, "", 8, trackingID)
	p.text(leftColX, barBoxTop+barBoxH+35, "B", 16, trackingID)
}

func (r *Renderer) drawQR(ctx context.Context, p *page, trackingID string) {
	payload := qrcode.Payload(r.qrMode, r.baseURL, trackingID)
	png, err := r.qr.Encode(payload, qrcode.Options{Width: qrPixelWidth, Margin: 0})
	if err == nil {
		name := "qr-" + trackingID
		p.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		if err = p.pdf.Error(); err == nil {
			p.pdf.ImageOptions(name, qrX, qrTop, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			return
		}
		p.pdf.ClearError()
	}

	r.logger.Warn(ctx, "qr code unavailable, drawing placeholder", "tracking_id", trackingID, "error", err)
	p.pdf.SetFillColor(0, 0, 0)
	p.pdf.Rect(qrX, qrTop, qrSize, qrSize, "F")
	cell := qrSize / 8
	p.pdf.SetFillColor(230, 230, 230)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			if (i+j)%2 == 0 {
				p.pdf.Rect(qrX+float64(i)*cell, qrTop+float64(j)*cell, cell, cell, "F")
			}
		}
	}
}

func (r *Renderer) drawAttributes(p *page, doc Document) float64 {
	y := 195.0
	p.text(leftColX, y, "", 8, "Date: "+doc.CreatedAt.Format("02/01/2006"))
	p.text(middleColX, y, "", 8, "Dimensions: "+dimensions(doc.Length, doc.Width, doc.Height))
	y += 10
	p.text(leftColX, y, "", 8, "Code service: "+doc.ServiceCode)
	p.text(middleColX, y, "", 8, "Coût: "+money(doc.Cost))
	y += 10
	p.text(leftColX, y, "", 8, "Poids: "+num(doc.Weight)+"kg")
	p.text(middleColX, y, "", 8, doc.ServiceType)
	return y + 15
}

func (r *Renderer) drawPayment(p *page, y float64, status lifecycle.PaymentStatus) float64 {
	p.centered(y, "B", 10, "Statut paiement")

	label := string(status)
	p.pdf.SetFont(font, "B", 8)
	w := p.pdf.GetStringWidth(p.tr(label)) + 10
	if w < 40 {
		w = 40
	}
	top := y + 5
	cr, cg, cb := badgeColor(status)
	p.pdf.SetFillColor(cr, cg, cb)
	p.pdf.Rect((PageWidth-w)/2, top, w, 15, "F")
	p.pdf.SetTextColor(255, 255, 255)
	p.centered(top+10.5, "B", 8, label)
	p.pdf.SetTextColor(0, 0, 0)
	return top + 15
}

func badgeColor(status lifecycle.PaymentStatus) (int, int, int) {
	switch status {
	case lifecycle.Paid:
		return 0, 153, 0
	case lifecycle.Unpaid:
		return 204, 0, 0
	case lifecycle.PaymentPending:
		return 230, 140, 0
	default:
		return 120, 120, 120
	}
}

func (r *Renderer) drawRoute(p *page, y float64, doc Document) float64 {
	y += 25
	p.centered(y, "B", 12, doc.Destination)
	y += 20
	p.centered(y, "B", 14, doc.Recipient.Phone)

	y += 35
	p.text(leftColX, y, "B", 8, "Expéditeur")
	p.text(rightColX, y, "B", 8, "Destinataire")
	y += 12
	p.text(leftColX, y, "B", 9, doc.Sender.Name)
	p.text(rightColX, y, "B", 9, doc.Recipient.Name)
	y += 10
	p.text(leftColX, y, "", 8, joinNonEmpty(" - ", doc.Sender.City, doc.Sender.Phone))
	p.text(rightColX, y, "", 8, joinNonEmpty(" - ", doc.Recipient.City, doc.Recipient.Phone))
	return y
}

// drawParcels itemizes parcels when there is more than one. Lines that
// would cross the bottom margin are dropped; the label never spills onto a
// second page.
func (r *Renderer) drawParcels(p *page, y float64, parcels []Parcel) {
	if len(parcels) < 2 {
		return
	}
	y += 25
	p.text(leftColX, y, "B", 10, "COLIS:")
	y += 15
	for i, pc := range parcels {
		if y > PageHeight-bottomMargin {
			break
		}
		line := fmt.Sprintf("%d. %s %skg %scm", i+1, pc.Description, num(pc.Weight), dimensions(pc.Length, pc.Width, pc.Height))
		if pc.Value != nil {
			line += " " + num(*pc.Value) + "€"
		}
		p.text(leftColX, y, "", 8, strings.Join(strings.Fields(line), " "))
		y += lineStep
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func money(v *float64) string {
	if v == nil {
		return "N/A€"
	}
	return num(*v) + "€"
}

func dimensions(l, w, h float64) string {
	return num(l) + "x" + num(w) + "x" + num(h)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}
