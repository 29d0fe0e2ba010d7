package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/dbx"
	"github.com/dmitrijs2005/colisso/internal/labelpdf"
	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/qrcode"
	sc "github.com/dmitrijs2005/colisso/internal/server/config"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/colisso/internal/tracking"
)

// MaxTrackingAttempts bounds tracking ID regeneration on collisions.
const MaxTrackingAttempts = 3

// LabelRenderer turns a label document into PDF bytes.
type LabelRenderer interface {
	Render(ctx context.Context, doc labelpdf.Document) ([]byte, error)
}

// QREncoder turns a payload into PNG bytes.
type QREncoder interface {
	Encode(payload string, opts qrcode.Options) ([]byte, error)
}

type trackingGenerator interface {
	Generate() (string, error)
}

// LabelInput carries the editable fields of a label. Blank sender fields and
// nil dimensions take the company defaults on create and keep the stored
// values on update, as does a blank payment status. Packages is only read
// on create.
type LabelInput struct {
	ClientID       string         `json:"clientId"`
	SenderName     string         `json:"senderName"`
	SenderCity     string         `json:"senderCity"`
	SenderPhone    string         `json:"senderPhone"`
	RecipientName  string         `json:"recipientName"`
	RecipientCity  string         `json:"recipientCity"`
	RecipientPhone string         `json:"recipientPhone"`
	Destination    string         `json:"destination"`
	Weight         *float64       `json:"weight"`
	Length         *float64       `json:"length"`
	Width          *float64       `json:"width"`
	Height         *float64       `json:"height"`
	ServiceCode    string         `json:"serviceCode"`
	ServiceType    string         `json:"serviceType"`
	Cost           *float64       `json:"cost"`
	PaymentStatus  string         `json:"paymentStatus"`
	Status         string         `json:"status"`
	Packages       []PackageInput `json:"packages"`
}

// RenderedLabel is the result of a download.
type RenderedLabel struct {
	Label    *models.Label
	PDF      []byte
	Filename string
}

// TrackingView is the public, contact-free view of a shipment.
type TrackingView struct {
	TrackingID    string           `json:"trackingId"`
	Status        lifecycle.Status `json:"status"`
	StatusLabel   string           `json:"statusLabel"`
	StatusColor   string           `json:"statusColor"`
	SenderCity    string           `json:"senderCity"`
	RecipientCity string           `json:"recipientCity"`
	Destination   string           `json:"destination"`
	ServiceType   string           `json:"serviceType"`
	ParcelCount   int              `json:"parcelCount"`
	TotalWeight   float64          `json:"totalWeight"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// LabelService owns label creation, the lifecycle and the artifacts
// (PDF, QR code, archive) derived from a label.
type LabelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	renderer    LabelRenderer
	qr          QREncoder
	archive     Archive
	tracking    trackingGenerator
	qrMode      qrcode.PayloadMode
	baseURL     string
	sender      labelpdf.Party
	logger      logging.Logger
	now         func() time.Time
}

// NewLabelService wires the label service. archive may be nil to disable
// archiving.
func NewLabelService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config,
	renderer LabelRenderer, qr QREncoder, archive Archive, logger logging.Logger) *LabelService {
	return &LabelService{
		db:          db,
		repomanager: m,
		renderer:    renderer,
		qr:          qr,
		archive:     archive,
		tracking:    tracking.NewGenerator(cfg.TrackingPrefix),
		qrMode:      qrcode.ParseMode(cfg.QRPayloadMode),
		baseURL:     cfg.PublicBaseURL,
		sender: labelpdf.Party{
			Name:  cfg.SenderName,
			City:  orDefault(cfg.SenderCity, models.DefaultSenderCity),
			Phone: orDefault(cfg.SenderPhone, models.DefaultSenderPhone),
		},
		logger: logger.With("module", "labels"),
		now:    time.Now,
	}
}

// apply validates in and writes the editable fields over l.
func (s *LabelService) apply(in LabelInput, l *models.Label) error {
	if err := firstError(
		required("clientId", in.ClientID),
		required("recipientName", in.RecipientName),
		required("recipientCity", in.RecipientCity),
		required("destination", in.Destination),
		optionalPhone("recipientPhone", trimmed(&in.RecipientPhone)),
		nonNegative("cost", in.Cost),
	); err != nil {
		return err
	}

	dims := []struct {
		field string
		in    *float64
		dst   *float64
		def   float64
	}{
		{"weight", in.Weight, &l.Weight, models.DefaultWeight},
		{"length", in.Length, &l.Length, models.DefaultLength},
		{"width", in.Width, &l.Width, models.DefaultWidth},
		{"height", in.Height, &l.Height, models.DefaultHeight},
	}
	for _, d := range dims {
		def := d.def
		if *d.dst > 0 {
			def = *d.dst
		}
		v, err := positiveOr(d.field, d.in, def)
		if err != nil {
			return err
		}
		*d.dst = v
	}

	payment := l.PaymentStatus
	if in.PaymentStatus != "" || payment == "" {
		p, err := lifecycle.ParsePayment(in.PaymentStatus)
		if err != nil {
			return common.NewValidationError("paymentStatus", err.Error())
		}
		payment = p
	}

	l.ClientID = strings.TrimSpace(in.ClientID)
	l.SenderName = orDefault(in.SenderName, orDefault(l.SenderName, s.sender.Name))
	l.SenderCity = orDefault(in.SenderCity, orDefault(l.SenderCity, s.sender.City))
	l.SenderPhone = orDefault(in.SenderPhone, orDefault(l.SenderPhone, s.sender.Phone))
	l.RecipientName = strings.TrimSpace(in.RecipientName)
	l.RecipientCity = strings.TrimSpace(in.RecipientCity)
	l.RecipientPhone = strings.TrimSpace(in.RecipientPhone)
	l.Destination = strings.TrimSpace(in.Destination)
	l.ServiceCode = orDefault(in.ServiceCode, orDefault(l.ServiceCode, models.DefaultServiceCode))
	l.ServiceType = orDefault(in.ServiceType, orDefault(l.ServiceType, models.DefaultServiceType))
	l.Cost = in.Cost
	l.PaymentStatus = payment
	return nil
}

func (s *LabelService) ensureClient(ctx context.Context, id string) error {
	_, err := s.repomanager.Clients(s.db).Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewValidationError("clientId", "unknown client")
	}
	return err
}

// Create stores a new DRAFT label for userID with a fresh tracking ID.
// Without explicit packages one package is created from the label's own
// dimensions, so every label has at least one parcel row.
func (s *LabelService) Create(ctx context.Context, userID string, in LabelInput) (*models.LabelDetails, error) {
	l := &models.Label{Status: lifecycle.Draft}
	if err := s.apply(in, l); err != nil {
		return nil, err
	}
	if userID != "" {
		l.UserID = &userID
	}

	pkgs := make([]*models.Package, 0, len(in.Packages))
	for i, pin := range in.Packages {
		p := &models.Package{}
		if err := pin.apply(p); err != nil {
			return nil, fmt.Errorf("packages[%d]: %w", i, err)
		}
		pkgs = append(pkgs, p)
	}
	if len(pkgs) == 0 {
		pkgs = append(pkgs, &models.Package{Weight: l.Weight, Length: l.Length, Width: l.Width, Height: l.Height})
	}

	if err := s.ensureClient(ctx, l.ClientID); err != nil {
		return nil, err
	}

	var out *models.LabelDetails
	for attempt := 1; attempt <= MaxTrackingAttempts; attempt++ {
		trackingID, err := s.tracking.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate tracking id: %w", err)
		}
		l.TrackingID = trackingID

		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			created, err := s.repomanager.Labels(tx).Create(ctx, l)
			if err != nil {
				return err
			}
			details := &models.LabelDetails{Label: *created, Packages: make([]models.Package, 0, len(pkgs))}
			for _, p := range pkgs {
				p.LabelID = created.ID
				cp, err := s.repomanager.Packages(tx).Create(ctx, p)
				if err != nil {
					return err
				}
				details.Packages = append(details.Packages, *cp)
			}
			out = details
			return nil
		})
		if err == nil {
			s.logger.Info(ctx, "label created", "label_id", out.ID, "tracking_id", out.TrackingID, "attempt", attempt)
			return out, nil
		}
		if !errors.Is(err, common.ErrTrackingIDCollision) {
			return nil, err
		}
		s.logger.Warn(ctx, "tracking id collision", "tracking_id", trackingID, "attempt", attempt)
		l.ID = ""
		for _, p := range pkgs {
			p.ID = ""
		}
	}
	return nil, fmt.Errorf("%d attempts: %w", MaxTrackingAttempts, common.ErrTrackingIDCollision)
}

// Get returns the label with its client and packages.
func (s *LabelService) Get(ctx context.Context, id string) (*models.LabelDetails, error) {
	l, err := s.repomanager.Labels(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, l)
}

func (s *LabelService) details(ctx context.Context, l *models.Label) (*models.LabelDetails, error) {
	c, err := s.repomanager.Clients(s.db).Get(ctx, l.ClientID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	pkgs, err := s.repomanager.Packages(s.db).ListByLabel(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return &models.LabelDetails{Label: *l, Client: c, Packages: pkgs}, nil
}

func (s *LabelService) List(ctx context.Context, f models.LabelFilter) ([]models.Label, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, common.NewValidationError("status", "unknown status")
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, common.NewValidationError("limit", "paging must not be negative")
	}
	return s.repomanager.Labels(s.db).List(ctx, f)
}

// Update replaces the editable fields of label id. A status change must be
// allowed by the lifecycle; moving to CANCELLED marks the label refunded.
// A label with a single package row keeps that row in step with its own
// weight and dimensions.
func (s *LabelService) Update(ctx context.Context, id string, in LabelInput) (*models.Label, error) {
	repo := s.repomanager.Labels(s.db)
	l, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	current := l.Status
	if err := s.apply(in, l); err != nil {
		return nil, err
	}
	if in.Status != "" {
		next, err := lifecycle.Parse(in.Status)
		if err != nil {
			return nil, common.NewValidationError("status", err.Error())
		}
		if !lifecycle.CanTransition(current, next) {
			return nil, fmt.Errorf("status %s -> %s: %w", current, next, common.ErrorConflict)
		}
		l.Status = next
		if next == lifecycle.Cancelled {
			l.PaymentStatus = lifecycle.Refunded
		}
	}
	if err := s.ensureClient(ctx, l.ClientID); err != nil {
		return nil, err
	}

	var updated *models.Label
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Labels(tx).Update(ctx, l)
		if err != nil {
			return err
		}
		if err := s.syncSinglePackage(ctx, tx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated.Status != current {
		s.logger.Info(ctx, "label status changed", "label_id", id, "from", current, "to", updated.Status)
	}
	return updated, nil
}

func (s *LabelService) syncSinglePackage(ctx context.Context, tx dbx.DBTX, l *models.Label) error {
	repo := s.repomanager.Packages(tx)
	pkgs, err := repo.ListByLabel(ctx, l.ID)
	if err != nil {
		return err
	}
	if len(pkgs) != 1 {
		return nil
	}
	p := pkgs[0]
	if p.Weight == l.Weight && p.Length == l.Length && p.Width == l.Width && p.Height == l.Height {
		return nil
	}
	p.Weight, p.Length, p.Width, p.Height = l.Weight, l.Length, l.Width, l.Height
	if _, err := repo.Update(ctx, &p); err != nil {
		return fmt.Errorf("sync package %s: %w", p.ID, err)
	}
	return nil
}

// Cancel moves a non-terminal label to CANCELLED and marks it refunded.
// Cancelling a cancelled label is a no-op.
func (s *LabelService) Cancel(ctx context.Context, id string) (*models.Label, error) {
	repo := s.repomanager.Labels(s.db)
	l, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == lifecycle.Cancelled {
		return l, nil
	}
	if !lifecycle.CanTransition(l.Status, lifecycle.Cancelled) {
		return nil, fmt.Errorf("label is %s: %w", l.Status, common.ErrorConflict)
	}
	if err := repo.UpdateStatus(ctx, id, lifecycle.Cancelled, lifecycle.Refunded); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "label cancelled", "label_id", id, "from", l.Status)
	return repo.Get(ctx, id)
}

// Delete removes the label and, by cascade, its packages.
func (s *LabelService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Labels(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "label deleted", "label_id", id)
	return nil
}

// Download renders the PDF of a paid label. The first successful render
// advances DRAFT and PENDING labels to GENERATED; later states are kept.
// When archiving is enabled the PDF is also stored; archive failures are
// logged and do not fail the download.
func (s *LabelService) Download(ctx context.Context, id string) (*RenderedLabel, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.ArtifactsAvailable(d.PaymentStatus) {
		return nil, common.ErrorPaymentRequired
	}

	pdf, err := s.renderer.Render(ctx, labelpdf.FromLabel(&d.Label, d.Client, d.Packages))
	if err != nil {
		if errors.Is(err, common.ErrorRender) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorRender, err)
	}

	label := d.Label
	if next := lifecycle.AdvanceOnRender(label.Status); next != label.Status {
		if err := s.repomanager.Labels(s.db).UpdateStatus(ctx, id, next, label.PaymentStatus); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "label status changed", "label_id", id, "from", label.Status, "to", next)
		label.Status = next
	}

	if s.archive != nil {
		s.archivePDF(ctx, &label, pdf)
	}

	return &RenderedLabel{
		Label:    &label,
		PDF:      pdf,
		Filename: fmt.Sprintf("etiquette-%s.pdf", label.TrackingID),
	}, nil
}

func (s *LabelService) archivePDF(ctx context.Context, l *models.Label, pdf []byte) {
	key := ArchiveKey(l.TrackingID, s.now())
	if err := s.archive.Put(ctx, key, pdf); err != nil {
		s.logger.Warn(ctx, "label archive failed", "label_id", l.ID, "key", key, "error", err)
		return
	}
	if err := s.repomanager.Labels(s.db).SetArchiveKey(ctx, l.ID, key); err != nil {
		s.logger.Warn(ctx, "label archive key not saved", "label_id", l.ID, "error", err)
		return
	}
	l.ArchiveKey = &key
}

// QRCode renders the QR code of a paid label.
func (s *LabelService) QRCode(ctx context.Context, id string, opts qrcode.Options) ([]byte, *models.Label, error) {
	l, err := s.repomanager.Labels(s.db).Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !lifecycle.ArtifactsAvailable(l.PaymentStatus) {
		return nil, nil, common.ErrorPaymentRequired
	}
	png, err := s.qr.Encode(qrcode.Payload(s.qrMode, s.baseURL, l.TrackingID), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrorRender, err)
	}
	return png, l, nil
}

// ArchiveURL returns a presigned download URL of the archived PDF.
func (s *LabelService) ArchiveURL(ctx context.Context, id string) (string, error) {
	l, err := s.repomanager.Labels(s.db).Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.archive == nil || l.ArchiveKey == nil {
		return "", fmt.Errorf("label %s has no archived pdf: %w", id, common.ErrorNotFound)
	}
	if !lifecycle.ArtifactsAvailable(l.PaymentStatus) {
		return "", common.ErrorPaymentRequired
	}
	return s.archive.PresignGet(ctx, *l.ArchiveKey)
}

// Track returns the public view of the shipment with trackingID.
func (s *LabelService) Track(ctx context.Context, trackingID string) (*TrackingView, error) {
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))
	l, err := s.repomanager.Labels(s.db).GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	pkgs, err := s.repomanager.Packages(s.db).ListByLabel(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	v := &TrackingView{
		TrackingID:    l.TrackingID,
		Status:        l.Status,
		StatusLabel:   l.Status.DisplayName(),
		StatusColor:   l.Status.Color(),
		SenderCity:    l.SenderCity,
		RecipientCity: l.RecipientCity,
		Destination:   l.Destination,
		ServiceType:   l.ServiceType,
		ParcelCount:   len(pkgs),
		TotalWeight:   l.Weight,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
	if len(pkgs) > 0 {
		v.TotalWeight = 0
		for _, p := range pkgs {
			v.TotalWeight += p.Weight
		}
	} else {
		v.ParcelCount = 1
	}
	return v, nil
}
