// Package httpapi exposes the Colisso services over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/qrcode"
	"github.com/dmitrijs2005/colisso/internal/server/config"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Get(ctx context.Context, id string) (*models.User, error)
}

type ClientService interface {
	Create(ctx context.Context, in services.ClientInput) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Get(ctx context.Context, id string) (*models.ClientDetails, error)
	Update(ctx context.Context, id string, in services.ClientInput) (*models.Client, error)
	Delete(ctx context.Context, id string) error
}

type LabelService interface {
	Create(ctx context.Context, userID string, in services.LabelInput) (*models.LabelDetails, error)
	Get(ctx context.Context, id string) (*models.LabelDetails, error)
	List(ctx context.Context, f models.LabelFilter) ([]models.Label, error)
	Update(ctx context.Context, id string, in services.LabelInput) (*models.Label, error)
	Cancel(ctx context.Context, id string) (*models.Label, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (*services.RenderedLabel, error)
	QRCode(ctx context.Context, id string, opts qrcode.Options) ([]byte, *models.Label, error)
	ArchiveURL(ctx context.Context, id string) (string, error)
	Track(ctx context.Context, trackingID string) (*services.TrackingView, error)
}

type PackageService interface {
	List(ctx context.Context, labelID string) ([]models.Package, error)
	Get(ctx context.Context, labelID, id string) (*models.Package, error)
	Add(ctx context.Context, labelID string, in services.PackageInput) (*models.Package, error)
	Update(ctx context.Context, labelID, id string, in services.PackageInput) (*models.Package, error)
	Remove(ctx context.Context, labelID, id string) error
}

type DashboardService interface {
	Stats(ctx context.Context, userID string) (*services.DashboardStats, error)
	Charts(ctx context.Context, userID string) ([]services.ChartPoint, error)
	Activity(ctx context.Context, userID string) ([]services.ActivityItem, error)
}

type QREncoder interface {
	Encode(payload string, opts qrcode.Options) ([]byte, error)
	EncodeDataURL(payload string, opts qrcode.Options) (string, error)
}

// Services groups the dependencies of the handlers.
type Services struct {
	Users     UserService
	Clients   ClientService
	Labels    LabelService
	Packages  PackageService
	Dashboard DashboardService
	QR        QREncoder
}

type HTTPServer struct {
	address   string
	logger    logging.Logger
	svc       Services
	jwtSecret []byte
	baseURL   string
	origins   []string
	now       func() time.Time
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, svc Services) *HTTPServer {
	return &HTTPServer{
		address:   cfg.HTTPAddr,
		logger:    l.With("module", "http_server"),
		svc:       svc,
		jwtSecret: []byte(cfg.SecretKey),
		baseURL:   cfg.PublicBaseURL,
		origins:   cfg.CORSOrigins,
		now:       time.Now,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
