package ctl

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/colisso/internal/filex"
	"github.com/dmitrijs2005/colisso/internal/labelpdf"
	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/qrcode"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/services"
	"github.com/dmitrijs2005/colisso/internal/tracking"
	"github.com/spf13/cobra"
)

func (a *App) labelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Work with shipping labels offline",
	}

	l := models.Label{
		Weight:      models.DefaultWeight,
		Length:      models.DefaultLength,
		Width:       models.DefaultWidth,
		Height:      models.DefaultHeight,
		ServiceCode: models.DefaultServiceCode,
		ServiceType: models.DefaultServiceType,
	}
	var (
		out, payment string
		cost         float64
		urlQR        bool
	)

	render := &cobra.Command{
		Use:     "render",
		Short:   "Render a label PDF without touching the database",
		Example: `  colissoctl label render --recipient-name "Awa Diop" --recipient-city Dakar --destination Sénégal --out label.pdf`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(l.RecipientName) == "" {
				return fmt.Errorf("--recipient-name is required")
			}
			p, err := lifecycle.ParsePayment(payment)
			if err != nil {
				return err
			}
			l.PaymentStatus = p
			if cmd.Flags().Changed("cost") {
				l.Cost = &cost
			}
			if err := services.CheckParcel(l.Weight, l.Length, l.Width, l.Height, l.Cost); err != nil {
				return err
			}
			if l.TrackingID == "" {
				if l.TrackingID, err = tracking.NewGenerator(a.cfg.TrackingPrefix).Generate(); err != nil {
					return err
				}
			}
			l.TrackingID = strings.ToUpper(l.TrackingID)
			l.SenderName = a.cfg.SenderName
			l.SenderCity = a.cfg.SenderCity
			l.SenderPhone = a.cfg.SenderPhone
			l.CreatedAt = time.Now()

			var opts []labelpdf.Option
			if urlQR {
				opts = append(opts, labelpdf.WithTrackingURL(a.cfg.PublicBaseURL))
			}
			pdf, err := labelpdf.NewRenderer(a.qr, a.logger(), opts...).Render(cmd.Context(), labelpdf.FromLabel(&l, nil, nil))
			if err != nil {
				return err
			}

			if out == "" {
				out = "etiquette-" + l.TrackingID + ".pdf"
			}
			if err := filex.WriteFileAtomic(out, pdf); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %d bytes (%s)\n", out, len(pdf), l.TrackingID)
			return nil
		},
	}

	f := render.Flags()
	f.StringVar(&l.TrackingID, "tracking-id", "", "tracking ID (generated when empty)")
	f.StringVar(&l.RecipientName, "recipient-name", "", "recipient name")
	f.StringVar(&l.RecipientCity, "recipient-city", "", "recipient city")
	f.StringVar(&l.RecipientPhone, "recipient-phone", "", "recipient phone")
	f.StringVar(&l.Destination, "destination", "", "destination country")
	f.Float64Var(&l.Weight, "weight", l.Weight, "weight, kg")
	f.Float64Var(&l.Length, "length", l.Length, "length, cm")
	f.Float64Var(&l.Width, "width", l.Width, "width, cm")
	f.Float64Var(&l.Height, "height", l.Height, "height, cm")
	f.Float64Var(&cost, "cost", 0, "price in EUR")
	f.StringVar(&payment, "payment", string(lifecycle.Paid), "payment status")
	f.BoolVar(&urlQR, "url-qr", a.cfg.QRPayloadMode == "url", "encode the tracking URL in the QR code")
	f.StringVarP(&out, "out", "o", "", "output file (default etiquette-<id>.pdf)")

	cmd.AddCommand(render)
	return cmd
}

func (a *App) qrcodeCmd() *cobra.Command {
	var (
		out, fg, bg string
		width       int
		asURL       bool
		dataURL     bool
	)

	cmd := &cobra.Command{
		Use:   "qrcode <tracking-id>",
		Short: "Write the QR code PNG of a tracking ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			opts := qrcode.DefaultOptions()
			opts.Width = width
			if fg != "" {
				c, err := qrcode.ParseHexColor(fg)
				if err != nil {
					return err
				}
				opts.Foreground = c
			}
			if bg != "" {
				c, err := qrcode.ParseHexColor(bg)
				if err != nil {
					return err
				}
				opts.Background = c
			}

			mode := qrcode.PayloadTrackingID
			if asURL {
				mode = qrcode.PayloadTrackingURL
			}
			payload := qrcode.Payload(mode, a.cfg.PublicBaseURL, strings.TrimSpace(args[0]))

			if dataURL {
				u, err := a.qr.EncodeDataURL(payload, opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, u)
				return nil
			}

			png, err := a.qr.Encode(payload, opts)
			if err != nil {
				return err
			}
			if out == "" {
				out = "qrcode-" + args[0] + ".png"
			}
			if err := filex.WriteFileAtomic(out, png); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %s\n", out, payload)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default qrcode-<id>.png)")
	cmd.Flags().IntVar(&width, "width", qrcode.DefaultOptions().Width, "image side in pixels")
	cmd.Flags().StringVar(&fg, "fg", "", "foreground colour, #RRGGBB")
	cmd.Flags().StringVar(&bg, "bg", "", "background colour, #RRGGBB")
	cmd.Flags().BoolVar(&asURL, "url", false, "encode <base-url>/track/<id> instead of the bare ID")
	cmd.Flags().BoolVar(&dataURL, "data-url", false, "print a data:image/png;base64 URL instead of writing a file")
	return cmd
}
