package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"strings"
	"time"
	"unicode"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/h2non/filetype"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	_ "golang.org/x/image/webp"
)

const opCompose = "compose"

// Layout ratios relative to canvas width/height.
const (
	headlineSizeRatio = 0.075
	ctaSizeRatio      = 0.042
	headlineMaxWidth  = 0.86
	headlineCenterY   = 0.80
	ctaCenterY        = 0.91
	scrimStartY       = 0.66
	logoSizeRatio     = 0.16
	logoMarginRatio   = 0.04
	minHeadlineScale  = 0.55
)

type ComposeInput struct {
	Background []byte
	Format     models.PosterFormat
	Primary    string
	Secondary  string
	Accent     string
	LogoURL    string
	LogoBytes  []byte
	Copy       models.CopyData
	// HasText skips the copy overlay when the background already carries rendered text.
	HasText bool
}

type CompositorService interface {
	Compose(ctx context.Context, in ComposeInput) ([]byte, error)
}

type compositorService struct {
	headlineFont *truetype.Font
	ctaFont      *truetype.Font
	httpClient   *http.Client
	log          *logger.Logger
}

func NewCompositorService(log *logger.Logger) (CompositorService, error) {
	headline, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse headline font: %w", err)
	}
	cta, err := truetype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse cta font: %w", err)
	}
	return &compositorService{
		headlineFont: headline,
		ctaFont:      cta,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		log:          log.With("service", "CompositorService"),
	}, nil
}

func (s *compositorService) Compose(ctx context.Context, in ComposeInput) ([]byte, error) {
	width, height := in.Format.Width, in.Format.Height
	if width <= 0 || height <= 0 {
		return nil, apperr.Validation("target size must be positive")
	}
	if !filetype.IsImage(in.Background) {
		return nil, apperr.Upstream(opCompose, "background is not an image", nil)
	}

	bg, _, err := image.Decode(bytes.NewReader(in.Background))
	if err != nil {
		return nil, apperr.Upstream(opCompose, "decode background", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	coverFit(canvas, bg)

	dc := gg.NewContextForRGBA(canvas)

	if !in.HasText {
		s.drawCopy(dc, in)
	}

	if logo := s.loadLogo(ctx, in); logo != nil {
		side := int(float64(width) * logoSizeRatio)
		margin := int(float64(width) * logoMarginRatio)
		dc.DrawImage(fitSquare(logo, side), margin, margin)
	}

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("encode poster png: %w", err)
	}
	return out.Bytes(), nil
}

// coverFit scales src to fill dst completely, cropping the overflow around the centre.
func coverFit(dst *image.RGBA, src image.Image) {
	sb := src.Bounds()
	dw, dh := float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())
	sw, sh := float64(sb.Dx()), float64(sb.Dy())

	scale := dw / sw
	if dh/sh > scale {
		scale = dh / sh
	}
	cropW, cropH := dw/scale, dh/scale
	x0 := sb.Min.X + int((sw-cropW)/2)
	y0 := sb.Min.Y + int((sh-cropH)/2)
	crop := image.Rect(x0, y0, x0+int(cropW+0.5), y0+int(cropH+0.5)).Intersect(sb)

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
}

func (s *compositorService) drawCopy(dc *gg.Context, in ComposeInput) {
	w, h := float64(dc.Width()), float64(dc.Height())

	// Darken the lower third behind the copy.
	grad := gg.NewLinearGradient(0, h*scrimStartY, 0, h)
	grad.AddColorStop(0, color.NRGBA{0, 0, 0, 0})
	grad.AddColorStop(1, color.NRGBA{0, 0, 0, 170})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, h*scrimStartY, w, h*(1-scrimStartY))
	dc.Fill()

	headline := SanitizeText(in.Copy.Headline)
	if headline != "" {
		size := w * headlineSizeRatio
		scale := headlineScale(func(scale float64) bool {
			dc.SetFontFace(newFace(s.headlineFont, size*scale))
			tw, _ := dc.MeasureString(headline)
			return tw <= w*headlineMaxWidth
		})
		dc.SetFontFace(newFace(s.headlineFont, size*scale))
		dc.SetColor(parseHex(in.Secondary, models.DefaultSecondaryColor))
		dc.DrawStringWrapped(headline, w/2, h*headlineCenterY, 0.5, 0.5, w*headlineMaxWidth, 1.15, gg.AlignCenter)
	}

	cta := SanitizeText(in.Copy.CTA)
	if cta != "" {
		dc.SetFontFace(newFace(s.ctaFont, w*ctaSizeRatio))
		tw, th := dc.MeasureString(cta)
		padX, padY := th*1.1, th*0.7
		pillW, pillH := tw+2*padX, th+2*padY
		cx, cy := w/2, h*ctaCenterY

		dc.SetColor(parseHex(in.Primary, models.DefaultPrimaryColor))
		dc.DrawRoundedRectangle(cx-pillW/2, cy-pillH/2, pillW, pillH, pillH/2)
		dc.Fill()

		dc.SetColor(parseHex(in.Accent, models.DefaultAccentColor))
		dc.DrawStringAnchored(cta, cx, cy, 0.5, 0.35)
	}
}

// headlineScale shrinks in 5% steps until fits reports true, stopping at the
// minimum scale.
func headlineScale(fits func(scale float64) bool) float64 {
	for step := 0; ; step++ {
		scale := 1 - 0.05*float64(step)
		if scale <= minHeadlineScale {
			return minHeadlineScale
		}
		if fits(scale) {
			return scale
		}
	}
}

func (s *compositorService) loadLogo(ctx context.Context, in ComposeInput) image.Image {
	data := in.LogoBytes
	if len(data) == 0 {
		if strings.TrimSpace(in.LogoURL) == "" {
			return nil
		}
		var err error
		data, err = fetchImage(ctx, s.httpClient, in.LogoURL)
		if err != nil {
			s.log.Warn("logo fetch failed, continuing without logo", "url", in.LogoURL, "error", err)
			return nil
		}
	}
	if !filetype.IsImage(data) {
		s.log.Warn("logo is not an image, continuing without logo")
		return nil
	}
	logo, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.log.Warn("logo decode failed, continuing without logo", "error", err)
		return nil
	}
	return logo
}

// fitSquare scales img to fit inside a side×side square, centred on a transparent canvas.
func fitSquare(img image.Image, side int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, side, side))
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || side <= 0 {
		return out
	}
	w, h := side, side
	if b.Dx() > b.Dy() {
		h = side * b.Dy() / b.Dx()
	} else if b.Dy() > b.Dx() {
		w = side * b.Dx() / b.Dy()
	}
	x0, y0 := (side-w)/2, (side-h)/2
	draw.CatmullRom.Scale(out, image.Rect(x0, y0, x0+w, y0+h), img, b, draw.Over, nil)
	return out
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// SanitizeText strips control characters and collapses whitespace. Glyphs are
// rasterised directly, so no markup escaping is involved.
func SanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

var errBadHex = errors.New("invalid hex colour")

func decodeHex(s string) (color.NRGBA, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(raw) != 3 {
		return color.NRGBA{}, errBadHex
	}
	return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 255}, nil
}

func parseHex(s, fallback string) color.NRGBA {
	c, err := decodeHex(models.NormalizeHex(s, fallback))
	if err != nil {
		c, _ = decodeHex(fallback)
	}
	return c
}
