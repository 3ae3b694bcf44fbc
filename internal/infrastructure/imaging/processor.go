// Package imaging normalizes harvest photos before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	harvestapp "github.com/pentol/backend/internal/application/harvest"
	"github.com/pentol/backend/internal/infrastructure/config"
)

// ContentType is the media type of every processed photo
const ContentType = "image/webp"

const (
	defaultMaxWidth  = 1600
	defaultMaxHeight = 1600
	defaultQuality   = 80
	defaultMaxBytes  = 10 << 20
)

// ErrTooLarge is returned when an upload exceeds the byte limit
var ErrTooLarge = errors.New("photo exceeds the upload size limit")

var _ harvestapp.PhotoProcessor = (*Processor)(nil)

// Processor decodes jpeg, png and webp uploads, fits them inside the
// configured box and re-encodes them as lossy webp.
type Processor struct {
	maxWidth  int
	maxHeight int
	quality   float32
	maxBytes  int64
}

// NewProcessor creates a Processor; zero settings take defaults
func NewProcessor(cfg config.PhotoConfig) *Processor {
	p := &Processor{
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
		quality:   cfg.WebPQuality,
		maxBytes:  cfg.MaxBytes,
	}
	if p.maxWidth <= 0 {
		p.maxWidth = defaultMaxWidth
	}
	if p.maxHeight <= 0 {
		p.maxHeight = defaultMaxHeight
	}
	if p.quality <= 0 || p.quality > 100 {
		p.quality = defaultQuality
	}
	if p.maxBytes <= 0 {
		p.maxBytes = defaultMaxBytes
	}
	return p
}

// Process implements harvestapp.PhotoProcessor
func (p *Processor) Process(r io.Reader) ([]byte, string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo: %w", err)
	}
	if int64(len(raw)) > p.maxBytes {
		return nil, "", ErrTooLarge
	}
	if len(raw) == 0 {
		return nil, "", errors.New("photo is empty")
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode photo: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > p.maxWidth || b.Dy() > p.maxHeight {
		img = imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: p.quality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode photo: %w", err)
	}
	return buf.Bytes(), ContentType, nil
}
