// Package export renders harvest report rows into downloadable documents.
package export

import (
	"errors"
	"fmt"

	reportapp "github.com/pentol/backend/internal/application/report"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// ErrRendererUnavailable is returned when a PDF is requested without a renderer
var ErrRendererUnavailable = errors.New("pdf renderer is not configured")

// Builder opens a document writer per export format
type Builder struct {
	renderer printing.PDFRenderer
	logger   *zap.Logger
}

// NewBuilder creates a Builder. A nil renderer disables PDF output.
func NewBuilder(renderer printing.PDFRenderer, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{renderer: renderer, logger: logger}
}

// NewWriter implements reportapp.DocumentBuilder
func (b *Builder) NewWriter(format report.Format, meta reportapp.DocumentMeta) (reportapp.DocumentWriter, error) {
	switch format {
	case report.FormatXLSX:
		return newXLSXWriter()
	case report.FormatPDF:
		if b.renderer == nil {
			return nil, ErrRendererUnavailable
		}
		return newPDFWriter(b.renderer, meta, b.logger), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

var _ reportapp.DocumentBuilder = (*Builder)(nil)
