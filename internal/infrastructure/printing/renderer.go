package printing

import (
	"context"
	"time"
)

// PaperSize names a sheet size Chrome can print on
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeA5     PaperSize = "A5"
	PaperSizeLetter PaperSize = "LETTER"
	PaperSizeLegal  PaperSize = "LEGAL"
)

// portrait width and height in millimetres
var paperMM = map[PaperSize][2]float64{
	PaperSizeA4:     {210, 297},
	PaperSizeA5:     {148, 210},
	PaperSizeLetter: {215.9, 279.4},
	PaperSizeLegal:  {215.9, 355.6},
}

func (p PaperSize) IsValid() bool {
	_, ok := paperMM[p]
	return ok
}

// Dimensions returns the portrait width and height in millimetres. Unknown
// sizes fall back to A4.
func (p PaperSize) Dimensions() (width, height float64) {
	mm, ok := paperMM[p]
	if !ok {
		mm = paperMM[PaperSizeA4]
	}
	return mm[0], mm[1]
}

type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins in millimetres
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins fit the wide harvest tables on landscape A4
func DefaultMargins() Margins {
	return Margins{Top: 10, Right: 8, Bottom: 10, Left: 8}
}

// RenderRequest is one HTML document to print. HeaderHTML and FooterHTML
// are Chrome print templates and may use the pageNumber and totalPages
// classes.
type RenderRequest struct {
	HTML        string
	Title       string
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
	HeaderHTML  string
	FooterHTML  string
	Timeout     time.Duration
}

type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns HTML into PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// Render failure codes
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// RenderError is a failed render. errors.Is matches any RenderError with
// the same Code.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

func (e *RenderError) Is(target error) bool {
	t, ok := target.(*RenderError)
	return ok && t.Code == e.Code
}

// Retryable reports whether the same request may succeed later
func (e *RenderError) Retryable() bool {
	return e.Code == ErrCodeRenderTimeout || e.Code == ErrCodeRenderFailed
}
