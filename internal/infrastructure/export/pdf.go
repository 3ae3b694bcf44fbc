package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	reportapp "github.com/pentol/backend/internal/application/report"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// pdfColumnWidths are the document column widths in millimeters
var pdfColumnWidths = []int{15, 12, 20, 15, 12, 15, 12, 10, 20, 12, 12, 10, 10, 15, 10, 10, 10, 10, 10, 10, 12, 10, 25}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatIndonesianDate renders t as "02 Januari 2006"
func FormatIndonesianDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

const pageFooter = `<div style="font-size:7pt;width:100%;text-align:right;padding-right:8mm;">` +
	`Halaman <span class="pageNumber"></span> / <span class="totalPages"></span></div>`

var documentTemplate = template.Must(template.New("laporan").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 0; }
h1 { font-size: 16pt; text-align: center; margin: 0 0 4px 0; }
p.exported { font-size: 10pt; text-align: center; margin: 0 0 8px 0; }
table { border-collapse: collapse; width: 100%; font-size: 7pt; table-layout: fixed; }
th, td { padding: 2px; border: 0.5px solid rgb(200,200,200); word-wrap: break-word; }
thead th { background-color: rgb(45,80,22); color: rgb(255,255,255); font-weight: bold; text-align: center; }
tbody tr:nth-child(even) td { background-color: rgb(245,245,245); }
thead { display: table-header-group; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="exported">Tanggal Export: {{.ExportedOn}}</p>
<table>
<colgroup>{{range .Widths}}<col style="width:{{.}}mm">{{end}}</colgroup>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type documentView struct {
	Title      string
	ExportedOn string
	Widths     []int
	Headers    []string
	Rows       [][]string
}

// pdfWriter buffers rows and renders one A4 landscape document on Finish
type pdfWriter struct {
	renderer printing.PDFRenderer
	meta     reportapp.DocumentMeta
	printer  *message.Printer
	rows     [][]string
	logger   *zap.Logger
}

func newPDFWriter(renderer printing.PDFRenderer, meta reportapp.DocumentMeta, logger *zap.Logger) *pdfWriter {
	return &pdfWriter{
		renderer: renderer,
		meta:     meta,
		printer:  message.NewPrinter(language.Indonesian),
		logger:   logger,
	}
}

func (w *pdfWriter) WriteRows(rows []report.ExportRow) error {
	for _, r := range rows {
		w.rows = append(w.rows, w.documentCells(r))
	}
	return nil
}

func (w *pdfWriter) documentCells(r report.ExportRow) []string {
	values := r.Cells()
	cells := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case string:
			cells[i] = val
		case int:
			cells[i] = w.printer.Sprintf("%d", val)
		case decimal.Decimal:
			cells[i] = w.printer.Sprintf("%.2f", val.InexactFloat64())
		default:
			cells[i] = fmt.Sprint(val)
		}
	}
	return cells
}

// html renders the document body handed to the PDF renderer
func (w *pdfWriter) html() (string, error) {
	headers := make([]string, len(report.Columns))
	for i, col := range report.Columns {
		headers[i] = col.ShortHeader
	}

	view := documentView{
		Title:      w.meta.Title,
		ExportedOn: FormatIndonesianDate(w.meta.ExportedAt),
		Widths:     pdfColumnWidths,
		Headers:    headers,
		Rows:       w.rows,
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to execute document template: %w", err)
	}
	return buf.String(), nil
}

func (w *pdfWriter) Finish(ctx context.Context) ([]byte, error) {
	doc, err := w.html()
	if err != nil {
		return nil, err
	}

	result, err := w.renderer.Render(ctx, &printing.RenderRequest{
		HTML:        doc,
		PaperSize:   printing.PaperSizeA4,
		Orientation: printing.OrientationLandscape,
		Margins:     printing.DefaultMargins(),
		Title:       w.meta.Title,
		HeaderHTML:  "<span></span>",
		FooterHTML:  pageFooter,
	})
	var re *printing.RenderError
	if errors.As(err, &re) && re.Retryable() {
		return nil, shared.NewTransientError("pdf rendering failed", err)
	}
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	w.logger.Debug("Export document rendered",
		zap.String("title", w.meta.Title),
		zap.Int("rows", len(w.rows)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration),
	)
	w.rows = nil
	return result.PDFData, nil
}

func (w *pdfWriter) Close() error {
	w.rows = nil
	return nil
}
