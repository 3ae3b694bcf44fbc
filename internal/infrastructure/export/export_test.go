package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	reportapp "github.com/pentol/backend/internal/application/report"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type captureRenderer struct {
	req *printing.RenderRequest
	err error
}

func (r *captureRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	r.req = req
	if r.err != nil {
		return nil, r.err
	}
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 test"), PageCount: 1}, nil
}

func (r *captureRenderer) Close() error { return nil }

func sampleRows() []report.ExportRow {
	return []report.ExportRow{
		{
			Tanggal: "01/06/2024", Waktu: "07:15:00", Krani: "Budi", Divisi: "Divisi 1",
			Gang: "G1", Blok: "A01", OP: "OP-01", Rotasi: 2, NamaPemanen: "Slamet",
			NomorPanen: "P-001", HasilPanenJJG: 100, NomorTPH: "TPH-01",
			BJR: decimal.RequireFromString("17.5"), Brondolan: decimal.RequireFromString("12.25"),
			BuahMasak: 90, BuahMentah: 1, BuahMengkal: 4, Overripe: 2, Abnormal: 1, BuahBusuk: 2,
			TangkaiPanjang: 3, Jangkos: 0, Keterangan: "<hujan>",
		},
		{
			Tanggal: "01/06/2024", Waktu: "08:00:00", Krani: "Unknown", Divisi: "Divisi 1",
			Gang: "-", Blok: "-", OP: "-", NamaPemanen: "-", NomorPanen: "-", NomorTPH: "-",
			BJR: decimal.Zero, Brondolan: decimal.Zero,
		},
	}
}

func meta() reportapp.DocumentMeta {
	return reportapp.DocumentMeta{
		Title:      report.Title("Divisi 1"),
		ScopeName:  "Divisi 1",
		Period:     report.PeriodDaily,
		StartDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		ExportedAt: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestBuilder_UnsupportedFormats(t *testing.T) {
	b := NewBuilder(nil, nil)

	_, err := b.NewWriter(report.FormatPDF, meta())
	assert.ErrorIs(t, err, ErrRendererUnavailable)

	_, err = b.NewWriter(report.Format("csv"), meta())
	assert.Error(t, err)
}

func TestXLSXWriter(t *testing.T) {
	w, err := NewBuilder(nil, nil).NewWriter(report.FormatXLSX, meta())
	require.NoError(t, err)
	defer w.Close()

	rows := sampleRows()
	require.NoError(t, w.WriteRows(rows[:1]))
	require.NoError(t, w.WriteRows(rows[1:]))

	data, err := w.Finish(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Len(t, got[0], len(report.Columns))
	for i, col := range report.Columns {
		assert.Equal(t, col.Header, got[0][i])
	}

	assert.Equal(t, "01/06/2024", got[1][0])
	assert.Equal(t, "2", got[1][7])
	assert.Equal(t, "100", got[1][10])
	assert.Equal(t, "17.5", got[1][12])
	assert.Equal(t, "12.25", got[1][13])
	assert.Equal(t, "<hujan>", got[1][22])
	assert.Equal(t, "Unknown", got[2][2])

	width, err := f.GetColWidth(SheetName, "W")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)
	width, err = f.GetColWidth(SheetName, "H")
	require.NoError(t, err)
	assert.Equal(t, 8.0, width)

	styleID, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestXLSXWriter_EmptyExportHasHeaderOnly(t *testing.T) {
	w, err := NewBuilder(nil, nil).NewWriter(report.FormatXLSX, meta())
	require.NoError(t, err)
	defer w.Close()

	data, err := w.Finish(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPDFWriter_Document(t *testing.T) {
	renderer := &captureRenderer{}
	w, err := NewBuilder(renderer, nil).NewWriter(report.FormatPDF, meta())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WriteRows(sampleRows()))
	data, err := w.Finish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), data)

	req := renderer.req
	require.NotNil(t, req)
	assert.Equal(t, printing.PaperSizeA4, req.PaperSize)
	assert.Equal(t, printing.OrientationLandscape, req.Orientation)
	assert.Equal(t, "LAPORAN PANEN - DIVISI 1", req.Title)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	require.NoError(t, err)

	assert.Equal(t, "LAPORAN PANEN - DIVISI 1", doc.Find("h1").Text())
	assert.Equal(t, "Tanggal Export: 01 Juni 2024", doc.Find("p.exported").Text())

	var headers []string
	doc.Find("thead th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, s.Text())
	})
	require.Len(t, headers, len(report.Columns))
	assert.Equal(t, "NO. PANEN", headers[9])
	assert.Equal(t, "JJG", headers[10])
	assert.Equal(t, "T. PANJANG", headers[20])

	bodyRows := doc.Find("tbody tr")
	assert.Equal(t, 2, bodyRows.Length())
	first := bodyRows.First().Find("td")
	assert.Equal(t, len(report.Columns), first.Length())
	assert.Equal(t, "Slamet", first.Eq(8).Text())
	assert.Equal(t, "100", first.Eq(10).Text())
	assert.Equal(t, "<hujan>", first.Eq(22).Text())

	style := doc.Find("style").Text()
	assert.Contains(t, style, "background-color: rgb(45,80,22)")
	assert.Contains(t, style, "background-color: rgb(245,245,245)")
	assert.Contains(t, style, "font-size: 7pt")
}

func TestPDFWriter_RenderFailure(t *testing.T) {
	renderer := &captureRenderer{err: printing.NewRenderError(printing.ErrCodeRenderTimeout, "timed out", nil)}
	w, err := NewBuilder(renderer, nil).NewWriter(report.FormatPDF, meta())
	require.NoError(t, err)

	_, err = w.Finish(context.Background())
	assert.True(t, shared.IsTransient(err))
	assert.ErrorIs(t, err, &printing.RenderError{Code: printing.ErrCodeRenderTimeout})
}

func TestPDFWriter_InvalidRequestIsNotRetryable(t *testing.T) {
	renderer := &captureRenderer{err: printing.NewRenderError(printing.ErrCodeInvalidHTML, "HTML content is empty", nil)}
	w, err := NewBuilder(renderer, nil).NewWriter(report.FormatPDF, meta())
	require.NoError(t, err)

	_, err = w.Finish(context.Background())
	require.Error(t, err)
	assert.False(t, shared.IsTransient(err))
}

func TestFormatIndonesianDate(t *testing.T) {
	assert.Equal(t, "05 Agustus 2024", FormatIndonesianDate(time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31 Desember 2023", FormatIndonesianDate(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)))
}
