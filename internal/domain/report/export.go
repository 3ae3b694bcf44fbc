package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Display layouts for export cells
const (
	ExportDateLayout = "02/01/2006"
	ExportTimeLayout = "15:04:05"
)

// Column describes one export column
type Column struct {
	Header      string  // spreadsheet header
	ShortHeader string  // paginated document header
	Width       float64 // spreadsheet column width
}

// Columns is the fixed export schema, in output order
var Columns = []Column{
	{"TANGGAL", "TANGGAL", 12},
	{"WAKTU", "WAKTU", 10},
	{"KRANI", "KRANI", 20},
	{"DIVISI", "DIVISI", 12},
	{"GANG", "GANG", 10},
	{"BLOK", "BLOK", 15},
	{"OP", "OP", 12},
	{"ROTASI", "ROTASI", 8},
	{"NAMA PEMANEN", "NAMA PEMANEN", 20},
	{"NOMOR PANEN", "NO. PANEN", 12},
	{"HASIL PANEN (JJG)", "JJG", 18},
	{"NOMOR TPH", "TPH", 12},
	{"BJR", "BJR", 8},
	{"BRONDOLAN (KG)", "BRONDOLAN", 15},
	{"BUAH MASAK", "MASAK", 12},
	{"BUAH MENTAH", "MENTAH", 12},
	{"BUAH MENGKAL", "MENGKAL", 12},
	{"OVERRIPE", "OVERRIPE", 10},
	{"ABNORMAL", "ABNORMAL", 10},
	{"BUAH BUSUK", "BUSUK", 12},
	{"TANGKAI PANJANG", "T. PANJANG", 15},
	{"JANGKOS", "JANGKOS", 10},
	{"KETERANGAN", "KETERANGAN", 30},
}

// ExportRow is one output row. Numeric fields keep their numeric type.
type ExportRow struct {
	Tanggal        string
	Waktu          string
	Krani          string
	Divisi         string
	Gang           string
	Blok           string
	OP             string
	Rotasi         int
	NamaPemanen    string
	NomorPanen     string
	HasilPanenJJG  int
	NomorTPH       string
	BJR            decimal.Decimal
	Brondolan      decimal.Decimal
	BuahMasak      int
	BuahMentah     int
	BuahMengkal    int
	Overripe       int
	Abnormal       int
	BuahBusuk      int
	TangkaiPanjang int
	Jangkos        int
	Keterangan     string
}

// Cells returns the row values in Columns order
func (r ExportRow) Cells() []any {
	return []any{
		r.Tanggal,
		r.Waktu,
		r.Krani,
		r.Divisi,
		r.Gang,
		r.Blok,
		r.OP,
		r.Rotasi,
		r.NamaPemanen,
		r.NomorPanen,
		r.HasilPanenJJG,
		r.NomorTPH,
		r.BJR,
		r.Brondolan,
		r.BuahMasak,
		r.BuahMentah,
		r.BuahMengkal,
		r.Overripe,
		r.Abnormal,
		r.BuahBusuk,
		r.TangkaiPanjang,
		r.Jangkos,
		r.Keterangan,
	}
}

// ToExportRows maps report rows to export rows one-to-one, preserving order.
// Creation times are rendered in loc; a nil loc means UTC.
func ToExportRows(rows []DenormalizedRow, loc *time.Location) []ExportRow {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]ExportRow, len(rows))
	for i := range rows {
		r := rows[i]
		r.Normalize()
		out[i] = ExportRow{
			Tanggal:        r.Tanggal.Format(ExportDateLayout),
			Waktu:          r.CreatedAt.In(loc).Format(ExportTimeLayout),
			Krani:          r.KraniName,
			Divisi:         r.DivisiName,
			Gang:           r.GangName,
			Blok:           r.BlokName,
			OP:             r.OperatorCode,
			Rotasi:         r.Rotasi,
			NamaPemanen:    r.PemanenName,
			NomorPanen:     r.NomorPanen,
			HasilPanenJJG:  r.JumlahJJG,
			NomorTPH:       r.NomorTPH,
			BJR:            r.BJR,
			Brondolan:      r.Brondolan,
			BuahMasak:      r.BuahMasak,
			BuahMentah:     r.BuahMentah,
			BuahMengkal:    r.BuahMengkal,
			Overripe:       r.Overripe,
			Abnormal:       r.Abnormal,
			BuahBusuk:      r.BuahBusuk,
			TangkaiPanjang: r.TangkaiPanjang,
			Jangkos:        r.Jangkos,
			Keterangan:     r.Keterangan,
		}
	}
	return out
}

// Format is an export file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// IsValid checks if the Format is a valid value
func (f Format) IsValid() bool {
	return f == FormatXLSX || f == FormatPDF
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ScopeSlug turns a division name into a file name fragment; empty means estate.
func ScopeSlug(divisiName string) string {
	name := strings.TrimSpace(divisiName)
	if name == "" || name == MissingName {
		return string(ScopeEstate)
	}
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// FileName builds laporan_panen_<scope>_<period>_<YYYY-MM-DD>.<ext>
func FileName(scopeSlug string, period Period, day time.Time, format Format) string {
	return fmt.Sprintf("laporan_panen_%s_%s_%s.%s", scopeSlug, period, day.Format(DateLayout), format)
}

// Title builds the document heading
func Title(scopeName string) string {
	name := strings.TrimSpace(scopeName)
	if name == "" {
		name = "ESTATE"
	}
	return "LAPORAN PANEN - " + strings.ToUpper(name)
}
