package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow(name string, jjg int) DenormalizedRow {
	return DenormalizedRow{
		ID:           uuid.New(),
		Tanggal:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:    time.Date(2024, 6, 1, 1, 2, 3, 0, time.UTC),
		KraniName:    "Siti",
		DivisiName:   "Divisi 1",
		GangName:     "Gang A",
		BlokName:     "BK 1 AB",
		OperatorCode: "OP-01",
		PemanenName:  name,
		NomorTPH:     "TPH 3",
		Rotasi:       2,
		NomorPanen:   "P-7",
		JumlahJJG:    jjg,
		BJR:          dec("15.5"),
		Brondolan:    dec("4.2"),
		BuahMasak:    jjg,
		Keterangan:   "ok",
	}
}

func TestColumns_Schema(t *testing.T) {
	require.Len(t, Columns, 23)
	assert.Equal(t, "TANGGAL", Columns[0].Header)
	assert.Equal(t, "HASIL PANEN (JJG)", Columns[10].Header)
	assert.Equal(t, "JJG", Columns[10].ShortHeader)
	assert.Equal(t, "KETERANGAN", Columns[22].Header)

	widths := make([]float64, len(Columns))
	for i, c := range Columns {
		widths[i] = c.Width
	}
	assert.Equal(t, []float64{12, 10, 20, 12, 10, 15, 12, 8, 20, 12, 18, 12, 8, 15, 12, 12, 12, 10, 10, 12, 15, 10, 30}, widths)
}

func TestToExportRows_PreservesCountAndOrder(t *testing.T) {
	rows := []DenormalizedRow{sampleRow("Joko", 10), sampleRow("Budi", 20), sampleRow("Agus", 0)}

	out := ToExportRows(rows, time.UTC)

	require.Len(t, out, 3)
	assert.Equal(t, "Joko", out[0].NamaPemanen)
	assert.Equal(t, "Budi", out[1].NamaPemanen)
	assert.Equal(t, "Agus", out[2].NamaPemanen)
	assert.Equal(t, 20, out[1].HasilPanenJJG)
}

func TestToExportRows_Empty(t *testing.T) {
	assert.Empty(t, ToExportRows(nil, nil))
}

func TestToExportRows_Formatting(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	out := ToExportRows([]DenormalizedRow{sampleRow("Joko", 10)}, jakarta)

	r := out[0]
	assert.Equal(t, "01/06/2024", r.Tanggal)
	assert.Equal(t, "08:02:03", r.Waktu)
	assert.Equal(t, "BK 1 AB", r.Blok)
	assert.Equal(t, "OP-01", r.OP)
	assert.True(t, r.BJR.Equal(dec("15.5")))

	cells := r.Cells()
	require.Len(t, cells, len(Columns))
	assert.Equal(t, "Joko", cells[8])
	assert.Equal(t, 10, cells[10])
	assert.Equal(t, "ok", cells[22])
}

func TestToExportRows_MissingJoins(t *testing.T) {
	row := DenormalizedRow{Tanggal: time.Now(), CreatedAt: time.Now()}
	out := ToExportRows([]DenormalizedRow{row}, time.UTC)[0]

	assert.Equal(t, "Unknown", out.Krani)
	assert.Equal(t, "-", out.Divisi)
	assert.Equal(t, "-", out.Gang)
	assert.Equal(t, "-", out.Blok)
	assert.Equal(t, "-", out.NamaPemanen)
	assert.Equal(t, "-", out.NomorTPH)
}

func TestJoinDisplay(t *testing.T) {
	assert.Equal(t, "Joko, Budi", JoinDisplay([]string{"Joko", " ", "Budi"}))
	assert.Equal(t, "-", JoinDisplay(nil))
	assert.Equal(t, "-", JoinDisplay([]string{""}))
}

func TestFileNameAndTitle(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "laporan_panen_divisi_1_daily_2024-06-01.xlsx",
		FileName(ScopeSlug("Divisi 1"), PeriodDaily, day, FormatXLSX))
	assert.Equal(t, "laporan_panen_estate_monthly_2024-06-01.pdf",
		FileName(ScopeSlug(""), PeriodMonthly, day, FormatPDF))

	assert.Equal(t, "LAPORAN PANEN - DIVISI 1", Title("Divisi 1"))
	assert.Equal(t, "LAPORAN PANEN - ESTATE", Title(""))
}

func TestNewHarvesterPerformance(t *testing.T) {
	p := NewHarvesterPerformance(HarvesterSums{PemanenName: "Joko", TotalJJG: 40, TotalMentah: 1, TotalKg: dec("600")})
	assert.True(t, p.LossesRate.Equal(dec("2.5")))
	assert.Equal(t, "-", p.GangName)

	zero := NewHarvesterPerformance(HarvesterSums{})
	assert.True(t, zero.LossesRate.IsZero())
}
