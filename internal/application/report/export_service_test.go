package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/organization"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newExportService(reports *MockReportRepository, org *MockOrganizationRepository, b *recordingBuilder, opts ...ExportServiceOption) *ExportService {
	svc := NewExportService(reports, org, b, nil, 2, time.UTC, zap.NewNop(), opts...)
	svc.now = func() time.Time { return testDay.Add(10 * time.Hour) }
	return svc
}

func rowsOf(n int) []report.DenormalizedRow {
	out := make([]report.DenormalizedRow, n)
	for i := range out {
		out[i] = report.DenormalizedRow{
			ID:        uuid.New(),
			Tanggal:   testDay,
			CreatedAt: testDay.Add(time.Duration(i) * time.Minute),
			JumlahJJG: i,
			BJR:       decimal.NewFromInt(15),
		}
	}
	return out
}

func TestExportService_Export_Division(t *testing.T) {
	reports := new(MockReportRepository)
	org := new(MockOrganizationRepository)
	builder := &recordingBuilder{}
	svc := newExportService(reports, org, builder)
	divisi := uuid.New()

	org.On("FindDivisi", mock.Anything, divisi).Return(&organization.Divisi{ID: divisi, Name: "Divisi 1"}, nil)
	all := rowsOf(3)
	reports.On("StreamRecords", mock.Anything, report.Filter{
		StartDate: testDay, EndDate: testDay, DivisiID: &divisi,
	}, 2, mock.Anything).Return([][]report.DenormalizedRow{all[:2], all[2:]}, nil)

	res, err := svc.Export(context.Background(), manager(), ExportRequest{
		Format: "pdf", Period: "daily", Date: "2024-06-01", DivisiID: divisi.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "laporan_panen_divisi_1_daily_2024-06-01.pdf", res.FileName)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, []byte("document"), res.Data)
	assert.Empty(t, res.Location)

	assert.Equal(t, report.FormatPDF, builder.format)
	assert.Equal(t, "LAPORAN PANEN - DIVISI 1", builder.meta.Title)
	require.Len(t, builder.rows, 3)
	assert.Equal(t, "01/06/2024", builder.rows[0].Tanggal)
	assert.Equal(t, "00:02:00", builder.rows[2].Waktu)
	assert.Equal(t, report.MissingName, builder.rows[0].Blok)
	assert.True(t, builder.closed)
	assert.Equal(t, map[string]string{"operation": "export.render", "format": "pdf", "scope": "divisi"}, builder.labels)
}

func TestExportService_Export_EstateToSink(t *testing.T) {
	reports := new(MockReportRepository)
	builder := &recordingBuilder{}
	sink := &recordingSink{}
	svc := newExportService(reports, new(MockOrganizationRepository), builder, WithSink(sink))

	reports.On("StreamRecords", mock.Anything, mock.Anything, 2, mock.Anything).
		Return([][]report.DenormalizedRow{rowsOf(1)}, nil)

	res, err := svc.Export(context.Background(), manager(), ExportRequest{Period: "monthly"})
	require.NoError(t, err)
	assert.Equal(t, "laporan_panen_estate_monthly_2024-06-01.xlsx", res.FileName)
	assert.Equal(t, "https://files.example/"+res.FileName, res.Location)
	assert.Nil(t, res.Data)
	assert.Equal(t, res.FileName, sink.fileName)
	assert.Equal(t, "LAPORAN PANEN - ESTATE", builder.meta.Title)
	assert.Equal(t, "estate", builder.labels["scope"])
	assert.Equal(t, "xlsx", builder.labels["format"])
}

func TestExportService_Export_MaxRows(t *testing.T) {
	reports := new(MockReportRepository)
	svc := newExportService(reports, new(MockOrganizationRepository), &recordingBuilder{}, WithMaxRows(2))
	reports.On("StreamRecords", mock.Anything, mock.Anything, 2, mock.Anything).
		Return([][]report.DenormalizedRow{rowsOf(2), rowsOf(1)}, nil)

	_, err := svc.Export(context.Background(), manager(), ExportRequest{})
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestExportService_Export_Rejections(t *testing.T) {
	svc := newExportService(new(MockReportRepository), new(MockOrganizationRepository), &recordingBuilder{})

	_, err := svc.Export(context.Background(), manager(), ExportRequest{Format: "csv"})
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	mandor := &identity.Profile{ID: uuid.New(), Role: identity.RoleMandor}
	_, err = svc.Export(context.Background(), mandor, ExportRequest{})
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))
}
