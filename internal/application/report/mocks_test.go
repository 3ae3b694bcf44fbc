package report

import (
	"context"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/organization"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockReportRepository is a mock implementation of report.Repository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) SumKPI(ctx context.Context, divisiID *uuid.UUID, start, end time.Time) (report.KPIInputs, error) {
	args := m.Called(ctx, divisiID, start, end)
	return args.Get(0).(report.KPIInputs), args.Error(1)
}

func (m *MockReportRepository) FetchRecords(ctx context.Context, filter report.Filter, page shared.Pagination) ([]report.DenormalizedRow, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]report.DenormalizedRow), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) StreamRecords(ctx context.Context, filter report.Filter, batchSize int, fn func([]report.DenormalizedRow) error) error {
	args := m.Called(ctx, filter, batchSize, fn)
	if batches, ok := args.Get(0).([][]report.DenormalizedRow); ok {
		for _, b := range batches {
			if err := fn(b); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

func (m *MockReportRepository) GangPerformance(ctx context.Context, divisiID *uuid.UUID, day time.Time) ([]report.HarvesterSums, error) {
	args := m.Called(ctx, divisiID, day)
	return args.Get(0).([]report.HarvesterSums), args.Error(1)
}

// MockOrganizationRepository is a mock implementation of organization.Repository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) ListDivisi(ctx context.Context) ([]organization.Divisi, error) {
	args := m.Called(ctx)
	return args.Get(0).([]organization.Divisi), args.Error(1)
}

func (m *MockOrganizationRepository) FindDivisi(ctx context.Context, id uuid.UUID) (*organization.Divisi, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Divisi), args.Error(1)
}

func (m *MockOrganizationRepository) ListGangs(ctx context.Context, divisiID uuid.UUID) ([]organization.Gang, error) {
	args := m.Called(ctx, divisiID)
	return args.Get(0).([]organization.Gang), args.Error(1)
}

func (m *MockOrganizationRepository) ListBloks(ctx context.Context, divisiID uuid.UUID) ([]organization.Blok, error) {
	args := m.Called(ctx, divisiID)
	return args.Get(0).([]organization.Blok), args.Error(1)
}

func (m *MockOrganizationRepository) ListTPH(ctx context.Context, blokID uuid.UUID) ([]organization.TPH, error) {
	args := m.Called(ctx, blokID)
	return args.Get(0).([]organization.TPH), args.Error(1)
}

func (m *MockOrganizationRepository) ListPemanen(ctx context.Context, gangID uuid.UUID, activeOnly bool) ([]organization.Pemanen, error) {
	args := m.Called(ctx, gangID, activeOnly)
	return args.Get(0).([]organization.Pemanen), args.Error(1)
}

func (m *MockOrganizationRepository) TotalArea(ctx context.Context, divisiID *uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, divisiID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// recordingBuilder captures everything written to its documents
type recordingBuilder struct {
	mu     sync.Mutex
	meta   DocumentMeta
	format report.Format
	rows   []report.ExportRow
	closed bool
	labels map[string]string
}

func (b *recordingBuilder) NewWriter(format report.Format, meta DocumentMeta) (DocumentWriter, error) {
	b.format = format
	b.meta = meta
	return b, nil
}

func (b *recordingBuilder) WriteRows(rows []report.ExportRow) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = append(b.rows, rows...)
	return nil
}

func (b *recordingBuilder) Finish(ctx context.Context) ([]byte, error) {
	b.labels = map[string]string{}
	pprof.ForLabels(ctx, func(key, value string) bool {
		b.labels[key] = value
		return true
	})
	return []byte("document"), nil
}

func (b *recordingBuilder) Close() error {
	b.closed = true
	return nil
}

type recordingSink struct {
	fileName string
	size     int
}

func (s *recordingSink) Publish(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	s.fileName = fileName
	s.size = len(data)
	return "https://files.example/" + fileName, nil
}
