package spb

import (
	"context"
	"runtime/pprof"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/domain/spb"
	"github.com/pentol/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSpbRepository is a mock implementation of spb.Repository
type MockSpbRepository struct {
	mock.Mock
}

func (m *MockSpbRepository) CreateWithRecords(ctx context.Context, note *spb.SPB, recordIDs []uuid.UUID) error {
	args := m.Called(ctx, note, recordIDs)
	return args.Error(0)
}

func (m *MockSpbRepository) FindByID(ctx context.Context, id uuid.UUID) (*spb.SPB, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spb.SPB), args.Error(1)
}

func (m *MockSpbRepository) Lines(ctx context.Context, id uuid.UUID) ([]spb.Line, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]spb.Line), args.Error(1)
}

func (m *MockSpbRepository) MarkShipped(ctx context.Context, note *spb.SPB) (bool, error) {
	args := m.Called(ctx, note)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpbRepository) List(ctx context.Context, filter spb.ListFilter, page shared.Pagination) ([]spb.SPB, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]spb.SPB), args.Get(1).(int64), args.Error(2)
}

// MockHarvestRepository covers the restan query
type MockHarvestRepository struct {
	mock.Mock
}

func (m *MockHarvestRepository) CreateBatch(ctx context.Context, records []*harvest.Record) error {
	return m.Called(ctx, records).Error(0)
}

func (m *MockHarvestRepository) FindByID(ctx context.Context, id uuid.UUID) (*harvest.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*harvest.Record), args.Error(1)
}

func (m *MockHarvestRepository) UpdateStatus(ctx context.Context, r *harvest.Record, from harvest.Status) (bool, error) {
	args := m.Called(ctx, r, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockHarvestRepository) List(ctx context.Context, filter harvest.QueueFilter, page shared.Pagination) ([]harvest.Record, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]harvest.Record), args.Get(1).(int64), args.Error(2)
}

func (m *MockHarvestRepository) ListRestan(ctx context.Context, divisiID *uuid.UUID) ([]harvest.RestanItem, error) {
	args := m.Called(ctx, divisiID)
	return args.Get(0).([]harvest.RestanItem), args.Error(1)
}

func newTestService(notes *MockSpbRepository, records *MockHarvestRepository) *SpbService {
	jakarta, _ := time.LoadLocation("Asia/Jakarta")
	svc := NewSpbService(notes, records, nil, jakarta, 100, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC) }
	return svc
}

func kraniBuah() *identity.Profile {
	return &identity.Profile{ID: uuid.New(), Role: identity.RoleKraniBuah}
}

func TestSpbService_CreateSpb(t *testing.T) {
	notes := new(MockSpbRepository)
	svc := newTestService(notes, new(MockHarvestRepository))
	a, b := uuid.New(), uuid.New()

	notes.On("CreateWithRecords", mock.Anything, mock.Anything, []uuid.UUID{a, b}).
		Run(func(args mock.Arguments) {
			note := args.Get(1).(*spb.SPB)
			// numbering follows the local calendar day
			note.NomorSPB = spb.FormatNumber(note.CreatedAt, 1)
		}).
		Return(nil)

	resp, err := svc.CreateSpb(context.Background(), kraniBuah(), CreateRequest{
		RecordIDs:  []uuid.UUID{a, b, a},
		DriverName: " Joko ",
		TruckPlate: "bk 8123 xy",
	})
	require.NoError(t, err)
	assert.Equal(t, "SPB/20240602/001", resp.NomorSPB)
	assert.Equal(t, "Joko", resp.DriverName)
	assert.Equal(t, "BK 8123 XY", resp.TruckPlate)
	assert.Equal(t, "created", resp.Status)
	notes.AssertExpectations(t)
}

func TestSpbService_CreateSpb_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		actor *identity.Profile
		req   CreateRequest
		code  string
	}{
		{"krani panen", &identity.Profile{ID: uuid.New(), Role: identity.RoleKraniPanen},
			CreateRequest{RecordIDs: []uuid.UUID{uuid.New()}, DriverName: "Joko", TruckPlate: "BK 1"}, shared.CodeForbidden},
		{"mandor", &identity.Profile{ID: uuid.New(), Role: identity.RoleMandor},
			CreateRequest{RecordIDs: []uuid.UUID{uuid.New()}, DriverName: "Joko", TruckPlate: "BK 1"}, shared.CodeForbidden},
		{"no records", kraniBuah(), CreateRequest{DriverName: "Joko", TruckPlate: "BK 1"}, shared.CodeValidation},
		{"blank driver", kraniBuah(),
			CreateRequest{RecordIDs: []uuid.UUID{uuid.New()}, DriverName: " ", TruckPlate: "BK 1"}, shared.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := new(MockSpbRepository)
			svc := newTestService(notes, new(MockHarvestRepository))
			_, err := svc.CreateSpb(context.Background(), tt.actor, tt.req)
			assert.True(t, shared.HasCode(err, tt.code), "got %v", err)
			notes.AssertNotCalled(t, "CreateWithRecords", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSpbService_CreateSpb_LabelsRepositoryCall(t *testing.T) {
	notes := new(MockSpbRepository)
	svc := newTestService(notes, new(MockHarvestRepository))
	id := uuid.New()

	var operation string
	notes.On("CreateWithRecords", mock.Anything, mock.Anything, []uuid.UUID{id}).
		Run(func(args mock.Arguments) {
			operation, _ = pprof.Label(args.Get(0).(context.Context), telemetry.ProfilingLabelOperation)
		}).
		Return(nil)

	_, err := svc.CreateSpb(context.Background(), kraniBuah(), CreateRequest{
		RecordIDs: []uuid.UUID{id}, DriverName: "Joko", TruckPlate: "BK 1",
	})
	require.NoError(t, err)
	assert.Equal(t, "spb.create", operation)
}

func TestSpbService_CreateSpb_PropagatesInvalidState(t *testing.T) {
	notes := new(MockSpbRepository)
	svc := newTestService(notes, new(MockHarvestRepository))
	bad := uuid.New()
	notes.On("CreateWithRecords", mock.Anything, mock.Anything, []uuid.UUID{bad}).
		Return(shared.NewInvalidStateError("records are not eligible", bad.String()))

	_, err := svc.CreateSpb(context.Background(), kraniBuah(), CreateRequest{
		RecordIDs: []uuid.UUID{bad}, DriverName: "Joko", TruckPlate: "BK 1",
	})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeState, de.Code)
	assert.Equal(t, []string{bad.String()}, de.Details["offending_ids"])
}

func TestSpbService_Ship(t *testing.T) {
	id := uuid.New()

	t.Run("created note ships", func(t *testing.T) {
		notes := new(MockSpbRepository)
		svc := newTestService(notes, new(MockHarvestRepository))
		note := &spb.SPB{BaseEntity: shared.BaseEntity{ID: id}, NomorSPB: "SPB/20240601/001", Status: spb.StatusCreated}
		notes.On("FindByID", mock.Anything, id).Return(note, nil)
		notes.On("MarkShipped", mock.Anything, note).Return(true, nil)

		resp, err := svc.Ship(context.Background(), kraniBuah(), id)
		require.NoError(t, err)
		assert.Equal(t, "shipped", resp.Status)
		assert.NotNil(t, resp.ShippedAt)
	})

	t.Run("already shipped", func(t *testing.T) {
		notes := new(MockSpbRepository)
		svc := newTestService(notes, new(MockHarvestRepository))
		notes.On("FindByID", mock.Anything, id).Return(&spb.SPB{BaseEntity: shared.BaseEntity{ID: id}, Status: spb.StatusShipped}, nil)

		_, err := svc.Ship(context.Background(), kraniBuah(), id)
		assert.True(t, shared.HasCode(err, shared.CodeState))
		notes.AssertNotCalled(t, "MarkShipped", mock.Anything, mock.Anything)
	})

	t.Run("lost race", func(t *testing.T) {
		notes := new(MockSpbRepository)
		svc := newTestService(notes, new(MockHarvestRepository))
		notes.On("FindByID", mock.Anything, id).Return(&spb.SPB{BaseEntity: shared.BaseEntity{ID: id}, Status: spb.StatusCreated}, nil)
		notes.On("MarkShipped", mock.Anything, mock.Anything).Return(false, nil)

		_, err := svc.Ship(context.Background(), kraniBuah(), id)
		assert.True(t, shared.HasCode(err, shared.CodeConflict))
	})
}

func TestSpbService_Get(t *testing.T) {
	notes := new(MockSpbRepository)
	svc := newTestService(notes, new(MockHarvestRepository))
	id := uuid.New()
	notes.On("FindByID", mock.Anything, id).Return(&spb.SPB{BaseEntity: shared.BaseEntity{ID: id}, Status: spb.StatusCreated}, nil)
	notes.On("Lines", mock.Anything, id).Return([]spb.Line{
		{JumlahJJG: 10, HasilPanenBJD: decimal.NewFromInt(150)},
		{JumlahJJG: 5, HasilPanenBJD: decimal.NewFromInt(80)},
	}, nil)

	detail, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Totals.Records)
	assert.Equal(t, 15, detail.Totals.JJG)
	assert.True(t, detail.Totals.Kg.Equal(decimal.NewFromInt(230)))
}

func TestSpbService_List(t *testing.T) {
	notes := new(MockSpbRepository)
	svc := newTestService(notes, new(MockHarvestRepository))

	var got spb.ListFilter
	notes.On("List", mock.Anything, mock.Anything, shared.Pagination{Page: 2, PageSize: 10}).
		Run(func(args mock.Arguments) { got = args.Get(1).(spb.ListFilter) }).
		Return([]spb.SPB{{NomorSPB: "SPB/20240601/001"}}, int64(11), nil)

	page, err := svc.List(context.Background(), ListRequest{
		Status: "created", StartDate: "2024-06-01", EndDate: "2024-06-02", Page: 2, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, spb.StatusCreated, got.Status)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, 1, got.StartDate.Day())
	assert.Equal(t, 2, got.EndDate.Day())

	_, err = svc.List(context.Background(), ListRequest{Status: "lost"})
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestSpbService_ListRestan(t *testing.T) {
	records := new(MockHarvestRepository)
	svc := newTestService(new(MockSpbRepository), records)
	divisi := uuid.New()
	records.On("ListRestan", mock.Anything, &divisi).Return([]harvest.RestanItem{{ID: uuid.New()}}, nil)

	asisten := &identity.Profile{ID: uuid.New(), Role: identity.RoleAsisten, DivisiID: &divisi}
	items, err := svc.ListRestan(context.Background(), asisten, nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.ListRestan(context.Background(), &identity.Profile{Role: identity.RoleKraniPanen}, nil)
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))
}
