package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	harvestapp "github.com/pentol/backend/internal/application/harvest"
	identityapp "github.com/pentol/backend/internal/application/identity"
	reportapp "github.com/pentol/backend/internal/application/report"
	spbapp "github.com/pentol/backend/internal/application/spb"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/organization"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
)

// serve runs one request through a router with a resolved profile
func serve(method, pattern, target, body string, profile *identity.Profile, h gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(middleware.RequestID(), func(c *gin.Context) {
		if profile != nil {
			c.Set(middleware.ProfileKey, profile)
		}
		c.Next()
	})
	router.Handle(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testProfile(role identity.Role) *identity.Profile {
	divisi := uuid.New()
	return &identity.Profile{ID: uuid.New(), Email: "user@pentol.test", Role: role, DivisiID: &divisi}
}

// MockHarvestInput implements HarvestInput
type MockHarvestInput struct {
	mock.Mock
}

func (m *MockHarvestInput) SubmitInput(ctx context.Context, actor *identity.Profile, req harvestapp.InputRequest) (*harvestapp.InputResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*harvestapp.InputResult), args.Error(1)
}

func (m *MockHarvestInput) UploadPhoto(ctx context.Context, actor *identity.Profile, r io.Reader) (*harvestapp.PhotoResult, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, actor, string(data))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*harvestapp.PhotoResult), args.Error(1)
}

// MockHarvestApproval implements HarvestApproval
type MockHarvestApproval struct {
	mock.Mock
}

func (m *MockHarvestApproval) transition(args mock.Arguments) (*harvestapp.TransitionResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*harvestapp.TransitionResult), args.Error(1)
}

func (m *MockHarvestApproval) Submit(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*harvestapp.TransitionResult, error) {
	return m.transition(m.Called(ctx, actor, id))
}

func (m *MockHarvestApproval) Approve(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*harvestapp.TransitionResult, error) {
	return m.transition(m.Called(ctx, actor, id))
}

func (m *MockHarvestApproval) Reject(ctx context.Context, actor *identity.Profile, id uuid.UUID, reason string) (*harvestapp.TransitionResult, error) {
	return m.transition(m.Called(ctx, actor, id, reason))
}

func (m *MockHarvestApproval) BulkTransition(ctx context.Context, actor *identity.Profile, ids []uuid.UUID, to harvest.Status, reason string) (*harvestapp.BulkResult, error) {
	args := m.Called(ctx, actor, ids, to, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*harvestapp.BulkResult), args.Error(1)
}

func (m *MockHarvestApproval) PendingQueue(ctx context.Context, actor *identity.Profile, divisiID *uuid.UUID, page shared.Pagination) (*shared.Paginated[harvestapp.RecordResponse], error) {
	args := m.Called(ctx, actor, divisiID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[harvestapp.RecordResponse]), args.Error(1)
}

func (m *MockHarvestApproval) GetRecord(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*harvestapp.RecordResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*harvestapp.RecordResponse), args.Error(1)
}

// MockDeliveryNotes implements DeliveryNotes
type MockDeliveryNotes struct {
	mock.Mock
}

func (m *MockDeliveryNotes) CreateSpb(ctx context.Context, actor *identity.Profile, req spbapp.CreateRequest) (*spbapp.SpbResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spbapp.SpbResponse), args.Error(1)
}

func (m *MockDeliveryNotes) Ship(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*spbapp.SpbResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spbapp.SpbResponse), args.Error(1)
}

func (m *MockDeliveryNotes) Get(ctx context.Context, id uuid.UUID) (*spbapp.SpbDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spbapp.SpbDetail), args.Error(1)
}

func (m *MockDeliveryNotes) List(ctx context.Context, req spbapp.ListRequest) (*shared.Paginated[spbapp.SpbResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[spbapp.SpbResponse]), args.Error(1)
}

func (m *MockDeliveryNotes) ListRestan(ctx context.Context, actor *identity.Profile, divisiID *uuid.UUID) ([]harvest.RestanItem, error) {
	args := m.Called(ctx, actor, divisiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]harvest.RestanItem), args.Error(1)
}

// MockProfileReader implements ProfileReader
type MockProfileReader struct {
	mock.Mock
}

func (m *MockProfileReader) Me(ctx context.Context, userID uuid.UUID) (*identityapp.MeResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.MeResponse), args.Error(1)
}

// MockOrganizationLookup implements OrganizationLookup
type MockOrganizationLookup struct {
	mock.Mock
}

func (m *MockOrganizationLookup) ListDivisi(ctx context.Context, actor *identity.Profile) ([]organization.Divisi, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]organization.Divisi), args.Error(1)
}

func (m *MockOrganizationLookup) ListGangs(ctx context.Context, actor *identity.Profile, divisiID uuid.UUID) ([]organization.Gang, error) {
	args := m.Called(ctx, actor, divisiID)
	return args.Get(0).([]organization.Gang), args.Error(1)
}

func (m *MockOrganizationLookup) ListBloks(ctx context.Context, actor *identity.Profile, divisiID uuid.UUID) ([]organization.Blok, error) {
	args := m.Called(ctx, actor, divisiID)
	return args.Get(0).([]organization.Blok), args.Error(1)
}

func (m *MockOrganizationLookup) ListTPH(ctx context.Context, blokID uuid.UUID) ([]organization.TPH, error) {
	args := m.Called(ctx, blokID)
	return args.Get(0).([]organization.TPH), args.Error(1)
}

func (m *MockOrganizationLookup) ListPemanen(ctx context.Context, gangID uuid.UUID) ([]organization.Pemanen, error) {
	args := m.Called(ctx, gangID)
	return args.Get(0).([]organization.Pemanen), args.Error(1)
}

// MockKPIReader implements KPIReader
type MockKPIReader struct {
	mock.Mock
}

func (m *MockKPIReader) ComputeDailyKpis(ctx context.Context, actor *identity.Profile, req reportapp.KPIRequest) (*report.AggregatedKPI, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.AggregatedKPI), args.Error(1)
}

func (m *MockKPIReader) GangPerformance(ctx context.Context, actor *identity.Profile, req reportapp.GangPerformanceRequest) ([]report.HarvesterPerformance, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.HarvesterPerformance), args.Error(1)
}

// MockReportReader implements ReportReader
type MockReportReader struct {
	mock.Mock
}

func (m *MockReportReader) FetchRecords(ctx context.Context, actor *identity.Profile, req reportapp.RecordsRequest) (*shared.Paginated[report.DenormalizedRow], error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[report.DenormalizedRow]), args.Error(1)
}

func (m *MockReportReader) Summary(ctx context.Context, actor *identity.Profile, req reportapp.SummaryRequest) (*reportapp.SummaryResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.SummaryResponse), args.Error(1)
}

// MockReportExporter implements ReportExporter
type MockReportExporter struct {
	mock.Mock
}

func (m *MockReportExporter) Export(ctx context.Context, actor *identity.Profile, req reportapp.ExportRequest) (*reportapp.ExportResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ExportResult), args.Error(1)
}
