package report

import (
	"context"
	"time"

	"github.com/pentol/backend/internal/application/policy"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReportService serves the report listing and period summaries
type ReportService struct {
	reports     report.Repository
	kpi         *KPIService
	policy      *policy.Policy
	maxPageSize int
	location    *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	reports report.Repository,
	kpi *KPIService,
	p *policy.Policy,
	maxPageSize int,
	loc *time.Location,
	logger *zap.Logger,
) *ReportService {
	if p == nil {
		p = policy.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		reports:     reports,
		kpi:         kpi,
		policy:      p,
		maxPageSize: maxPageSize,
		location:    loc,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *ReportService) buildFilter(actor *identity.Profile, startDate, endDate, divisiID, gangID string) (report.Filter, error) {
	now := s.now()
	start, err := shared.ParseCalendarDate("start_date", startDate, now, s.location)
	if err != nil {
		return report.Filter{}, err
	}
	end, err := shared.ParseCalendarDate("end_date", endDate, now, s.location)
	if err != nil {
		return report.Filter{}, err
	}
	requested, err := parseOptionalID("divisi_id", divisiID)
	if err != nil {
		return report.Filter{}, err
	}
	divisi, err := actor.ResolveDivision(requested)
	if err != nil {
		return report.Filter{}, err
	}
	gang, err := parseOptionalID("gang_id", gangID)
	if err != nil {
		return report.Filter{}, err
	}
	return report.Filter{StartDate: start, EndDate: end, DivisiID: divisi, GangID: gang}, nil
}

// FetchRecords returns one page of denormalized rows, newest first.
// An inverted range is an empty page, not an error.
func (s *ReportService) FetchRecords(
	ctx context.Context,
	actor *identity.Profile,
	req RecordsRequest,
) (*shared.Paginated[report.DenormalizedRow], error) {
	if err := actor.Authorize(identity.ActionViewReports); err != nil {
		return nil, err
	}
	filter, err := s.buildFilter(actor, req.StartDate, req.EndDate, req.DivisiID, req.GangID)
	if err != nil {
		return nil, err
	}
	page := shared.Pagination{Page: req.Page, PageSize: req.PageSize}.Normalize(s.maxPageSize)
	if filter.IsEmptyRange() {
		out := shared.NewPaginated([]report.DenormalizedRow{}, 0, page.Page, page.PageSize)
		return &out, nil
	}

	var (
		rows  []report.DenormalizedRow
		total int64
	)
	err = s.policy.Read(ctx, "report.records", func(ctx context.Context) error {
		var err error
		rows, total, err = s.reports.FetchRecords(ctx, filter, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := shared.NewPaginated(rows, total, page.Page, page.PageSize)
	return &out, nil
}

// Summary totals the period ending on the requested date
func (s *ReportService) Summary(ctx context.Context, actor *identity.Profile, req SummaryRequest) (*SummaryResponse, error) {
	if err := actor.Authorize(identity.ActionViewReports); err != nil {
		return nil, err
	}
	period, err := parsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	ref, err := shared.ParseCalendarDate("date", req.Date, s.now(), s.location)
	if err != nil {
		return nil, err
	}
	requested, err := parseOptionalID("divisi_id", req.DivisiID)
	if err != nil {
		return nil, err
	}
	divisi, err := actor.ResolveDivision(requested)
	if err != nil {
		return nil, err
	}

	start, end := period.Range(ref)
	days := shared.DaysInclusive(start, end)
	kpi, err := s.kpi.compute(ctx, report.ScopeFromDivision(divisi), start, end, days)
	if err != nil {
		return nil, err
	}
	return &SummaryResponse{
		Period:    string(period),
		StartDate: start.Format(shared.CalendarLayout),
		EndDate:   end.Format(shared.CalendarLayout),
		Days:      days,
		KPI:       *kpi,
	}, nil
}
