package report

import (
	"context"
	"time"

	"github.com/pentol/backend/internal/application/policy"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/organization"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/config"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// KPIService computes dashboard KPIs from harvest records
type KPIService struct {
	reports       report.Repository
	org           organization.Repository
	targetKgPerHa decimal.Decimal
	targets       report.Targets
	policy        *policy.Policy
	location      *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

// TargetsFromConfig converts configured thresholds
func TargetsFromConfig(cfg config.KPIConfig) report.Targets {
	return report.Targets{
		AchievementMinPct:    decimal.NewFromFloat(cfg.AchievementMinPct),
		ProductivityMinTonHa: decimal.NewFromFloat(cfg.ProductivityMinTonHa),
		BJRMinKg:             decimal.NewFromFloat(cfg.BJRMinKg),
		BJRMaxKg:             decimal.NewFromFloat(cfg.BJRMaxKg),
		BMTMaxPct:            decimal.NewFromFloat(cfg.BMTMaxPct),
		LossesMaxPct:         decimal.NewFromFloat(cfg.LossesMaxPct),
	}
}

// NewKPIService creates a new KPIService. targetKgPerHa is the daily
// per-hectare target achievement is measured against.
func NewKPIService(
	reports report.Repository,
	org organization.Repository,
	targetKgPerHa decimal.Decimal,
	targets report.Targets,
	p *policy.Policy,
	loc *time.Location,
	logger *zap.Logger,
) *KPIService {
	if p == nil {
		p = policy.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &KPIService{
		reports:       reports,
		org:           org,
		targetKgPerHa: targetKgPerHa,
		targets:       targets,
		policy:        p,
		location:      loc,
		now:           time.Now,
		logger:        logger,
	}
}

// resolveScope narrows a requested scope to what the actor may see
func resolveScope(actor *identity.Profile, requested report.Scope) (report.Scope, error) {
	divisi, err := actor.ResolveDivision(requested.DivisiFilter())
	if err != nil {
		return report.Scope{}, err
	}
	return report.ScopeFromDivision(divisi), nil
}

// ComputeDailyKpis aggregates one day for the scope. A day without records
// returns a zero KPI with HasData false.
func (s *KPIService) ComputeDailyKpis(ctx context.Context, actor *identity.Profile, req KPIRequest) (*report.AggregatedKPI, error) {
	if err := actor.Authorize(identity.ActionViewReports); err != nil {
		return nil, err
	}
	requested, err := report.ParseScope(req.Scope)
	if err != nil {
		return nil, err
	}
	scope, err := resolveScope(actor, requested)
	if err != nil {
		return nil, err
	}
	day, err := shared.ParseCalendarDate("date", req.Date, s.now(), s.location)
	if err != nil {
		return nil, err
	}

	kpi, err := s.compute(ctx, scope, day, day, 1)
	if err != nil {
		return nil, err
	}
	logger.For(ctx, s.logger).Debug("KPI computed",
		zap.String("scope", kpi.Scope),
		zap.String("date", kpi.Date),
		zap.Int64("records", kpi.TotalRecords),
	)
	return kpi, nil
}

// compute sums [start, end] and derives the KPI. The target scales with days.
func (s *KPIService) compute(ctx context.Context, scope report.Scope, start, end time.Time, days int) (*report.AggregatedKPI, error) {
	var inputs report.KPIInputs
	err := s.policy.Read(ctx, "kpi.compute", func(ctx context.Context) error {
		sums, err := s.reports.SumKPI(ctx, scope.DivisiFilter(), start, end)
		if err != nil {
			return err
		}
		area, err := s.org.TotalArea(ctx, scope.DivisiFilter())
		if err != nil {
			return err
		}
		sums.AreaHa = area
		inputs = sums
		return nil
	})
	if err != nil {
		return nil, err
	}
	inputs.TargetKgPerHa = s.targetKgPerHa.Mul(decimal.NewFromInt(int64(days)))

	kpi := report.ComputeKPI(scope, end, inputs)
	status := s.targets.Evaluate(kpi)
	kpi.Targets = &status
	return &kpi, nil
}

// GangPerformance ranks a division's harvesters for one day by bunch count
func (s *KPIService) GangPerformance(
	ctx context.Context,
	actor *identity.Profile,
	req GangPerformanceRequest,
) ([]report.HarvesterPerformance, error) {
	if err := actor.Authorize(identity.ActionViewReports); err != nil {
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
	day, err := shared.ParseCalendarDate("date", req.Date, s.now(), s.location)
	if err != nil {
		return nil, err
	}

	var sums []report.HarvesterSums
	err = s.policy.Read(ctx, "kpi.gang_performance", func(ctx context.Context) error {
		var err error
		sums, err = s.reports.GangPerformance(ctx, divisi, day)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]report.HarvesterPerformance, len(sums))
	for i, row := range sums {
		out[i] = report.NewHarvesterPerformance(row)
	}
	return out, nil
}
