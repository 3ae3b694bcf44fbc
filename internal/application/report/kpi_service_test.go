package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/application/policy"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDay = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newKPIService(reports *MockReportRepository, org *MockOrganizationRepository) *KPIService {
	svc := NewKPIService(reports, org, decimal.NewFromInt(1000), report.DefaultTargets(), nil, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return testDay.Add(9 * time.Hour) }
	return svc
}

func newFastPolicy(attempts int) *policy.Policy {
	return policy.New(time.Second, config.RetryConfig{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}, nil)
}

func manager() *identity.Profile {
	return &identity.Profile{ID: uuid.New(), Role: identity.RoleEstateManager}
}

func TestKPIService_ComputeDailyKpis(t *testing.T) {
	reports := new(MockReportRepository)
	org := new(MockOrganizationRepository)
	svc := newKPIService(reports, org)

	reports.On("SumKPI", mock.Anything, (*uuid.UUID)(nil), testDay, testDay).Return(report.KPIInputs{
		RecordCount:   3,
		TotalJJG:      100,
		TotalKg:       decimal.NewFromInt(1700),
		TotalMentah:   1,
		GradedBunches: 100,
	}, nil)
	org.On("TotalArea", mock.Anything, (*uuid.UUID)(nil)).Return(decimal.NewFromInt(2), nil)

	kpi, err := svc.ComputeDailyKpis(context.Background(), manager(), KPIRequest{Scope: "estate"})
	require.NoError(t, err)
	assert.Equal(t, "estate", kpi.Scope)
	assert.Equal(t, "2024-06-01", kpi.Date)
	assert.True(t, kpi.HasData)
	assert.Equal(t, "17", kpi.BJR.String())
	assert.Equal(t, "1", kpi.LossesPct.String())
	assert.Equal(t, "0.85", kpi.ProductivityTonHa.String())
	assert.Equal(t, "85", kpi.AchievementPct.String())
	require.NotNil(t, kpi.Targets)
	assert.True(t, kpi.Targets.BJR)
	assert.False(t, kpi.Targets.Achievement)
	assert.False(t, kpi.Targets.Losses)
}

func TestKPIService_ComputeDailyKpis_NoData(t *testing.T) {
	reports := new(MockReportRepository)
	org := new(MockOrganizationRepository)
	svc := newKPIService(reports, org)
	divisi := uuid.New()

	reports.On("SumKPI", mock.Anything, &divisi, testDay, testDay).Return(report.KPIInputs{TotalKg: decimal.Zero}, nil)
	org.On("TotalArea", mock.Anything, &divisi).Return(decimal.Zero, nil)

	kpi, err := svc.ComputeDailyKpis(context.Background(), manager(), KPIRequest{
		Scope: "division:" + divisi.String(), Date: "2024-06-01",
	})
	require.NoError(t, err)
	assert.False(t, kpi.HasData)
	assert.True(t, kpi.BJR.IsZero())
	assert.True(t, kpi.AchievementPct.IsZero())
	assert.Equal(t, report.TargetStatus{}, *kpi.Targets)
}

func TestKPIService_ComputeDailyKpis_PinsDivision(t *testing.T) {
	reports := new(MockReportRepository)
	org := new(MockOrganizationRepository)
	svc := newKPIService(reports, org)
	own := uuid.New()
	mandor := &identity.Profile{ID: uuid.New(), Role: identity.RoleMandor, DivisiID: &own}

	reports.On("SumKPI", mock.Anything, &own, testDay, testDay).Return(report.KPIInputs{}, nil)
	org.On("TotalArea", mock.Anything, &own).Return(decimal.NewFromInt(10), nil)

	kpi, err := svc.ComputeDailyKpis(context.Background(), mandor, KPIRequest{})
	require.NoError(t, err)
	assert.Equal(t, "division:"+own.String(), kpi.Scope)

	_, err = svc.ComputeDailyKpis(context.Background(), mandor, KPIRequest{Scope: "division:" + uuid.New().String()})
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))
}

func TestKPIService_ComputeDailyKpis_Validation(t *testing.T) {
	svc := newKPIService(new(MockReportRepository), new(MockOrganizationRepository))

	_, err := svc.ComputeDailyKpis(context.Background(), manager(), KPIRequest{Scope: "blok:1"})
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	_, err = svc.ComputeDailyKpis(context.Background(), manager(), KPIRequest{Date: "besok"})
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	_, err = svc.ComputeDailyKpis(context.Background(), &identity.Profile{Role: identity.RoleKraniPanen}, KPIRequest{})
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))
}

func TestKPIService_RetriesTransientReads(t *testing.T) {
	reports := new(MockReportRepository)
	org := new(MockOrganizationRepository)
	svc := newKPIService(reports, org)
	svc.policy = newFastPolicy(3)

	reports.On("SumKPI", mock.Anything, (*uuid.UUID)(nil), testDay, testDay).
		Return(report.KPIInputs{}, shared.NewTransientError("timeout", nil)).Once()
	reports.On("SumKPI", mock.Anything, (*uuid.UUID)(nil), testDay, testDay).
		Return(report.KPIInputs{RecordCount: 1, TotalJJG: 1, TotalKg: decimal.NewFromInt(15)}, nil).Once()
	org.On("TotalArea", mock.Anything, (*uuid.UUID)(nil)).Return(decimal.NewFromInt(1), nil)

	kpi, err := svc.ComputeDailyKpis(context.Background(), manager(), KPIRequest{})
	require.NoError(t, err)
	assert.True(t, kpi.HasData)
	reports.AssertNumberOfCalls(t, "SumKPI", 2)
}

func TestKPIService_GangPerformance(t *testing.T) {
	reports := new(MockReportRepository)
	svc := newKPIService(reports, new(MockOrganizationRepository))
	divisi := uuid.New()

	reports.On("GangPerformance", mock.Anything, &divisi, testDay).Return([]report.HarvesterSums{
		{PemanenName: "Budi", TotalJJG: 50, TotalMentah: 1, TotalKg: decimal.NewFromInt(800)},
		{PemanenName: "", TotalJJG: 0},
	}, nil)

	rows, err := svc.GangPerformance(context.Background(), manager(), GangPerformanceRequest{DivisiID: divisi.String()})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0].LossesRate.String())
	assert.Equal(t, report.MissingName, rows[1].PemanenName)
	assert.True(t, rows[1].LossesRate.IsZero())

	_, err = svc.GangPerformance(context.Background(), manager(), GangPerformanceRequest{DivisiID: "satu"})
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestTargetsFromConfig(t *testing.T) {
	targets := TargetsFromConfig(config.KPIConfig{
		AchievementMinPct: 95, ProductivityMinTonHa: 22, BJRMinKg: 15, BJRMaxKg: 20, BMTMaxPct: 2, LossesMaxPct: 1,
	})
	assert.True(t, targets.BJRMaxKg.Equal(report.DefaultTargets().BJRMaxKg))
	assert.True(t, targets.AchievementMinPct.Equal(decimal.NewFromInt(95)))
}
