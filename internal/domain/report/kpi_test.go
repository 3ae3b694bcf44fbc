package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testDay = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeKPI_ThreeRecordScenario(t *testing.T) {
	// jjg 10, 20, 0 and kg 150, 280, 0 across 2 ha
	in := KPIInputs{
		RecordCount:   3,
		TotalJJG:      30,
		TotalKg:       dec("430"),
		TotalMentah:   0,
		AreaHa:        dec("2"),
		TargetKgPerHa: dec("1000"),
	}

	kpi := ComputeKPI(EstateScope(), testDay, in)

	assert.True(t, kpi.HasData)
	assert.Equal(t, int64(30), kpi.TotalJJG)
	assert.True(t, kpi.TotalKg.Equal(dec("430")))
	assert.Equal(t, "14.3333", kpi.BJR.StringFixed(4))
	assert.True(t, kpi.ProductivityTonHa.Equal(dec("0.215")), kpi.ProductivityTonHa.String())
	assert.True(t, kpi.AchievementPct.Equal(dec("21.5")), kpi.AchievementPct.String())
	assert.True(t, kpi.LossesPct.IsZero())
	assert.Equal(t, "estate", kpi.Scope)
	assert.Equal(t, "2024-06-01", kpi.Date)
}

func TestComputeKPI_ZeroGuards(t *testing.T) {
	tests := []struct {
		name string
		in   KPIInputs
	}{
		{"no data at all", KPIInputs{}},
		{"zero bunches", KPIInputs{RecordCount: 1, TotalKg: dec("100"), AreaHa: dec("2"), TargetKgPerHa: dec("1000")}},
		{"zero area", KPIInputs{RecordCount: 1, TotalJJG: 10, TotalKg: dec("150"), TargetKgPerHa: dec("1000")}},
		{"zero target", KPIInputs{RecordCount: 1, TotalJJG: 10, TotalKg: dec("150"), AreaHa: dec("2")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				kpi := ComputeKPI(EstateScope(), testDay, tt.in)
				if tt.in.TotalJJG == 0 {
					assert.True(t, kpi.BJR.IsZero())
					assert.True(t, kpi.LossesPct.IsZero())
				}
				if tt.in.AreaHa.IsZero() {
					assert.True(t, kpi.ProductivityTonHa.IsZero())
					assert.True(t, kpi.AchievementPct.IsZero())
				}
				if tt.in.TargetKgPerHa.IsZero() {
					assert.True(t, kpi.AchievementPct.IsZero())
				}
			})
		})
	}
}

func TestComputeKPI_EmptyScopeIsZeroNotError(t *testing.T) {
	kpi := ComputeKPI(DivisionScope(uuid.New()), testDay, KPIInputs{})
	assert.False(t, kpi.HasData)
	assert.Equal(t, int64(0), kpi.TotalRecords)
	assert.True(t, kpi.TotalKg.IsZero())
}

func TestComputeKPI_Idempotent(t *testing.T) {
	in := KPIInputs{
		RecordCount:   7,
		TotalJJG:      133,
		TotalKg:       dec("2011.37"),
		TotalMentah:   3,
		GradedBunches: 133,
		AreaHa:        dec("12.75"),
		TargetKgPerHa: dec("1500"),
	}
	first := ComputeKPI(EstateScope(), testDay, in)
	for i := 0; i < 5; i++ {
		again := ComputeKPI(EstateScope(), testDay, in)
		assert.Equal(t, first.BJR.String(), again.BJR.String())
		assert.Equal(t, first.LossesPct.String(), again.LossesPct.String())
		assert.Equal(t, first.ProductivityTonHa.String(), again.ProductivityTonHa.String())
		assert.Equal(t, first.AchievementPct.String(), again.AchievementPct.String())
	}
}

func TestComputeKPI_Losses(t *testing.T) {
	in := KPIInputs{RecordCount: 1, TotalJJG: 200, TotalKg: dec("3000"), TotalMentah: 3, GradedBunches: 150}
	kpi := ComputeKPI(EstateScope(), testDay, in)
	assert.True(t, kpi.LossesPct.Equal(dec("1.5")))
	assert.True(t, kpi.BMTPct.Equal(dec("2")))
}

func TestTargets_Evaluate(t *testing.T) {
	targets := DefaultTargets()

	good := AggregatedKPI{
		HasData:           true,
		AchievementPct:    dec("96"),
		ProductivityTonHa: dec("23"),
		BJR:               dec("17.5"),
		BMTPct:            dec("1.2"),
		LossesPct:         dec("0.5"),
	}
	assert.Equal(t, TargetStatus{true, true, true, true, true}, targets.Evaluate(good))

	bad := AggregatedKPI{
		HasData:           true,
		AchievementPct:    dec("80"),
		ProductivityTonHa: dec("10"),
		BJR:               dec("21"),
		BMTPct:            dec("2"),
		LossesPct:         dec("1"),
	}
	assert.Equal(t, TargetStatus{}, targets.Evaluate(bad))

	assert.Equal(t, TargetStatus{}, targets.Evaluate(AggregatedKPI{}))
}
