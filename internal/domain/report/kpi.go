package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// kpiPlaces is the rounding applied to every derived ratio
const kpiPlaces = 4

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// KPIInputs are the sums a KPI is computed from
type KPIInputs struct {
	RecordCount   int64
	TotalJJG      int64
	TotalKg       decimal.Decimal
	TotalMentah   int64
	GradedBunches int64 // masak + mentah + mengkal + overripe + abnormal + busuk
	AreaHa        decimal.Decimal
	TargetKgPerHa decimal.Decimal
}

// AggregatedKPI is the derived daily performance of a scope. It is never persisted.
type AggregatedKPI struct {
	Scope             string          `json:"scope"`
	Date              string          `json:"date"`
	HasData           bool            `json:"has_data"`
	TotalRecords      int64           `json:"total_records"`
	TotalJJG          int64           `json:"total_jjg"`
	TotalKg           decimal.Decimal `json:"total_kg"`
	TotalMentah       int64           `json:"total_mentah"`
	AreaHa            decimal.Decimal `json:"area_ha"`
	BJR               decimal.Decimal `json:"bjr"`
	LossesPct         decimal.Decimal `json:"losses_pct"`
	BMTPct            decimal.Decimal `json:"bmt_pct"`
	ProductivityTonHa decimal.Decimal `json:"productivity_ton_ha"`
	AchievementPct    decimal.Decimal `json:"achievement_pct"`
	Targets           *TargetStatus   `json:"targets,omitempty"`
}

// safeDiv returns num/den rounded, or zero when den is zero
func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, kpiPlaces+4).Round(kpiPlaces)
}

// ComputeKPI derives ratios from sums. It is pure: identical inputs always
// produce identical outputs, and every zero denominator yields zero.
func ComputeKPI(scope Scope, day time.Time, in KPIInputs) AggregatedKPI {
	jjg := decimal.NewFromInt(in.TotalJJG)
	mentah := decimal.NewFromInt(in.TotalMentah)
	kg := in.TotalKg
	area := in.AreaHa

	kpi := AggregatedKPI{
		Scope:        scope.String(),
		Date:         day.Format(DateLayout),
		HasData:      in.RecordCount > 0,
		TotalRecords: in.RecordCount,
		TotalJJG:     in.TotalJJG,
		TotalKg:      kg.Round(2),
		TotalMentah:  in.TotalMentah,
		AreaHa:       area,
	}

	kpi.BJR = safeDiv(kg, jjg)
	kpi.LossesPct = safeDiv(mentah.Mul(hundred), jjg)
	kpi.BMTPct = safeDiv(mentah.Mul(hundred), decimal.NewFromInt(in.GradedBunches))
	kpi.ProductivityTonHa = safeDiv(kg.Div(thousand), area)
	kpi.AchievementPct = safeDiv(kg.Mul(hundred), area.Mul(in.TargetKgPerHa))
	return kpi
}

// Targets are the thresholds the dashboards grade KPIs against
type Targets struct {
	AchievementMinPct    decimal.Decimal
	ProductivityMinTonHa decimal.Decimal
	BJRMinKg             decimal.Decimal
	BJRMaxKg             decimal.Decimal
	BMTMaxPct            decimal.Decimal
	LossesMaxPct         decimal.Decimal
}

// DefaultTargets returns the estate's standing thresholds
func DefaultTargets() Targets {
	return Targets{
		AchievementMinPct:    decimal.NewFromInt(95),
		ProductivityMinTonHa: decimal.NewFromInt(22),
		BJRMinKg:             decimal.NewFromInt(15),
		BJRMaxKg:             decimal.NewFromInt(20),
		BMTMaxPct:            decimal.NewFromInt(2),
		LossesMaxPct:         decimal.NewFromInt(1),
	}
}

// TargetStatus flags which KPIs are on target
type TargetStatus struct {
	Achievement  bool `json:"achievement"`
	Productivity bool `json:"productivity"`
	BJR          bool `json:"bjr"`
	BMT          bool `json:"bmt"`
	Losses       bool `json:"losses"`
}

// Evaluate grades a KPI against targets. A scope without data is on target for
// nothing.
func (t Targets) Evaluate(kpi AggregatedKPI) TargetStatus {
	if !kpi.HasData {
		return TargetStatus{}
	}
	return TargetStatus{
		Achievement:  kpi.AchievementPct.GreaterThanOrEqual(t.AchievementMinPct),
		Productivity: kpi.ProductivityTonHa.GreaterThanOrEqual(t.ProductivityMinTonHa),
		BJR:          kpi.BJR.GreaterThanOrEqual(t.BJRMinKg) && kpi.BJR.LessThanOrEqual(t.BJRMaxKg),
		BMT:          kpi.BMTPct.LessThan(t.BMTMaxPct),
		Losses:       kpi.LossesPct.LessThan(t.LossesMaxPct),
	}
}
