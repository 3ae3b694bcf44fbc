package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/shared"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ScopeKind distinguishes estate-wide from single-division aggregation
type ScopeKind string

const (
	ScopeEstate   ScopeKind = "estate"
	ScopeDivision ScopeKind = "division"
)

// Scope is the organizational unit a KPI or report covers
type Scope struct {
	Kind     ScopeKind
	DivisiID uuid.UUID
}

// EstateScope covers every division
func EstateScope() Scope {
	return Scope{Kind: ScopeEstate}
}

// DivisionScope covers a single division
func DivisionScope(id uuid.UUID) Scope {
	return Scope{Kind: ScopeDivision, DivisiID: id}
}

// ParseScope accepts "estate" or "division:<uuid>"
func ParseScope(s string) (Scope, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == string(ScopeEstate) {
		return EstateScope(), nil
	}
	kind, raw, ok := strings.Cut(s, ":")
	if !ok || ScopeKind(kind) != ScopeDivision {
		return Scope{}, shared.NewValidationError(fmt.Sprintf("invalid scope %q", s)).WithDetail("field", "scope")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Scope{}, shared.NewValidationError(fmt.Sprintf("invalid division id %q", raw)).WithDetail("field", "scope")
	}
	return DivisionScope(id), nil
}

// String renders the scope in its parseable form
func (s Scope) String() string {
	if s.Kind == ScopeDivision {
		return fmt.Sprintf("%s:%s", ScopeDivision, s.DivisiID)
	}
	return string(ScopeEstate)
}

// DivisiFilter returns the division id to filter on, or nil for the estate
func (s Scope) DivisiFilter() *uuid.UUID {
	if s.Kind != ScopeDivision {
		return nil
	}
	id := s.DivisiID
	return &id
}

// ScopeFromDivision builds a scope from an optional division id
func ScopeFromDivision(id *uuid.UUID) Scope {
	if id == nil {
		return EstateScope()
	}
	return DivisionScope(*id)
}

// Period is the reporting window used by summaries and export file names
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// IsValid checks if the Period is a valid value
func (p Period) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Range returns the inclusive date range of the period ending on ref.
// Weekly is the seven days ending on ref; monthly runs from the first of ref's month.
func (p Period) Range(ref time.Time) (start, end time.Time) {
	end = truncateDay(ref)
	switch p {
	case PeriodWeekly:
		start = end.AddDate(0, 0, -6)
	case PeriodMonthly:
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	default:
		start = end
	}
	return start, end
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
