package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
)

func parseOptionalID(field, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, shared.NewValidationError(fmt.Sprintf("%s must be a UUID", field)).WithDetail("field", field)
	}
	return &id, nil
}

func parsePeriod(value string) (report.Period, error) {
	if strings.TrimSpace(value) == "" {
		return report.PeriodDaily, nil
	}
	p := report.Period(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("unknown period %q", value)).WithDetail("field", "period")
	}
	return p, nil
}
