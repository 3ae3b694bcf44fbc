package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortable maps API sort keys to the columns they order by. Keys outside the
// map fall back to the default column, so request input never reaches SQL.
type sortable struct {
	columns  map[string]string
	fallback string
}

var spbSort = sortable{
	columns: map[string]string{
		"created_at":  "created_at",
		"nomor_spb":   "nomor_spb",
		"status":      "status",
		"driver_name": "driver_name",
		"truck_plate": "truck_plate",
		"shipped_at":  "shipped_at",
	},
	fallback: "created_at",
}

// orderBy resolves a sort key and direction. Anything other than "asc"
// sorts descending. The id tiebreak keeps pages stable.
func (s sortable) orderBy(key, direction string) clause.OrderBy {
	column, ok := s.columns[strings.TrimSpace(key)]
	if !ok {
		column = s.fallback
	}
	desc := !strings.EqualFold(strings.TrimSpace(direction), "asc")
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: desc},
		{Column: clause.Column{Name: "id"}},
	}}
}
