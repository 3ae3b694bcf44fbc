package spb

import (
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/spb"
)

// CreateRequest is the SPB creation form
type CreateRequest struct {
	RecordIDs  []uuid.UUID `json:"record_ids" binding:"required,min=1"`
	DriverName string      `json:"driver_name" binding:"required,max=100"`
	TruckPlate string      `json:"truck_plate" binding:"required,max=20"`
	Confirm    bool        `json:"confirm"`
}

// ListRequest filters the SPB list
type ListRequest struct {
	Status    string `form:"status"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// SpbResponse is a delivery note as returned by the API
type SpbResponse struct {
	ID         uuid.UUID  `json:"id"`
	NomorSPB   string     `json:"nomor_spb"`
	DriverName string     `json:"driver_name"`
	TruckPlate string     `json:"truck_plate"`
	Status     string     `json:"status"`
	CreatedBy  uuid.UUID  `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ShippedAt  *time.Time `json:"shipped_at,omitempty"`
}

// SpbDetail is a delivery note with its records and totals
type SpbDetail struct {
	SpbResponse
	Lines  []spb.Line `json:"lines"`
	Totals spb.Totals `json:"totals"`
}

// ToSpbResponse converts a domain note to its response form
func ToSpbResponse(note *spb.SPB) SpbResponse {
	return SpbResponse{
		ID:         note.ID,
		NomorSPB:   note.NomorSPB,
		DriverName: note.DriverName,
		TruckPlate: note.TruckPlate,
		Status:     string(note.Status),
		CreatedBy:  note.CreatedBy,
		CreatedAt:  note.CreatedAt,
		ShippedAt:  note.ShippedAt,
	}
}
