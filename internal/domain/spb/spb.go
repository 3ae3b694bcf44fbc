// Package spb models the delivery note (Surat Pengantar Buah) that groups approved
// harvest records onto one truck shipment.
package spb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a delivery note
type Status string

const (
	StatusCreated Status = "created"
	StatusShipped Status = "shipped"
)

// IsValid checks if the Status is a valid value
func (s Status) IsValid() bool {
	return s == StatusCreated || s == StatusShipped
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusCreated && target == StatusShipped
}

// SPB is a delivery note
type SPB struct {
	shared.BaseEntity
	NomorSPB   string
	DriverName string
	TruckPlate string
	CreatedBy  uuid.UUID
	Status     Status
	ShippedAt  *time.Time
}

// Request is a validated batch request
type Request struct {
	RecordIDs  []uuid.UUID
	DriverName string
	TruckPlate string
	CreatedBy  uuid.UUID
}

// NewRequest normalizes and validates a batch request. Duplicate ids are collapsed.
func NewRequest(recordIDs []uuid.UUID, driverName, truckPlate string, createdBy uuid.UUID) (Request, error) {
	ids := shared.UniqueIDs(recordIDs)
	if len(ids) == 0 {
		return Request{}, shared.NewValidationError("at least one harvest record is required").
			WithDetail("field", "record_ids")
	}
	driverName = strings.TrimSpace(driverName)
	if driverName == "" {
		return Request{}, shared.NewValidationError("driver name is required").WithDetail("field", "driver_name")
	}
	truckPlate = strings.ToUpper(strings.Join(strings.Fields(truckPlate), " "))
	if truckPlate == "" {
		return Request{}, shared.NewValidationError("truck plate is required").WithDetail("field", "truck_plate")
	}
	return Request{
		RecordIDs:  ids,
		DriverName: driverName,
		TruckPlate: truckPlate,
		CreatedBy:  createdBy,
	}, nil
}

// FormatNumber renders a delivery note number from its date and per-day sequence,
// e.g. SPB/20240601/007.
func FormatNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("SPB/%s/%03d", day.Format("20060102"), seq)
}

// Ship marks the note shipped in memory
func (s *SPB) Ship(now time.Time) error {
	if !s.Status.CanTransitionTo(StatusShipped) {
		return shared.NewInvalidStateError(
			fmt.Sprintf("SPB %s is already %s", s.NomorSPB, s.Status),
			s.ID.String(),
		)
	}
	s.Status = StatusShipped
	s.ShippedAt = &now
	s.Touch(now)
	return nil
}

// Line is one harvest record on a delivery note
type Line struct {
	RecordID      uuid.UUID       `json:"record_id"`
	Tanggal       string          `json:"tanggal"`
	BlokName      string          `json:"blok_name"`
	PemanenName   string          `json:"pemanen_name"`
	JumlahJJG     int             `json:"jumlah_jjg"`
	HasilPanenBJD decimal.Decimal `json:"hasil_panen_bjd"`
}

// Totals sums the lines of a delivery note
type Totals struct {
	Records int             `json:"records"`
	JJG     int             `json:"jjg"`
	Kg      decimal.Decimal `json:"kg"`
}

// SumLines totals lines
func SumLines(lines []Line) Totals {
	t := Totals{Kg: decimal.Zero}
	for _, l := range lines {
		t.Records++
		t.JJG += l.JumlahJJG
		t.Kg = t.Kg.Add(l.HasilPanenBJD)
	}
	return t
}

// ListFilter narrows the delivery note list
type ListFilter struct {
	Status    Status
	StartDate *time.Time // created on or after this instant
	EndDate   *time.Time // created before the day after this instant
	SortBy    string
	SortOrder string
}

// Repository persists delivery notes.
type Repository interface {
	// CreateWithRecords locks the requested records, checks every one is approved
	// and unbatched, draws the next per-day number, inserts the note and attaches
	// the records, all in one transaction. Any failure leaves nothing written.
	CreateWithRecords(ctx context.Context, note *SPB, recordIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*SPB, error)
	Lines(ctx context.Context, id uuid.UUID) ([]Line, error)
	// MarkShipped conditionally moves a created note to shipped.
	MarkShipped(ctx context.Context, note *SPB) (bool, error)
	List(ctx context.Context, filter ListFilter, page shared.Pagination) ([]SPB, int64, error)
}
