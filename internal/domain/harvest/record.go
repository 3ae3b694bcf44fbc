package harvest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Quality holds the per-record fruit grading and defect counts, in bunches
type Quality struct {
	BuahMasak      int
	BuahMentah     int
	BuahMengkal    int
	Overripe       int
	Abnormal       int
	BuahBusuk      int
	TangkaiPanjang int
	Jangkos        int
}

// Validate rejects negative counts. The first negative count in form order is reported.
func (q Quality) Validate() error {
	counts := []struct {
		field string
		value int
	}{
		{"buah_masak", q.BuahMasak},
		{"buah_mentah", q.BuahMentah},
		{"buah_mengkal", q.BuahMengkal},
		{"overripe", q.Overripe},
		{"abnormal", q.Abnormal},
		{"buah_busuk", q.BuahBusuk},
		{"tangkai_panjang", q.TangkaiPanjang},
		{"jangkos", q.Jangkos},
	}
	for _, c := range counts {
		if c.value < 0 {
			return shared.NewValidationError(fmt.Sprintf("%s cannot be negative", c.field)).
				WithDetail("field", c.field)
		}
	}
	return nil
}

// Record is one harvester's yield on one block on one day
type Record struct {
	shared.BaseEntity
	Tanggal          time.Time
	DivisiID         uuid.UUID
	BlokID           uuid.UUID
	PemanenID        uuid.UUID
	TPHID            *uuid.UUID
	Rotasi           int
	NomorPanen       string
	JumlahJJG        int
	BJR              decimal.Decimal // average kg per bunch
	HasilPanenBJD    decimal.Decimal // total kg, fixed at write time
	Brondolan        decimal.Decimal // loose fruit, kg
	Quality          Quality
	Keterangan       string
	KeteranganReview string
	FotoURL          *string
	Status           Status
	CreatedBy        uuid.UUID
	ApprovedBy       *uuid.UUID
	ApprovedAt       *time.Time
	SpbID            *uuid.UUID
}

// TotalWeight computes the record weight from bunch count and average bunch weight
func TotalWeight(jjg int, bjr decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(jjg)).Mul(bjr).Round(2)
}

// IsRestan reports whether the record is approved but not yet on a delivery note
func (r *Record) IsRestan() bool {
	return r.Status == StatusApproved && r.SpbID == nil
}

// TransitionTo moves the record to target in memory.
// Persisting it must be conditioned on the previous status.
func (r *Record) TransitionTo(target Status, actor uuid.UUID, reason string, now time.Time) error {
	if err := ValidateTransition(r.Status, target); err != nil {
		return err
	}
	switch target {
	case StatusApproved:
		r.ApprovedBy = &actor
		r.ApprovedAt = &now
	case StatusRejected:
		r.ApprovedBy = &actor
		r.ApprovedAt = &now
		r.KeteranganReview = strings.TrimSpace(reason)
	}
	r.Status = target
	r.Touch(now)
	return nil
}

// Input is one submission of the harvest form. The same measurements apply to
// every (block, harvester) pair it names.
type Input struct {
	Tanggal    time.Time
	DivisiID   uuid.UUID
	BlokIDs    []uuid.UUID
	PemanenIDs []uuid.UUID
	TPHID      *uuid.UUID
	Rotasi     int
	NomorPanen string
	JumlahJJG  int
	BJR        decimal.Decimal
	Brondolan  decimal.Decimal
	Quality    Quality
	Keterangan string
	FotoURL    *string
	CreatedBy  uuid.UUID
	Submit     bool
}

// Validate checks the form before fan-out
func (in Input) Validate() error {
	if len(in.BlokIDs) == 0 {
		return shared.NewValidationError("at least one block is required").WithDetail("field", "blok_ids")
	}
	if len(in.PemanenIDs) == 0 {
		return shared.NewValidationError("at least one harvester is required").WithDetail("field", "pemanen_ids")
	}
	if in.DivisiID == uuid.Nil {
		return shared.NewValidationError("division is required").WithDetail("field", "divisi_id")
	}
	if in.Rotasi <= 0 {
		return shared.NewValidationError("rotation must be positive").WithDetail("field", "rotasi")
	}
	if in.JumlahJJG < 0 {
		return shared.NewValidationError("bunch count cannot be negative").WithDetail("field", "jumlah_jjg")
	}
	if in.BJR.IsNegative() {
		return shared.NewValidationError("average bunch weight cannot be negative").WithDetail("field", "bjr")
	}
	if in.Brondolan.IsNegative() {
		return shared.NewValidationError("loose fruit weight cannot be negative").WithDetail("field", "brondolan")
	}
	if in.Tanggal.IsZero() {
		return shared.NewValidationError("harvest date is required").WithDetail("field", "tanggal")
	}
	return in.Quality.Validate()
}

// FanOut expands the form into one record per (block, harvester) pair.
//
// Each record receives the full submitted measurements; values are not split
// across harvesters. Duplicate block or harvester ids are collapsed. The result
// is ordered block-major in the order ids were submitted.
func FanOut(in Input, now time.Time) ([]*Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	status := StatusDraft
	if in.Submit {
		status = StatusSubmitted
	}

	bloks := shared.UniqueIDs(in.BlokIDs)
	pemanen := shared.UniqueIDs(in.PemanenIDs)
	weight := TotalWeight(in.JumlahJJG, in.BJR)
	tanggal := time.Date(in.Tanggal.Year(), in.Tanggal.Month(), in.Tanggal.Day(), 0, 0, 0, 0, in.Tanggal.Location())

	records := make([]*Record, 0, len(bloks)*len(pemanen))
	for _, blokID := range bloks {
		for _, pemanenID := range pemanen {
			r := &Record{
				BaseEntity:    shared.NewBaseEntityAt(now),
				Tanggal:       tanggal,
				DivisiID:      in.DivisiID,
				BlokID:        blokID,
				PemanenID:     pemanenID,
				TPHID:         in.TPHID,
				Rotasi:        in.Rotasi,
				NomorPanen:    strings.TrimSpace(in.NomorPanen),
				JumlahJJG:     in.JumlahJJG,
				BJR:           in.BJR,
				HasilPanenBJD: weight,
				Brondolan:     in.Brondolan,
				Quality:       in.Quality,
				Keterangan:    strings.TrimSpace(in.Keterangan),
				FotoURL:       in.FotoURL,
				Status:        status,
				CreatedBy:     in.CreatedBy,
			}
			records = append(records, r)
		}
	}
	return records, nil
}
