package harvest

import (
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InputRequest is the harvest input form. Measurements apply to every
// (block, harvester) pair.
type InputRequest struct {
	Tanggal        string          `json:"tanggal"`
	BlokIDs        []uuid.UUID     `json:"blok_ids" binding:"required,min=1"`
	PemanenIDs     []uuid.UUID     `json:"pemanen_ids" binding:"required,min=1"`
	TPHID          *uuid.UUID      `json:"tph_id"`
	Rotasi         int             `json:"rotasi" binding:"required,gt=0"`
	NomorPanen     string          `json:"nomor_panen" binding:"max=50"`
	JumlahJJG      int             `json:"jumlah_jjg" binding:"gte=0"`
	BJR            decimal.Decimal `json:"bjr"`
	Brondolan      decimal.Decimal `json:"brondolan"`
	BuahMasak      int             `json:"buah_masak" binding:"gte=0"`
	BuahMentah     int             `json:"buah_mentah" binding:"gte=0"`
	BuahMengkal    int             `json:"buah_mengkal" binding:"gte=0"`
	Overripe       int             `json:"overripe" binding:"gte=0"`
	Abnormal       int             `json:"abnormal" binding:"gte=0"`
	BuahBusuk      int             `json:"buah_busuk" binding:"gte=0"`
	TangkaiPanjang int             `json:"tangkai_panjang" binding:"gte=0"`
	Jangkos        int             `json:"jangkos" binding:"gte=0"`
	Keterangan     string          `json:"keterangan" binding:"max=500"`
	FotoURL        *string         `json:"foto_url"`
	Submit         bool            `json:"submit"`
}

func (r InputRequest) quality() harvest.Quality {
	return harvest.Quality{
		BuahMasak:      r.BuahMasak,
		BuahMentah:     r.BuahMentah,
		BuahMengkal:    r.BuahMengkal,
		Overripe:       r.Overripe,
		Abnormal:       r.Abnormal,
		BuahBusuk:      r.BuahBusuk,
		TangkaiPanjang: r.TangkaiPanjang,
		Jangkos:        r.Jangkos,
	}
}

// InputResult lists the records created by one submission
type InputResult struct {
	Count   int              `json:"count"`
	Records []RecordResponse `json:"records"`
}

// RecordResponse is a harvest record as returned by the API
type RecordResponse struct {
	ID               uuid.UUID       `json:"id"`
	Tanggal          string          `json:"tanggal"`
	DivisiID         uuid.UUID       `json:"divisi_id"`
	BlokID           uuid.UUID       `json:"blok_id"`
	PemanenID        uuid.UUID       `json:"pemanen_id"`
	TPHID            *uuid.UUID      `json:"tph_id,omitempty"`
	Rotasi           int             `json:"rotasi"`
	NomorPanen       string          `json:"nomor_panen"`
	JumlahJJG        int             `json:"jumlah_jjg"`
	BJR              decimal.Decimal `json:"bjr"`
	HasilPanenBJD    decimal.Decimal `json:"hasil_panen_bjd"`
	Brondolan        decimal.Decimal `json:"brondolan"`
	BuahMasak        int             `json:"buah_masak"`
	BuahMentah       int             `json:"buah_mentah"`
	BuahMengkal      int             `json:"buah_mengkal"`
	Overripe         int             `json:"overripe"`
	Abnormal         int             `json:"abnormal"`
	BuahBusuk        int             `json:"buah_busuk"`
	TangkaiPanjang   int             `json:"tangkai_panjang"`
	Jangkos          int             `json:"jangkos"`
	Keterangan       string          `json:"keterangan"`
	KeteranganReview string          `json:"keterangan_review,omitempty"`
	FotoURL          *string         `json:"foto_url,omitempty"`
	Status           string          `json:"status"`
	CreatedBy        uuid.UUID       `json:"created_by"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	SpbID            *uuid.UUID      `json:"spb_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToRecordResponse converts a domain record to its response form
func ToRecordResponse(r *harvest.Record) RecordResponse {
	return RecordResponse{
		ID:               r.ID,
		Tanggal:          r.Tanggal.Format(shared.CalendarLayout),
		DivisiID:         r.DivisiID,
		BlokID:           r.BlokID,
		PemanenID:        r.PemanenID,
		TPHID:            r.TPHID,
		Rotasi:           r.Rotasi,
		NomorPanen:       r.NomorPanen,
		JumlahJJG:        r.JumlahJJG,
		BJR:              r.BJR,
		HasilPanenBJD:    r.HasilPanenBJD,
		Brondolan:        r.Brondolan,
		BuahMasak:        r.Quality.BuahMasak,
		BuahMentah:       r.Quality.BuahMentah,
		BuahMengkal:      r.Quality.BuahMengkal,
		Overripe:         r.Quality.Overripe,
		Abnormal:         r.Quality.Abnormal,
		BuahBusuk:        r.Quality.BuahBusuk,
		TangkaiPanjang:   r.Quality.TangkaiPanjang,
		Jangkos:          r.Quality.Jangkos,
		Keterangan:       r.Keterangan,
		KeteranganReview: r.KeteranganReview,
		FotoURL:          r.FotoURL,
		Status:           r.Status.String(),
		CreatedBy:        r.CreatedBy,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		SpbID:            r.SpbID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToRecordResponses converts a slice of domain records
func ToRecordResponses(records []harvest.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i := range records {
		out[i] = ToRecordResponse(&records[i])
	}
	return out
}

// TransitionResult is the outcome of a single status change
type TransitionResult struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// BulkRequest names the records of a bulk approve or reject
type BulkRequest struct {
	IDs     []uuid.UUID `json:"ids" binding:"required,min=1"`
	Reason  string      `json:"reason" binding:"max=500"`
	Confirm bool        `json:"confirm"`
}

// BulkOutcome is the per-record result of a bulk transition
type BulkOutcome struct {
	ID      uuid.UUID      `json:"id"`
	OK      bool           `json:"ok"`
	Status  string         `json:"status,omitempty"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// BulkResult aggregates bulk outcomes
type BulkResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Outcomes  []BulkOutcome `json:"outcomes"`
}

// PhotoResult is a stored harvest photo
type PhotoResult struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}
