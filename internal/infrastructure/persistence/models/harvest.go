package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/shopspring/decimal"
)

// HarvestRecordModel is the persistence model for harvest_records
type HarvestRecordModel struct {
	BaseModel
	Tanggal          time.Time       `gorm:"type:date;not null;index:idx_harvest_records_tanggal_divisi,priority:1"`
	DivisiID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_harvest_records_tanggal_divisi,priority:2"`
	BlokID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	PemanenID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	TPHID            *uuid.UUID      `gorm:"column:tph_id;type:uuid"`
	Rotasi           int             `gorm:"not null;default:1"`
	NomorPanen       string          `gorm:"type:varchar(50);not null;default:''"`
	JumlahJJG        int             `gorm:"column:jumlah_jjg;not null;default:0"`
	BJR              decimal.Decimal `gorm:"column:bjr;type:decimal(10,2);not null;default:0"`
	HasilPanenBJD    decimal.Decimal `gorm:"column:hasil_panen_bjd;type:decimal(12,2);not null;default:0"`
	Brondolan        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	BuahMasak        int             `gorm:"not null;default:0"`
	BuahMentah       int             `gorm:"not null;default:0"`
	BuahMengkal      int             `gorm:"not null;default:0"`
	Overripe         int             `gorm:"not null;default:0"`
	Abnormal         int             `gorm:"not null;default:0"`
	BuahBusuk        int             `gorm:"not null;default:0"`
	TangkaiPanjang   int             `gorm:"not null;default:0"`
	Jangkos          int             `gorm:"not null;default:0"`
	Keterangan       string          `gorm:"type:text;not null;default:''"`
	KeteranganReview string          `gorm:"type:text;not null;default:''"`
	FotoURL          *string         `gorm:"column:foto_url;type:varchar(500)"`
	Status           string          `gorm:"type:varchar(20);not null;default:'draft';index"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid;not null"`
	ApprovedBy       *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt       *time.Time
	SpbID            *uuid.UUID `gorm:"column:spb_id;type:uuid;index"`
}

// TableName returns the table name for GORM
func (HarvestRecordModel) TableName() string {
	return "harvest_records"
}

// ToDomain converts the persistence model to a domain Record
func (m *HarvestRecordModel) ToDomain() *harvest.Record {
	return &harvest.Record{
		BaseEntity:    m.BaseModel.ToDomain(),
		Tanggal:       CalendarDate(m.Tanggal),
		DivisiID:      m.DivisiID,
		BlokID:        m.BlokID,
		PemanenID:     m.PemanenID,
		TPHID:         m.TPHID,
		Rotasi:        m.Rotasi,
		NomorPanen:    m.NomorPanen,
		JumlahJJG:     m.JumlahJJG,
		BJR:           m.BJR,
		HasilPanenBJD: m.HasilPanenBJD,
		Brondolan:     m.Brondolan,
		Quality: harvest.Quality{
			BuahMasak:      m.BuahMasak,
			BuahMentah:     m.BuahMentah,
			BuahMengkal:    m.BuahMengkal,
			Overripe:       m.Overripe,
			Abnormal:       m.Abnormal,
			BuahBusuk:      m.BuahBusuk,
			TangkaiPanjang: m.TangkaiPanjang,
			Jangkos:        m.Jangkos,
		},
		Keterangan:       m.Keterangan,
		KeteranganReview: m.KeteranganReview,
		FotoURL:          m.FotoURL,
		Status:           harvest.Status(m.Status),
		CreatedBy:        m.CreatedBy,
		ApprovedBy:       m.ApprovedBy,
		ApprovedAt:       m.ApprovedAt,
		SpbID:            m.SpbID,
	}
}

// FromDomain populates the persistence model from a domain Record
func (m *HarvestRecordModel) FromDomain(r *harvest.Record) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Tanggal = CalendarDate(r.Tanggal)
	m.DivisiID = r.DivisiID
	m.BlokID = r.BlokID
	m.PemanenID = r.PemanenID
	m.TPHID = r.TPHID
	m.Rotasi = r.Rotasi
	m.NomorPanen = r.NomorPanen
	m.JumlahJJG = r.JumlahJJG
	m.BJR = r.BJR
	m.HasilPanenBJD = r.HasilPanenBJD
	m.Brondolan = r.Brondolan
	m.BuahMasak = r.Quality.BuahMasak
	m.BuahMentah = r.Quality.BuahMentah
	m.BuahMengkal = r.Quality.BuahMengkal
	m.Overripe = r.Quality.Overripe
	m.Abnormal = r.Quality.Abnormal
	m.BuahBusuk = r.Quality.BuahBusuk
	m.TangkaiPanjang = r.Quality.TangkaiPanjang
	m.Jangkos = r.Quality.Jangkos
	m.Keterangan = r.Keterangan
	m.KeteranganReview = r.KeteranganReview
	m.FotoURL = r.FotoURL
	m.Status = r.Status.String()
	m.CreatedBy = r.CreatedBy
	m.ApprovedBy = r.ApprovedBy
	m.ApprovedAt = r.ApprovedAt
	m.SpbID = r.SpbID
}

// HarvestRecordModelFromDomain creates a new persistence model from a domain Record
func HarvestRecordModelFromDomain(r *harvest.Record) *HarvestRecordModel {
	m := &HarvestRecordModel{}
	m.FromDomain(r)
	return m
}

