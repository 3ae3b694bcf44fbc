package persistence

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory SQLite database with the full schema.
// A single connection serializes concurrent callers the way row locks would.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.DivisiModel{},
		&models.GangModel{},
		&models.BlokModel{},
		&models.PemanenModel{},
		&models.TPHModel{},
		&models.ProfileModel{},
		&models.HarvestRecordModel{},
		&models.SPBModel{},
		&models.SPBSequenceModel{},
	))
	return db
}

// estateFixture is a minimal hierarchy: two divisions, one gang, block and
// harvester each in the first, plus a clerk profile.
type estateFixture struct {
	DivisiID  uuid.UUID
	Divisi2ID uuid.UUID
	GangID    uuid.UUID
	BlokID    uuid.UUID
	Blok2ID   uuid.UUID
	PemanenID uuid.UUID
	TPHID     uuid.UUID
	KraniID   uuid.UUID
}

func seedEstate(t *testing.T, db *gorm.DB) estateFixture {
	t.Helper()
	now := time.Now()
	f := estateFixture{
		DivisiID:  uuid.New(),
		Divisi2ID: uuid.New(),
		GangID:    uuid.New(),
		BlokID:    uuid.New(),
		Blok2ID:   uuid.New(),
		PemanenID: uuid.New(),
		TPHID:     uuid.New(),
		KraniID:   uuid.New(),
	}
	require.NoError(t, db.Create(&[]models.DivisiModel{
		{ID: f.DivisiID, Name: "Divisi 1", EstateName: "Estate Sawit", CreatedAt: now},
		{ID: f.Divisi2ID, Name: "Divisi 2", EstateName: "Estate Sawit", CreatedAt: now},
	}).Error)
	require.NoError(t, db.Create(&models.GangModel{ID: f.GangID, Name: "Gang A", DivisiID: f.DivisiID, CreatedAt: now}).Error)
	require.NoError(t, db.Create(&[]models.BlokModel{
		{ID: f.BlokID, Name: "A01", DivisiID: f.DivisiID, LuasHa: decimal.NewFromInt(10), CreatedAt: now},
		{ID: f.Blok2ID, Name: "B01", DivisiID: f.Divisi2ID, LuasHa: decimal.RequireFromString("12.5"), CreatedAt: now},
	}).Error)
	require.NoError(t, db.Create(&models.PemanenModel{
		ID: f.PemanenID, OperatorCode: "OP-001", Name: "Budi", GangID: f.GangID, StatusAktif: true, CreatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.TPHModel{ID: f.TPHID, NomorTPH: "TPH-01", BlokID: f.BlokID, CreatedAt: now}).Error)
	require.NoError(t, db.Create(&models.ProfileModel{
		ID: f.KraniID, Email: "krani@pentol.test", FullName: "Sari Krani", Role: "krani_panen",
		DivisiID: &f.DivisiID, CreatedAt: now, UpdatedAt: now,
	}).Error)
	return f
}

// newTestRecord builds a record in division 1 on day with the given status
func newTestRecord(f estateFixture, day time.Time, jjg int, bjr string, status harvest.Status) *harvest.Record {
	now := time.Now().UTC()
	b := decimal.RequireFromString(bjr)
	return &harvest.Record{
		BaseEntity:    shared.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Tanggal:       day,
		DivisiID:      f.DivisiID,
		BlokID:        f.BlokID,
		PemanenID:     f.PemanenID,
		TPHID:         &f.TPHID,
		Rotasi:        1,
		NomorPanen:    "P-01",
		JumlahJJG:     jjg,
		BJR:           b,
		HasilPanenBJD: harvest.TotalWeight(jjg, b),
		Brondolan:     decimal.NewFromInt(2),
		Status:        status,
		CreatedBy:     f.KraniID,
	}
}

func insertRecords(t *testing.T, db *gorm.DB, records ...*harvest.Record) {
	t.Helper()
	require.NoError(t, NewGormHarvestRepository(db).CreateBatch(t.Context(), records))
}
