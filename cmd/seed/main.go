package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/infrastructure/auth"
	"github.com/pentol/backend/internal/infrastructure/config"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"github.com/pentol/backend/internal/infrastructure/persistence"
	"github.com/pentol/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedNamespace derives stable ids so reseeding updates rows in place
var seedNamespace = uuid.MustParse("6f1c7c2e-8a0b-4c55-9a4e-3f1f0d2b5e71")

func seedID(name string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(name))
}

type seedUser struct {
	email    string
	fullName string
	role     identity.Role
	divisi   string
	gang     string
}

var users = []seedUser{
	{"krani.panen@pentol.local", "Budi Santoso", identity.RoleKraniPanen, "Divisi I", "Gang A"},
	{"krani.buah@pentol.local", "Siti Aminah", identity.RoleKraniBuah, "Divisi I", ""},
	{"mandor@pentol.local", "Joko Widodo", identity.RoleMandor, "Divisi I", "Gang A"},
	{"asisten@pentol.local", "Rahmat Hidayat", identity.RoleAsisten, "Divisi I", ""},
	{"em@pentol.local", "Dewi Lestari", identity.RoleEstateManager, "", ""},
	{"gm@pentol.local", "Hendra Gunawan", identity.RoleRegionalGM, "", ""},
}

func main() {
	printTokens := flag.Bool("tokens", false, "print a development bearer token per seeded user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.App.Env == "production" {
		fmt.Fprintln(os.Stderr, "Refusing to seed a production database")
		os.Exit(1)
	}

	log, err := logger.NewFromConfig(cfg.App, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := persistence.NewDatabaseWithGormLogger(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Transaction(ctx, seedHierarchy); err != nil {
		log.Fatal("Failed to seed organization", zap.Error(err))
	}

	profiles := persistence.NewGormProfileRepository(db.DB)
	jwtService := auth.NewJWTService(cfg.JWT)
	for _, u := range users {
		p := u.profile()
		if err := profiles.Save(ctx, p); err != nil {
			log.Fatal("Failed to seed profile", zap.String("email", u.email), zap.Error(err))
		}
		log.Info("Seeded profile", zap.String("email", u.email), zap.String("role", u.role.String()))

		if *printTokens {
			token, expiresAt, err := jwtService.IssueToken(p.ID, p.Email)
			if err != nil {
				log.Fatal("Failed to issue token", zap.Error(err))
			}
			fmt.Printf("%-16s %s (expires %s)\n", u.role, token, expiresAt.Format(time.RFC3339))
		}
	}
}

func (u seedUser) profile() *identity.Profile {
	p := &identity.Profile{
		ID:       seedID("user/" + u.email),
		Email:    u.email,
		FullName: u.fullName,
		Role:     u.role,
	}
	if u.divisi != "" {
		id := seedID("divisi/" + u.divisi)
		p.DivisiID = &id
	}
	if u.gang != "" {
		id := seedID("gang/" + u.divisi + "/" + u.gang)
		p.GangID = &id
	}
	return p
}

// seedHierarchy creates two divisions, each with gangs, harvesters, bloks
// and TPH. Existing rows are left alone.
func seedHierarchy(tx *gorm.DB) error {
	now := time.Now()
	ignore := tx.Clauses(clause.OnConflict{DoNothing: true}).Session(&gorm.Session{})

	for d, divisi := range []string{"Divisi I", "Divisi II"} {
		divisiID := seedID("divisi/" + divisi)
		if err := ignore.Create(&models.DivisiModel{
			ID: divisiID, Name: divisi, EstateName: "Kebun Sei Pentol", CreatedAt: now,
		}).Error; err != nil {
			return err
		}

		for _, gang := range []string{"Gang A", "Gang B"} {
			gangID := seedID("gang/" + divisi + "/" + gang)
			if err := ignore.Create(&models.GangModel{
				ID: gangID, Name: gang, DivisiID: divisiID, CreatedAt: now,
			}).Error; err != nil {
				return err
			}
			for i := 1; i <= 5; i++ {
				code := fmt.Sprintf("P%d%c%02d", d+1, gang[len(gang)-1], i)
				if err := ignore.Create(&models.PemanenModel{
					ID:           seedID("pemanen/" + code),
					OperatorCode: code,
					Name:         fmt.Sprintf("Pemanen %s", code),
					GangID:       gangID,
					StatusAktif:  true,
					CreatedAt:    now,
				}).Error; err != nil {
					return err
				}
			}
		}

		for b := 1; b <= 3; b++ {
			blok := fmt.Sprintf("B%d%02d", d+1, b)
			blokID := seedID("blok/" + blok)
			if err := ignore.Create(&models.BlokModel{
				ID: blokID, Name: blok, DivisiID: divisiID, LuasHa: decimal.NewFromInt(int64(20 + 5*b)), CreatedAt: now,
			}).Error; err != nil {
				return err
			}
			for t := 1; t <= 4; t++ {
				nomor := fmt.Sprintf("%s-%02d", blok, t)
				if err := ignore.Create(&models.TPHModel{
					ID: seedID("tph/" + nomor), NomorTPH: nomor, BlokID: blokID, CreatedAt: now,
				}).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
