package seeders

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/heartletter/letter_api/services"
)

type Credentials struct {
	Nickname string
	Password string
}

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	storage *services.StorageService
}

func NewMainSeeder(storage *services.StorageService) *MainSeeder {
	return &MainSeeder{storage: storage}
}

// SeedAll runs all seeders in order
func (s *MainSeeder) SeedAll(ctx context.Context, admin, demo Credentials) error {
	log.Info("Starting seeding...")

	if _, err := NewAdminSeeder(s.storage).SeedAdmin(ctx, admin.Nickname, admin.Password); err != nil {
		log.WithError(err).Error("Admin seeding failed")
		return err
	}

	if err := NewDemoSeeder(s.storage).SeedDemo(ctx, demo.Nickname, demo.Password); err != nil {
		log.WithError(err).Error("Demo seeding failed")
		return err
	}

	log.Info("Seeding completed successfully")
	return nil
}
