// internal/database/seeder.go
package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/greenhydro/subsidy-backend/internal/config"
	"github.com/greenhydro/subsidy-backend/internal/models"
)

// Seed creates the default subsidy pool and, when the certifier table is
// empty, a bootstrap certifier from BOOTSTRAP_CERTIFIER_WALLET. Safe to run
// on every startup.
func Seed(db *gorm.DB, cfg *config.Config) error {
	if err := seedDefaultPool(db, cfg.Subsidy.DefaultPool); err != nil {
		return err
	}
	return seedBootstrapCertifier(db, cfg.Subsidy.BootstrapCertifierWallet)
}

func seedDefaultPool(db *gorm.DB, name string) error {
	var count int64
	if err := db.Model(&models.SubsidyPool{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	log.Printf("Default subsidy pool %q not found. Seeding...", name)
	return db.Create(&models.SubsidyPool{Name: name}).Error
}

func seedBootstrapCertifier(db *gorm.DB, wallet string) error {
	if wallet == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.Certifier{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Certifiers already exist. Bootstrap seeding skipped.")
		return nil
	}

	log.Printf("No certifiers found. Seeding bootstrap certifier %s...", wallet)
	certifier := &models.Certifier{
		WalletAddress: wallet,
		Active:        true,
	}
	return db.Create(certifier).Error
}
