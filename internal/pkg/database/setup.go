package database

import (
	"log"
	"time"

	"github.com/contactdeck/contactdeck/app/models"
	"github.com/contactdeck/contactdeck/internal/pkg/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// Setup connects to MySQL with retries and migrates the schema. The returned
// handle is injected into everything that needs it; there is no package
// global.
func Setup(cfg *config.Config) (*gorm.DB, error) {
	var err error
	for i := 0; i < maxRetries; i++ {
		var db *gorm.DB
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       cfg.DSN(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{
			// Duplicate-key errors must surface as gorm.ErrDuplicatedKey
			// so linking can distinguish AlreadyLinked from other failures.
			TranslateError: true,
		})
		if err == nil {
			if migErr := db.AutoMigrate(
				&models.Organization{},
				&models.User{},
				&models.Contact{},
				&models.ContactGroup{},
				&models.BillingCustomer{},
				&models.SubscriptionRecord{},
				&models.BillingWebhookEvent{},
			); migErr != nil {
				return nil, migErr
			}
			return db, nil
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}
