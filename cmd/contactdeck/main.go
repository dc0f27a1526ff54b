package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/contactdeck/contactdeck/app/repository"
	"github.com/contactdeck/contactdeck/internal/pkg/billing"
	"github.com/contactdeck/contactdeck/internal/pkg/cache"
	"github.com/contactdeck/contactdeck/internal/pkg/config"
	"github.com/contactdeck/contactdeck/internal/pkg/database"
	"github.com/contactdeck/contactdeck/internal/pkg/mail"
	"github.com/contactdeck/contactdeck/internal/pkg/metrics/counter"
	"github.com/contactdeck/contactdeck/internal/pkg/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := NewApplication(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	log.Fatal(app.Listen(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)))
}

// NewApplication wires the whole service from a validated config.
func NewApplication(cfg *config.Config) (*fiber.App, error) {
	db, err := database.Setup(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rdb := cache.New(cfg.CacheAddr())

	provider, err := billing.NewStripeProvider(billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		AccountID:     cfg.StripeAccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("billing provider: %w", err)
	}

	catalog := billing.NewCatalog(billing.CatalogOverrides{
		StandardPriceRef: cfg.PriceRefStandard,
		ProPriceRef:      cfg.PriceRefPro,
	})

	repos := repository.NewFactory(db)

	billingSvc := billing.NewService(catalog, provider, billing.NewRepository(db), billing.ServiceOptions{
		BaseURL:  cfg.AppBaseURL,
		Guard:    billing.NewRedisEventGuard(rdb),
		Notifier: mail.New(cfg),
		Counter:  counter.New(rdb),
		Plans:    repos.Organizations(),
	})

	app := fiber.New(fiber.Config{
		AppName:   "ContactDeck",
		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(recover.New(), logger.New())

	if cfg.IsDev() {
		app.Get("/metrics", monitor.New())
	}

	router.InstallRouter(app, router.Deps{
		DB:      db,
		Repos:   repos,
		Billing: billingSvc,
	})

	return app, nil
}
