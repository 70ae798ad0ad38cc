package main

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"subpay_backend/internal/controller"
	"subpay_backend/internal/middleware"
	"subpay_backend/internal/model"
	"subpay_backend/internal/repository"
	"subpay_backend/internal/service"
	"subpay_backend/pkg/config"
	"subpay_backend/pkg/cron"
	"subpay_backend/pkg/database"
	"subpay_backend/pkg/payment"
	"subpay_backend/pkg/seed"
	"subpay_backend/pkg/utils/jwt"
)

func setupRoutes(app *fiber.App, subscriptions *controller.SubscriptionController) {
	api := app.Group("/api")

	subs := api.Group("/subscriptions")
	subs.Get("/plans", subscriptions.ListPlans)

	subProtected := subs.Use(middleware.AuthMiddleware())
	subProtected.Post("/checkout", subscriptions.CreateCheckout)
	subProtected.Get("/my", subscriptions.GetMySubscription)

	// Gateway notification callback
	api.Post("/webhooks/payment", subscriptions.HandleGatewayWebhook)
}

func main() {
	godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	jwt.Init(cfg.JWT.Secret)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set in .env")
	}

	database.InitDB(dbURL)
	err := database.MigrateDatabase(
		&model.SubscriptionPlan{},
		&model.Subscription{},
		&model.PaymentTransaction{},
		&model.WebhookEvent{},
	)
	if err != nil {
		log.Warn().Err(err).Msg("Migration warning")
	}
	if err := database.EnsureSubscriptionGuard(); err != nil {
		log.Fatal().Err(err).Msg("Could not install subscription guard index")
	}

	seed.SeedSubscriptionPlans(database.DB)

	gatewayLoc, err := time.LoadLocation(cfg.Gateway.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.Gateway.Timezone).Msg("Unknown gateway timezone, using UTC")
		gatewayLoc = time.UTC
	}

	catalog := repository.NewPlanRepository(database.DB)
	ledger := repository.NewLedger(database.DB)
	events := repository.NewWebhookEventRepository(database.DB)
	gateway := payment.NewMidtransClient(cfg.Gateway.BaseURL, cfg.Gateway.ServerKey)

	checkoutSvc := service.NewCheckoutService(catalog, ledger, gateway)
	webhookSvc := service.NewWebhookService(ledger, catalog, gateway, events, cfg.Gateway.CallbackToken, gatewayLoc)
	sweepSvc := service.NewSweepService(ledger)

	subscriptions := controller.NewSubscriptionController(catalog, checkoutSvc, webhookSvc, cfg.Gateway.ClientKey)

	cron.InitPendingExpiryCron(sweepSvc, cfg.Checkout.PendingTTLHours)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app, subscriptions)

	log.Info().Str("port", cfg.Server.Port).Msg("Server is running")
	log.Fatal().Err(app.Listen(":" + cfg.Server.Port)).Msg("server stopped")
}
