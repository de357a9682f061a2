package billing_fx

import (
	"log"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/HaitPets/Petconnect/internal/api/controllers"
	"github.com/HaitPets/Petconnect/internal/infra"
	"github.com/HaitPets/Petconnect/internal/repositories"
	"github.com/HaitPets/Petconnect/internal/services"
)

var Module = fx.Provide(
	provideStripeConfig,
	provideGateway,
	provideSubscriptionRepo,
	provideTransactionRepo,
	provideWebhookEventRepo,
	provideBillingService,
	provideWebhookService,
	providePlanService,
	controllers.NewBillingController,
)

func provideStripeConfig() services.StripeConfig {
	cfg := services.StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		AppBaseURL:    os.Getenv("APP_BASE_URL"),
		Prices: services.PriceIDs{
			PremiumMonthly: envOrDefault("STRIPE_PREMIUM_MONTHLY_PRICE_ID", "price_premium_monthly"),
			PremiumYearly:  envOrDefault("STRIPE_PREMIUM_YEARLY_PRICE_ID", "price_premium_yearly"),
			BreederMonthly: envOrDefault("STRIPE_BREEDER_MONTHLY_PRICE_ID", "price_breeder_monthly"),
			BreederYearly:  envOrDefault("STRIPE_BREEDER_YEARLY_PRICE_ID", "price_breeder_yearly"),
		},
	}
	cfg.PriceTiers = cfg.Prices.TierTable()
	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func provideGateway(cfg services.StripeConfig) services.StripeGateway {
	return infra.NewStripeGateway(cfg.SecretKey)
}

func provideSubscriptionRepo(db *gorm.DB) repositories.SubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func provideTransactionRepo(db *gorm.DB) repositories.TransactionRepository {
	return repositories.NewTransactionRepository(db)
}

func provideWebhookEventRepo(db *gorm.DB) repositories.WebhookEventRepository {
	return repositories.NewWebhookEventRepository(db)
}

func provideBillingService(
	gateway services.StripeGateway,
	accountRepo repositories.AccountRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	cfg services.StripeConfig,
) services.BillingService {
	svc, err := services.NewBillingService(gateway, accountRepo, subscriptionRepo, cfg)
	if err != nil {
		log.Fatalf("billing service configuration invalid: %v", err)
	}
	return svc
}

func provideWebhookService(
	gateway services.StripeGateway,
	accountRepo repositories.AccountRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	transactionRepo repositories.TransactionRepository,
	eventRepo repositories.WebhookEventRepository,
	cfg services.StripeConfig,
) services.WebhookService {
	svc, err := services.NewWebhookService(gateway, accountRepo, subscriptionRepo, transactionRepo, eventRepo, cfg)
	if err != nil {
		log.Fatalf("webhook service configuration invalid: %v", err)
	}
	return svc
}

func providePlanService(cfg services.StripeConfig) services.PlanService {
	return services.NewPlanService(cfg)
}
