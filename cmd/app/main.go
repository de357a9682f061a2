package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/HaitPets/Petconnect/cmd/fx/account_fx"
	"github.com/HaitPets/Petconnect/cmd/fx/billing_fx"
	"github.com/HaitPets/Petconnect/cmd/fx/db_fx"
	"github.com/HaitPets/Petconnect/internal/api/controllers"
	"github.com/HaitPets/Petconnect/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	app := fx.New(
		db_fx.Module,
		account_fx.Module,
		billing_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	billingController *controllers.BillingController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, accountController, billingController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	billingController *controllers.BillingController) {

	accountsGroup := r.Group("/accounts")
	accountsGroup.POST("/register", accountController.Register)
	accountsGroup.POST("/login", accountController.Login)

	subscriptionsGroup := r.Group("/subscriptions")
	subscriptionsGroup.GET("/plans", billingController.ListPlans)
	subscriptionsGroup.GET("/me", middleware.JWTAuthMiddleware(), billingController.GetMySubscription)

	paymentsGroup := r.Group("/payments")
	// Webhook deliveries are authenticated by signature, not by bearer token.
	paymentsGroup.POST("/webhooks", billingController.HandleWebhook)

	authedPayments := paymentsGroup.Group("")
	authedPayments.Use(middleware.JWTAuthMiddleware())
	authedPayments.POST("/create-checkout-session", billingController.CreateCheckoutSession)
	authedPayments.POST("/customer-portal", billingController.CustomerPortal)
}
