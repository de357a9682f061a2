package infra

import (
	"context"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/HaitPets/Petconnect/internal/services"
)

// stripeRequestTimeout bounds every outbound provider call. Retries are left to
// the caller and to the provider's own webhook redelivery.
const stripeRequestTimeout = 20 * time.Second

type stripeGateway struct {
	api *client.API
}

// NewStripeGateway builds an explicitly constructed Stripe client; no global
// SDK state is touched, so multiple gateways with different keys can coexist.
func NewStripeGateway(secretKey string) services.StripeGateway {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: stripeRequestTimeout},
		MaxNetworkRetries: stripe.Int64(0),
	})

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &stripeGateway{api: api}
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	params.Context = ctx
	return g.api.Customers.New(params)
}

func (g *stripeGateway) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	return g.api.Customers.Get(id, params)
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	return g.api.CheckoutSessions.New(params)
}

func (g *stripeGateway) CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	params.Context = ctx
	return g.api.BillingPortalSessions.New(params)
}

func (g *stripeGateway) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	return g.api.Subscriptions.Get(id, params)
}
