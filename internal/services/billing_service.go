package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
	"github.com/HaitPets/Petconnect/internal/models/request_models"
	"github.com/HaitPets/Petconnect/internal/models/response_models"
	"github.com/HaitPets/Petconnect/internal/repositories"
	"github.com/HaitPets/Petconnect/pkg/utils"
)

type BillingService interface {
	CreateCheckoutSession(ctx context.Context, accountID uuid.UUID, request request_models.CreateCheckoutSessionRequest) (*response_models.CheckoutSessionResponse, error)
	CreatePortalSession(ctx context.Context, accountID uuid.UUID, returnURL string) (*response_models.CustomerPortalResponse, error)
	GetSubscriptionStatus(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionStatusResponse, error)
}

type billingService struct {
	gateway       StripeGateway
	accounts      repositories.AccountRepository
	subscriptions repositories.SubscriptionRepository
	cfg           StripeConfig
}

func NewBillingService(
	gateway StripeGateway,
	accounts repositories.AccountRepository,
	subscriptions repositories.SubscriptionRepository,
	cfg StripeConfig,
) (BillingService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &billingService{
		gateway:       gateway,
		accounts:      accounts,
		subscriptions: subscriptions,
		cfg:           cfg,
	}, nil
}

func (b *billingService) CreateCheckoutSession(ctx context.Context, accountID uuid.UUID, request request_models.CreateCheckoutSessionRequest) (*response_models.CheckoutSessionResponse, error) {
	account, err := b.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	// Mode-specific validation runs before any provider call.
	switch request.Mode {
	case "subscription":
		if request.PriceID == "" {
			return nil, fmt.Errorf("%w: price identifier required", utils.ErrValidation)
		}
	case "payment":
		if request.Amount <= 0 || request.Description == "" {
			return nil, fmt.Errorf("%w: amount and description required", utils.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported mode %q", utils.ErrValidation, request.Mode)
	}

	customerID, err := b.ensureCustomer(ctx, account)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(request.Mode),
		SuccessURL: stripe.String(request.SuccessURL),
		CancelURL:  stripe.String(request.CancelURL),
	}

	// Caller metadata first, account tag last so the caller cannot override it.
	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}
	params.AddMetadata("userId", account.ID.String())

	if request.Mode == "subscription" {
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(request.PriceID),
			Quantity: stripe.Int64(1),
		}}
		// Subscription webhook events carry no request context; tag them so the
		// projector can resolve the account later.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"userId": account.ID.String(),
				"role":   string(account.Role),
			},
		}
	} else {
		paymentMeta := make(map[string]string, len(request.Metadata)+1)
		for key, value := range request.Metadata {
			paymentMeta[key] = value
		}
		paymentMeta["userId"] = account.ID.String()

		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String("usd"),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(request.Description),
					Metadata: request.Metadata,
				},
				UnitAmount: stripe.Int64(utils.ToMinorUnits(request.Amount)),
			},
			Quantity: stripe.Int64(1),
		}}
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: paymentMeta,
		}
	}

	sess, err := b.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		log.Printf("stripe checkout session creation failed for account %s: %v", account.ID, err)
		return nil, utils.ErrCheckoutCreation
	}

	return &response_models.CheckoutSessionResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

func (b *billingService) CreatePortalSession(ctx context.Context, accountID uuid.UUID, returnURL string) (*response_models.CustomerPortalResponse, error) {
	account, err := b.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	if account.StripeCustomerID == nil || *account.StripeCustomerID == "" {
		return nil, utils.ErrNoBillingCustomer
	}

	if returnURL == "" {
		returnURL = b.cfg.PortalReturnURL()
	}

	sess, err := b.gateway.CreatePortalSession(ctx, &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*account.StripeCustomerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		log.Printf("stripe portal session creation failed for account %s: %v", account.ID, err)
		return nil, utils.ErrCheckoutCreation
	}

	return &response_models.CustomerPortalResponse{URL: sess.URL}, nil
}

func (b *billingService) GetSubscriptionStatus(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionStatusResponse, error) {
	account, err := b.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	response := &response_models.SubscriptionStatusResponse{
		AccountID: account.ID,
		Tier:      string(account.SubscriptionTier),
	}

	sub, err := b.subscriptions.FindLatestByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if sub != nil {
		response.Status = sub.Status
		response.CurrentPeriodStart = sub.CurrentPeriodStart
		response.CurrentPeriodEnd = sub.CurrentPeriodEnd
		response.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
	}

	return response, nil
}

// ensureCustomer resolves the account's billing customer, creating one on first
// use. Warm path: zero persistence writes. Cold path: one remote create plus
// one compare-and-swap write of the returned id.
func (b *billingService) ensureCustomer(ctx context.Context, account *db_models.Account) (string, error) {
	if account.StripeCustomerID != nil && *account.StripeCustomerID != "" {
		cust, err := b.gateway.GetCustomer(ctx, *account.StripeCustomerID)
		if err != nil {
			log.Printf("stripe customer %s lookup failed for account %s: %v", *account.StripeCustomerID, account.ID, err)
			return "", utils.ErrUpstreamLookup
		}
		// Stripe answers 200 with deleted=true for removed customers; a checkout
		// against that id would fail downstream.
		if cust.Deleted {
			log.Printf("stripe customer %s for account %s was deleted remotely", cust.ID, account.ID)
			return "", utils.ErrUpstreamLookup
		}
		return cust.ID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(account.Email),
		Name:  stripe.String(account.Name),
	}
	params.AddMetadata("userId", account.ID.String())
	params.AddMetadata("role", string(account.Role))

	cust, err := b.gateway.CreateCustomer(ctx, params)
	if err != nil {
		log.Printf("stripe customer creation failed for account %s: %v", account.ID, err)
		return "", utils.ErrUpstreamLookup
	}

	winner, err := b.accounts.ClaimStripeCustomerID(ctx, account.ID, cust.ID)
	if err != nil {
		return "", utils.ErrDatabaseError
	}
	if winner != cust.ID {
		// Lost a provisioning race; the extra remote customer stays unused.
		log.Printf("account %s already linked to customer %s, discarding %s", account.ID, winner, cust.ID)
	}
	return winner, nil
}
