package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
	"github.com/HaitPets/Petconnect/internal/models/request_models"
	"github.com/HaitPets/Petconnect/pkg/utils"
)

func newBillingFixture(t *testing.T) (*billingService, *fakeAccountRepo, *fakeSubscriptionRepo, *fakeGateway) {
	t.Helper()
	accounts := newFakeAccountRepo()
	subs := newFakeSubscriptionRepo(accounts)
	gateway := newFakeGateway()

	svc, err := NewBillingService(gateway, accounts, subs, testConfig())
	require.NoError(t, err)
	return svc.(*billingService), accounts, subs, gateway
}

func subscriptionCheckoutRequest() request_models.CreateCheckoutSessionRequest {
	return request_models.CreateCheckoutSessionRequest{
		Mode:       "subscription",
		PriceID:    "price_premium_monthly",
		SuccessURL: "https://mopets.test/success",
		CancelURL:  "https://mopets.test/cancel",
	}
}

func TestCreateCheckoutSessionProvisionsCustomerOnFirstUse(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	account := accounts.add(&db_models.Account{
		Name:  "Mai",
		Email: "mai@example.com",
		Role:  db_models.RolePetOwner,
	})

	resp, err := svc.CreateCheckoutSession(context.Background(), account.ID, subscriptionCheckoutRequest())
	require.NoError(t, err)

	assert.Equal(t, "cs_test", resp.SessionID)
	assert.Equal(t, 1, gateway.createCustomerCalls)
	assert.Equal(t, 0, gateway.getCustomerCalls)
	assert.Equal(t, 1, accounts.claimCalls)
	require.NotNil(t, account.StripeCustomerID)
	assert.Equal(t, "cus_test", *account.StripeCustomerID)

	require.NotNil(t, gateway.lastCustomerParams)
	assert.Equal(t, account.ID.String(), gateway.lastCustomerParams.Metadata["userId"])
	assert.Equal(t, "pet_owner", gateway.lastCustomerParams.Metadata["role"])
}

func TestCreateCheckoutSessionReusesExistingCustomer(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	existing := "cus_existing"
	account := accounts.add(&db_models.Account{
		Email:            "mai@example.com",
		StripeCustomerID: &existing,
	})

	_, err := svc.CreateCheckoutSession(context.Background(), account.ID, subscriptionCheckoutRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, gateway.createCustomerCalls)
	assert.Equal(t, 1, gateway.getCustomerCalls)
	assert.Equal(t, 0, accounts.claimCalls)
	assert.Equal(t, "cus_existing", *gateway.lastCheckoutParams.Customer)
}

func TestCreateCheckoutSessionRejectsDeletedCustomer(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	existing := "cus_deleted"
	account := accounts.add(&db_models.Account{
		Email:            "mai@example.com",
		StripeCustomerID: &existing,
	})
	gateway.customerDeleted = true

	_, err := svc.CreateCheckoutSession(context.Background(), account.ID, subscriptionCheckoutRequest())
	require.ErrorIs(t, err, utils.ErrUpstreamLookup)

	assert.Equal(t, 1, gateway.getCustomerCalls)
	assert.Equal(t, 0, gateway.checkoutCalls)
}

func TestCreateCheckoutSessionValidatesBeforeProviderCalls(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	account := accounts.add(&db_models.Account{Email: "mai@example.com"})

	req := subscriptionCheckoutRequest()
	req.PriceID = ""
	_, err := svc.CreateCheckoutSession(context.Background(), account.ID, req)
	require.ErrorIs(t, err, utils.ErrValidation)

	payment := request_models.CreateCheckoutSessionRequest{
		Mode:       "payment",
		Amount:     0,
		SuccessURL: "https://mopets.test/success",
		CancelURL:  "https://mopets.test/cancel",
	}
	_, err = svc.CreateCheckoutSession(context.Background(), account.ID, payment)
	require.ErrorIs(t, err, utils.ErrValidation)

	assert.Equal(t, 0, gateway.createCustomerCalls)
	assert.Equal(t, 0, gateway.checkoutCalls)
}

func TestCreateCheckoutSessionUnknownAccount(t *testing.T) {
	svc, _, _, gateway := newBillingFixture(t)

	_, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), subscriptionCheckoutRequest())
	require.ErrorIs(t, err, utils.ErrAccountNotFound)
	assert.Equal(t, 0, gateway.checkoutCalls)
}

func TestCreateCheckoutSessionPaymentModeConvertsAmount(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	account := accounts.add(&db_models.Account{Email: "mai@example.com"})

	req := request_models.CreateCheckoutSessionRequest{
		Mode:        "payment",
		Amount:      19.99,
		Description: "Golden retriever puppy deposit",
		SuccessURL:  "https://mopets.test/success",
		CancelURL:   "https://mopets.test/cancel",
	}
	_, err := svc.CreateCheckoutSession(context.Background(), account.ID, req)
	require.NoError(t, err)

	params := gateway.lastCheckoutParams
	require.Len(t, params.LineItems, 1)
	require.NotNil(t, params.LineItems[0].PriceData)
	assert.Equal(t, int64(1999), *params.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "usd", *params.LineItems[0].PriceData.Currency)
	assert.Equal(t, "Golden retriever puppy deposit", *params.LineItems[0].PriceData.ProductData.Name)

	require.NotNil(t, params.PaymentIntentData)
	assert.Equal(t, account.ID.String(), params.PaymentIntentData.Metadata["userId"])
}

func TestCreateCheckoutSessionCallerCannotOverrideAccountTag(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	account := accounts.add(&db_models.Account{Email: "mai@example.com", Role: db_models.RoleBreeder})

	req := subscriptionCheckoutRequest()
	req.Metadata = map[string]string{
		"userId":   "spoofed-id",
		"campaign": "spring",
	}
	_, err := svc.CreateCheckoutSession(context.Background(), account.ID, req)
	require.NoError(t, err)

	params := gateway.lastCheckoutParams
	assert.Equal(t, account.ID.String(), params.Metadata["userId"])
	assert.Equal(t, "spring", params.Metadata["campaign"])

	require.NotNil(t, params.SubscriptionData)
	assert.Equal(t, account.ID.String(), params.SubscriptionData.Metadata["userId"])
	assert.Equal(t, "breeder", params.SubscriptionData.Metadata["role"])
}

func TestCreateCheckoutSessionProviderFailure(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	account := accounts.add(&db_models.Account{Email: "mai@example.com"})
	gateway.checkoutErr = errors.New("stripe is down")

	_, err := svc.CreateCheckoutSession(context.Background(), account.ID, subscriptionCheckoutRequest())
	require.ErrorIs(t, err, utils.ErrCheckoutCreation)
}

func TestCreatePortalSessionRequiresBillingCustomer(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	account := accounts.add(&db_models.Account{Email: "mai@example.com"})

	_, err := svc.CreatePortalSession(context.Background(), account.ID, "")
	require.ErrorIs(t, err, utils.ErrNoBillingCustomer)
	assert.Equal(t, 0, gateway.portalCalls)
}

func TestCreatePortalSessionDefaultsReturnURL(t *testing.T) {
	svc, accounts, _, gateway := newBillingFixture(t)
	customerID := "cus_existing"
	account := accounts.add(&db_models.Account{Email: "mai@example.com", StripeCustomerID: &customerID})

	resp, err := svc.CreatePortalSession(context.Background(), account.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "https://billing.stripe.com/p/session", resp.URL)
	assert.Equal(t, "https://mopets.test/profile", *gateway.lastPortalParams.ReturnURL)
	assert.Equal(t, "cus_existing", *gateway.lastPortalParams.Customer)

	_, err = svc.CreatePortalSession(context.Background(), account.ID, "https://mopets.test/settings")
	require.NoError(t, err)
	assert.Equal(t, "https://mopets.test/settings", *gateway.lastPortalParams.ReturnURL)
}

func TestGetSubscriptionStatusMergesAccountAndSubscription(t *testing.T) {
	svc, accounts, subs, _ := newBillingFixture(t)
	account := accounts.add(&db_models.Account{
		Email:            "mai@example.com",
		SubscriptionTier: db_models.TierPremium,
	})
	require.NoError(t, subs.UpsertWithAccountTier(context.Background(), &db_models.Subscription{
		AccountID:            account.ID,
		StripeSubscriptionID: "sub_1",
		Tier:                 db_models.TierPremium,
		Status:               "active",
		CurrentPeriodStart:   1700000000,
		CurrentPeriodEnd:     1702592000,
	}))

	status, err := svc.GetSubscriptionStatus(context.Background(), account.ID)
	require.NoError(t, err)

	assert.Equal(t, "PREMIUM", status.Tier)
	assert.Equal(t, "active", status.Status)
	assert.Equal(t, int64(1700000000), status.CurrentPeriodStart)
	assert.Equal(t, int64(1702592000), status.CurrentPeriodEnd)
	assert.False(t, status.CancelAtPeriodEnd)
}

func TestGetSubscriptionStatusWithoutSubscription(t *testing.T) {
	svc, accounts, _, _ := newBillingFixture(t)
	account := accounts.add(&db_models.Account{Email: "mai@example.com"})
	account.SubscriptionTier = db_models.TierFree

	status, err := svc.GetSubscriptionStatus(context.Background(), account.ID)
	require.NoError(t, err)

	assert.Equal(t, "FREE", status.Tier)
	assert.Empty(t, status.Status)
}
