package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
)

type fakeAccountRepo struct {
	accounts   map[uuid.UUID]*db_models.Account
	claimCalls int
	findErr    error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*db_models.Account)}
}

func (f *fakeAccountRepo) add(account *db_models.Account) *db_models.Account {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	f.accounts[account.ID] = account
	return account
}

func (f *fakeAccountRepo) Insert(_ context.Context, account *db_models.Account) error {
	f.add(account)
	return nil
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*db_models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.accounts[id], nil
}

func (f *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*db_models.Account, error) {
	for _, account := range f.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) ClaimStripeCustomerID(_ context.Context, id uuid.UUID, customerID string) (string, error) {
	f.claimCalls++
	account, ok := f.accounts[id]
	if !ok {
		return "", errors.New("account missing")
	}
	if account.StripeCustomerID == nil || *account.StripeCustomerID == "" {
		account.StripeCustomerID = &customerID
		return customerID, nil
	}
	return *account.StripeCustomerID, nil
}

type fakeSubscriptionRepo struct {
	subs             map[string]*db_models.Subscription
	accounts         *fakeAccountRepo
	upsertCalls      int
	markPastDueCalls int
}

func newFakeSubscriptionRepo(accounts *fakeAccountRepo) *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		subs:     make(map[string]*db_models.Subscription),
		accounts: accounts,
	}
}

func (f *fakeSubscriptionRepo) FindByStripeID(_ context.Context, stripeSubscriptionID string) (*db_models.Subscription, error) {
	return f.subs[stripeSubscriptionID], nil
}

func (f *fakeSubscriptionRepo) FindLatestByAccount(_ context.Context, accountID uuid.UUID) (*db_models.Subscription, error) {
	var latest *db_models.Subscription
	for _, sub := range f.subs {
		if sub.AccountID != accountID {
			continue
		}
		if latest == nil || sub.UpdatedAt > latest.UpdatedAt {
			latest = sub
		}
	}
	return latest, nil
}

func (f *fakeSubscriptionRepo) UpsertWithAccountTier(_ context.Context, sub *db_models.Subscription) error {
	f.upsertCalls++
	copied := *sub
	f.subs[sub.StripeSubscriptionID] = &copied
	if account, ok := f.accounts.accounts[sub.AccountID]; ok {
		account.SubscriptionTier = sub.Tier
		if sub.ProviderCustomerID != "" {
			id := sub.ProviderCustomerID
			account.StripeCustomerID = &id
		}
	}
	return nil
}

func (f *fakeSubscriptionRepo) MarkPastDue(_ context.Context, stripeSubscriptionID string) error {
	f.markPastDueCalls++
	if sub, ok := f.subs[stripeSubscriptionID]; ok {
		sub.Status = string(db_models.SubStatusPastDue)
	}
	return nil
}

type fakeTransactionRepo struct {
	txns        map[string]*db_models.Transaction
	upsertCalls int
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txns: make(map[string]*db_models.Transaction)}
}

func (f *fakeTransactionRepo) FindByProviderTxnID(_ context.Context, providerTxnID string) (*db_models.Transaction, error) {
	return f.txns[providerTxnID], nil
}

func (f *fakeTransactionRepo) UpsertByProviderTxnID(_ context.Context, txn *db_models.Transaction) error {
	f.upsertCalls++
	copied := *txn
	f.txns[txn.ProviderTxnID] = &copied
	return nil
}

type fakeEventRepo struct {
	seen  map[string]*db_models.WebhookEvent
	calls int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{seen: make(map[string]*db_models.WebhookEvent)}
}

func (f *fakeEventRepo) MarkProcessed(_ context.Context, event *db_models.WebhookEvent) (bool, error) {
	f.calls++
	if _, ok := f.seen[event.EventID]; ok {
		return false, nil
	}
	f.seen[event.EventID] = event
	return true, nil
}

func (f *fakeEventRepo) Unmark(_ context.Context, eventID string) error {
	delete(f.seen, eventID)
	return nil
}

type fakeGateway struct {
	customer        *stripe.Customer
	customerErr     error
	customerDeleted bool
	checkout        *stripe.CheckoutSession
	checkoutErr     error
	portal          *stripe.BillingPortalSession
	portalErr       error
	subscriptions   map[string]*stripe.Subscription

	createCustomerCalls int
	getCustomerCalls    int
	checkoutCalls       int
	portalCalls         int
	getSubCalls         int

	lastCustomerParams *stripe.CustomerParams
	lastCheckoutParams *stripe.CheckoutSessionParams
	lastPortalParams   *stripe.BillingPortalSessionParams
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		customer:      &stripe.Customer{ID: "cus_test"},
		checkout:      &stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/c/cs_test"},
		portal:        &stripe.BillingPortalSession{URL: "https://billing.stripe.com/p/session"},
		subscriptions: make(map[string]*stripe.Subscription),
	}
}

func (f *fakeGateway) CreateCustomer(_ context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	f.createCustomerCalls++
	f.lastCustomerParams = params
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	return f.customer, nil
}

func (f *fakeGateway) GetCustomer(_ context.Context, id string) (*stripe.Customer, error) {
	f.getCustomerCalls++
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	return &stripe.Customer{ID: id, Deleted: f.customerDeleted}, nil
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.checkoutCalls++
	f.lastCheckoutParams = params
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return f.checkout, nil
}

func (f *fakeGateway) CreatePortalSession(_ context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	f.portalCalls++
	f.lastPortalParams = params
	if f.portalErr != nil {
		return nil, f.portalErr
	}
	return f.portal, nil
}

func (f *fakeGateway) GetSubscription(_ context.Context, id string) (*stripe.Subscription, error) {
	f.getSubCalls++
	sub, ok := f.subscriptions[id]
	if !ok {
		return nil, errors.New("no such subscription")
	}
	return sub, nil
}

func testConfig() StripeConfig {
	cfg := StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test_123",
		AppBaseURL:    "https://mopets.test",
		Prices: PriceIDs{
			PremiumMonthly: "price_premium_monthly",
			PremiumYearly:  "price_premium_yearly",
			BreederMonthly: "price_breeder_monthly",
			BreederYearly:  "price_breeder_yearly",
		},
	}
	cfg.PriceTiers = cfg.Prices.TierTable()
	return cfg
}
