package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/datatypes"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
	"github.com/HaitPets/Petconnect/internal/repositories"
	"github.com/HaitPets/Petconnect/pkg/utils"
)

type WebhookService interface {
	// HandleEvent verifies the provider signature, deduplicates redeliveries and
	// projects the event into local state. A nil return means the caller should
	// acknowledge the delivery.
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type webhookService struct {
	gateway       StripeGateway
	accounts      repositories.AccountRepository
	subscriptions repositories.SubscriptionRepository
	transactions  repositories.TransactionRepository
	events        repositories.WebhookEventRepository
	cfg           StripeConfig
}

func NewWebhookService(
	gateway StripeGateway,
	accounts repositories.AccountRepository,
	subscriptions repositories.SubscriptionRepository,
	transactions repositories.TransactionRepository,
	events repositories.WebhookEventRepository,
	cfg StripeConfig,
) (WebhookService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &webhookService{
		gateway:       gateway,
		accounts:      accounts,
		subscriptions: subscriptions,
		transactions:  transactions,
		events:        events,
		cfg:           cfg,
	}, nil
}

func (w *webhookService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, w.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		return utils.ErrInvalidSignature
	}

	fresh, err := w.events.MarkProcessed(ctx, &db_models.WebhookEvent{
		EventID:     event.ID,
		Type:        string(event.Type),
		Payload:     datatypes.JSON(payload),
		ProcessedAt: time.Now().Unix(),
	})
	if err != nil {
		return utils.ErrDatabaseError
	}
	if !fresh {
		log.Printf("skipping already processed event %s (%s)", event.ID, event.Type)
		return nil
	}

	if err := w.dispatch(ctx, event); err != nil {
		log.Printf("handler for event %s (%s) failed: %v", event.ID, event.Type, err)
		// Release the dedup row so the provider's retry of this delivery is
		// processed rather than collapsed; the row only guards while in flight.
		if unmarkErr := w.events.Unmark(ctx, event.ID); unmarkErr != nil {
			log.Printf("failed to release event %s for redelivery: %v", event.ID, unmarkErr)
		}
		return utils.ErrHandlerFailure
	}
	return nil
}

func (w *webhookService) dispatch(ctx context.Context, event stripe.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	switch event.Type {
	case "checkout.session.completed":
		return w.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return err
		}
		return w.syncSubscription(ctx, &sub, event.Created)
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return err
		}
		return w.handleSubscriptionDeleted(ctx, &sub, event.Created)
	case "invoice.payment_succeeded":
		return w.handleInvoicePaid(ctx, event)
	case "invoice.payment_failed":
		return w.handleInvoiceFailed(ctx, event)
	case "payment_intent.succeeded":
		return w.handlePaymentSucceeded(ctx, event)
	default:
		log.Printf("ignoring unhandled event type %s", event.Type)
		return nil
	}
}

func (w *webhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return err
	}

	if _, ok := accountIDFromMetadata(session.Metadata); !ok {
		log.Printf("checkout session %s carries no account tag, skipping", session.ID)
		return nil
	}

	if session.Mode != stripe.CheckoutSessionModeSubscription || session.Subscription == nil {
		// One-time payments are settled by payment_intent.succeeded.
		log.Printf("checkout session %s completed in %s mode", session.ID, session.Mode)
		return nil
	}

	// The session payload carries only the subscription id; fetch the full
	// object so the projection sees items, period and status.
	sub, err := w.gateway.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return err
	}
	return w.syncSubscription(ctx, sub, event.Created)
}

func (w *webhookService) syncSubscription(ctx context.Context, sub *stripe.Subscription, eventCreated int64) error {
	accountID, ok := accountIDFromMetadata(sub.Metadata)
	if !ok {
		log.Printf("subscription %s carries no account tag, skipping", sub.ID)
		return nil
	}
	if err := w.requireAccount(ctx, accountID); err != nil {
		log.Printf("subscription %s references missing account %s, skipping", sub.ID, accountID)
		return nil
	}

	existing, err := w.subscriptions.FindByStripeID(ctx, sub.ID)
	if err != nil {
		return err
	}
	if existing != nil && existing.LastEventAt > eventCreated {
		log.Printf("dropping stale event for subscription %s (have %d, got %d)", sub.ID, existing.LastEventAt, eventCreated)
		return nil
	}

	priceID := subscriptionPriceID(sub)
	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	return w.subscriptions.UpsertWithAccountTier(ctx, &db_models.Subscription{
		AccountID:            accountID,
		StripeSubscriptionID: sub.ID,
		Tier:                 w.cfg.TierForPrice(priceID),
		Status:               string(sub.Status),
		CurrentPeriodStart:   sub.CurrentPeriodStart,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		Provider:             "stripe",
		ProviderCustomerID:   customerID,
		LastEventAt:          eventCreated,
	})
}

func (w *webhookService) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription, eventCreated int64) error {
	accountID, ok := accountIDFromMetadata(sub.Metadata)
	if !ok {
		log.Printf("deleted subscription %s carries no account tag, skipping", sub.ID)
		return nil
	}
	if err := w.requireAccount(ctx, accountID); err != nil {
		log.Printf("deleted subscription %s references missing account %s, skipping", sub.ID, accountID)
		return nil
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	// Deletion is terminal so it skips the staleness check: no later event can
	// resurrect the subscription.
	return w.subscriptions.UpsertWithAccountTier(ctx, &db_models.Subscription{
		AccountID:            accountID,
		StripeSubscriptionID: sub.ID,
		Tier:                 db_models.TierFree,
		Status:               string(db_models.SubStatusCanceled),
		CurrentPeriodStart:   sub.CurrentPeriodStart,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:    true,
		Provider:             "stripe",
		ProviderCustomerID:   customerID,
		LastEventAt:          eventCreated,
	})
}

func (w *webhookService) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return err
	}
	if invoice.Subscription == nil {
		log.Printf("invoice %s has no subscription, skipping", invoice.ID)
		return nil
	}

	// Renewal invoices carry a stale subscription snapshot; re-fetch for the
	// advanced billing period.
	sub, err := w.gateway.GetSubscription(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}
	return w.syncSubscription(ctx, sub, event.Created)
}

func (w *webhookService) handleInvoiceFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return err
	}
	if invoice.Subscription == nil {
		log.Printf("failed invoice %s has no subscription, skipping", invoice.ID)
		return nil
	}

	// Only the status mirror flips; the tier survives until Stripe gives up and
	// sends the deletion event.
	return w.subscriptions.MarkPastDue(ctx, invoice.Subscription.ID)
}

func (w *webhookService) handlePaymentSucceeded(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return err
	}

	accountID, ok := accountIDFromMetadata(intent.Metadata)
	if !ok {
		// Subscription invoices produce payment intents without our tag.
		log.Printf("payment intent %s carries no account tag, skipping", intent.ID)
		return nil
	}
	if err := w.requireAccount(ctx, accountID); err != nil {
		log.Printf("payment intent %s references missing account %s, skipping", intent.ID, accountID)
		return nil
	}

	paidAt := event.Created
	return w.transactions.UpsertByProviderTxnID(ctx, &db_models.Transaction{
		AccountID:     accountID,
		AmountMinor:   intent.Amount,
		Currency:      strings.ToUpper(string(intent.Currency)),
		Status:        db_models.TxnStatusPaid,
		Description:   intent.Description,
		Provider:      "stripe",
		ProviderTxnID: intent.ID,
		PaidAt:        &paidAt,
	})
}

// requireAccount confirms the tagged account still exists before any projection
// write lands on its foreign keys.
func (w *webhookService) requireAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := w.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}
	return nil
}

func accountIDFromMetadata(metadata map[string]string) (uuid.UUID, bool) {
	raw, ok := metadata["userId"]
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func subscriptionPriceID(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return ""
	}
	return sub.Items.Data[0].Price.ID
}
