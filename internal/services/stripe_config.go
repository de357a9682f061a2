package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
)

// PriceIDs holds the provider price identifiers assigned per tier and billing
// cycle in the operator's dashboard.
type PriceIDs struct {
	PremiumMonthly string
	PremiumYearly  string
	BreederMonthly string
	BreederYearly  string
}

// TierTable builds the explicit price-id -> tier mapping used by the projector.
func (p PriceIDs) TierTable() map[string]db_models.SubscriptionTier {
	table := make(map[string]db_models.SubscriptionTier)
	for _, id := range []string{p.PremiumMonthly, p.PremiumYearly} {
		if id != "" {
			table[id] = db_models.TierPremium
		}
	}
	for _, id := range []string{p.BreederMonthly, p.BreederYearly} {
		if id != "" {
			table[id] = db_models.TierBreeder
		}
	}
	return table
}

type StripeConfig struct {
	SecretKey     string // sk_...
	WebhookSecret string // whsec_..., shared secret for webhook signatures
	AppBaseURL    string // e.g. https://mopets.app

	// Explicit price-id -> tier table, validated at startup. The operator's
	// price naming convention (premium/breeder markers) serves only as fallback
	// for identifiers added to the dashboard without a config change.
	PriceTiers map[string]db_models.SubscriptionTier
	Prices     PriceIDs
}

func (c StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return errors.New("stripe secret key is required")
	}
	if c.WebhookSecret == "" {
		return errors.New("stripe webhook secret is required")
	}
	for priceID, tier := range c.PriceTiers {
		if priceID == "" {
			return errors.New("price tier table contains an empty price identifier")
		}
		switch tier {
		case db_models.TierFree, db_models.TierPremium, db_models.TierBreeder:
		default:
			return fmt.Errorf("price %s is mapped to unknown tier %q", priceID, tier)
		}
	}
	return nil
}

// TierForPrice resolves the local tier for a provider price identifier.
func (c StripeConfig) TierForPrice(priceID string) db_models.SubscriptionTier {
	if tier, ok := c.PriceTiers[priceID]; ok {
		return tier
	}
	switch {
	case strings.Contains(priceID, "premium"):
		return db_models.TierPremium
	case strings.Contains(priceID, "breeder"):
		return db_models.TierBreeder
	}
	return db_models.TierFree
}

// PortalReturnURL is the fallback route the billing portal sends customers back to.
func (c StripeConfig) PortalReturnURL() string {
	return strings.TrimSuffix(c.AppBaseURL, "/") + "/profile"
}
