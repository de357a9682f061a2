package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
)

func TestStripeConfigValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	missingKey := cfg
	missingKey.SecretKey = ""
	assert.Error(t, missingKey.Validate())

	missingSecret := cfg
	missingSecret.WebhookSecret = ""
	assert.Error(t, missingSecret.Validate())

	emptyPrice := testConfig()
	emptyPrice.PriceTiers[""] = db_models.TierPremium
	assert.Error(t, emptyPrice.Validate())

	badTier := testConfig()
	badTier.PriceTiers["price_x"] = "PLATINUM"
	assert.Error(t, badTier.Validate())
}

func TestTierForPriceUsesExplicitTableFirst(t *testing.T) {
	cfg := testConfig()
	cfg.PriceTiers["price_legacy_gold"] = db_models.TierBreeder

	assert.Equal(t, db_models.TierPremium, cfg.TierForPrice("price_premium_monthly"))
	assert.Equal(t, db_models.TierBreeder, cfg.TierForPrice("price_breeder_yearly"))
	assert.Equal(t, db_models.TierBreeder, cfg.TierForPrice("price_legacy_gold"))
}

func TestTierForPriceNamingFallback(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, db_models.TierPremium, cfg.TierForPrice("price_new_premium_promo"))
	assert.Equal(t, db_models.TierBreeder, cfg.TierForPrice("price_new_breeder_promo"))
	assert.Equal(t, db_models.TierFree, cfg.TierForPrice("price_unknown"))
}

func TestPortalReturnURLTrimsTrailingSlash(t *testing.T) {
	cfg := testConfig()
	cfg.AppBaseURL = "https://mopets.test/"

	assert.Equal(t, "https://mopets.test/profile", cfg.PortalReturnURL())
}

func TestTierTableCoversConfiguredPrices(t *testing.T) {
	table := testConfig().Prices.TierTable()

	assert.Equal(t, db_models.TierPremium, table["price_premium_monthly"])
	assert.Equal(t, db_models.TierPremium, table["price_premium_yearly"])
	assert.Equal(t, db_models.TierBreeder, table["price_breeder_monthly"])
	assert.Equal(t, db_models.TierBreeder, table["price_breeder_yearly"])
	assert.Len(t, table, 4)
}
