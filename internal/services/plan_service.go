package services

import (
	"github.com/HaitPets/Petconnect/internal/models/db_models"
	"github.com/HaitPets/Petconnect/internal/models/response_models"
)

type PlanService interface {
	ListPlans() []response_models.SubscriptionPlan
}

type planService struct {
	cfg StripeConfig
}

func NewPlanService(cfg StripeConfig) PlanService {
	return &planService{
		cfg: cfg,
	}
}

// ListPlans returns the static plan catalog. Prices are display values; the
// authoritative amounts live on the provider price objects.
func (p *planService) ListPlans() []response_models.SubscriptionPlan {
	return []response_models.SubscriptionPlan{
		{
			Tier:         string(db_models.TierFree),
			Name:         "Free",
			MonthlyPrice: 0,
			YearlyPrice:  0,
			Features: []string{
				"Create a pet profile",
				"Browse the community feed",
				"Join public groups",
			},
		},
		{
			Tier:           string(db_models.TierPremium),
			Name:           "Premium",
			MonthlyPrice:   9.99,
			YearlyPrice:    95.90,
			MonthlyPriceID: p.cfg.Prices.PremiumMonthly,
			YearlyPriceID:  p.cfg.Prices.PremiumYearly,
			Features: []string{
				"Unlimited pet profiles",
				"Priority matching",
				"Health record tracking",
				"Ad-free experience",
			},
		},
		{
			Tier:           string(db_models.TierBreeder),
			Name:           "Breeder",
			MonthlyPrice:   19.99,
			YearlyPrice:    191.90,
			MonthlyPriceID: p.cfg.Prices.BreederMonthly,
			YearlyPriceID:  p.cfg.Prices.BreederYearly,
			Features: []string{
				"Everything in Premium",
				"Verified breeder badge",
				"Litter listings",
				"Marketplace checkout",
				"Breeding analytics",
			},
		},
	}
}
