package response_models

import "github.com/google/uuid"

type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type CustomerPortalResponse struct {
	URL string `json:"url"`
}

type SubscriptionStatusResponse struct {
	AccountID          uuid.UUID `json:"account_id"`
	Tier               string    `json:"tier"`
	Status             string    `json:"status"`
	CurrentPeriodStart int64     `json:"current_period_start"`
	CurrentPeriodEnd   int64     `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
}

type SubscriptionPlan struct {
	Tier           string   `json:"tier"` // FREE | PREMIUM | BREEDER
	Name           string   `json:"name"`
	MonthlyPrice   float64  `json:"monthly_price"`
	YearlyPrice    float64  `json:"yearly_price"`
	MonthlyPriceID string   `json:"monthly_price_id,omitempty"`
	YearlyPriceID  string   `json:"yearly_price_id,omitempty"`
	Features       []string `json:"features,omitempty"`
}
