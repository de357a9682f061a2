package request_models

type CreateCheckoutSessionRequest struct {
	Mode        string            `json:"mode" binding:"required,oneof=subscription payment"`
	PriceID     string            `json:"price_id"`
	Amount      float64           `json:"amount"`      // whole currency units, e.g. 19.99
	Description string            `json:"description"` // payment mode only
	Metadata    map[string]string `json:"metadata"`
	SuccessURL  string            `json:"success_url" binding:"required,url"`
	CancelURL   string            `json:"cancel_url" binding:"required,url"`
}

type CustomerPortalRequest struct {
	ReturnURL string `json:"return_url" binding:"omitempty,url"`
}
