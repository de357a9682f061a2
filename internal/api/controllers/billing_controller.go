package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HaitPets/Petconnect/internal/models/request_models"
	"github.com/HaitPets/Petconnect/internal/services"
	"github.com/HaitPets/Petconnect/pkg/utils"
)

type BillingController struct {
	billingService services.BillingService
	webhookService services.WebhookService
	planService    services.PlanService
}

func NewBillingController(
	billingService services.BillingService,
	webhookService services.WebhookService,
	planService services.PlanService,
) *BillingController {
	return &BillingController{
		billingService: billingService,
		webhookService: webhookService,
		planService:    planService,
	}
}

func authenticatedAccountID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString("user_id")
	if raw == "" {
		utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// CreateCheckoutSession godoc
// @Summary Create a hosted checkout session
// @Description Start a subscription or one-time payment checkout for the authenticated account
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreateCheckoutSessionRequest true "Checkout session payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/create-checkout-session [post]
func (b *BillingController) CreateCheckoutSession(c *gin.Context) {
	var req request_models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return
	}

	session, err := b.billingService.CreateCheckoutSession(c.Request.Context(), accountID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Checkout session created successfully")
}

// CustomerPortal godoc
// @Summary Create a billing portal session
// @Description Open the provider-hosted portal for the authenticated account's billing customer
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CustomerPortalRequest false "Portal session payload"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/customer-portal [post]
func (b *BillingController) CustomerPortal(c *gin.Context) {
	var req request_models.CustomerPortalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return
	}

	session, err := b.billingService.CreatePortalSession(c.Request.Context(), accountID, req.ReturnURL)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Portal session created successfully")
}

// GetMySubscription godoc
// @Summary Get the authenticated account's subscription
// @Description Return the current tier and provider subscription status
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/me [get]
func (b *BillingController) GetMySubscription(c *gin.Context) {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return
	}

	status, err := b.billingService.GetSubscriptionStatus(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, status, "Subscription fetched successfully")
}

// ListPlans godoc
// @Summary List subscription plans
// @Description Return the plan catalog with provider price identifiers
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /subscriptions/plans [get]
func (b *BillingController) ListPlans(c *gin.Context) {
	utils.RespondSuccess(c, b.planService.ListPlans(), "Plans fetched successfully")
}

// HandleWebhook receives provider event deliveries. The raw body is read before
// any binding because signature verification covers the exact bytes sent.
func (b *BillingController) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unable to read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := b.webhookService.HandleEvent(c.Request.Context(), payload, signature); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
