// Package handlers contains the gin HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stylora-app/stylora/internal/application/billing/usecases"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/interfaces/http/middleware"
	"github.com/stylora-app/stylora/internal/shared/logger"
	"github.com/stylora-app/stylora/internal/shared/utils"
)

// BillingHandler handles HTTP requests for subscription and entitlement
// operations.
type BillingHandler struct {
	getStatusUC       *usecases.GetStatusUseCase
	createCheckoutUC  *usecases.CreateCheckoutUseCase
	verifyPurchaseUC  *usecases.VerifyPurchaseUseCase
	restoreUC         *usecases.RestorePurchasesUseCase
	cancelUC          *usecases.CancelSubscriptionUseCase
	authorizeUC       *usecases.AuthorizeFeatureUseCase
	recordUsageUC     *usecases.RecordUsageUseCase
	purchaseHistoryUC *usecases.GetPurchaseHistoryUseCase
	logger            logger.Interface
}

func NewBillingHandler(
	getStatusUC *usecases.GetStatusUseCase,
	createCheckoutUC *usecases.CreateCheckoutUseCase,
	verifyPurchaseUC *usecases.VerifyPurchaseUseCase,
	restoreUC *usecases.RestorePurchasesUseCase,
	cancelUC *usecases.CancelSubscriptionUseCase,
	authorizeUC *usecases.AuthorizeFeatureUseCase,
	recordUsageUC *usecases.RecordUsageUseCase,
	purchaseHistoryUC *usecases.GetPurchaseHistoryUseCase,
	logger logger.Interface,
) *BillingHandler {
	return &BillingHandler{
		getStatusUC:       getStatusUC,
		createCheckoutUC:  createCheckoutUC,
		verifyPurchaseUC:  verifyPurchaseUC,
		restoreUC:         restoreUC,
		cancelUC:          cancelUC,
		authorizeUC:       authorizeUC,
		recordUsageUC:     recordUsageUC,
		purchaseHistoryUC: purchaseHistoryUC,
		logger:            logger,
	}
}

// GetStatus handles GET /billing/status
func (h *BillingHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	status, err := h.getStatusUC.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to get billing status", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, status)
}

type createCheckoutRequest struct {
	PriceID string `json:"price_id"`
}

// CreateCheckout handles POST /billing/checkout
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.createCheckoutUC.Execute(c.Request.Context(), usecases.CreateCheckoutCommand{
		UserID:  userID,
		PriceID: req.PriceID,
	})
	if err != nil {
		h.logger.Errorw("failed to create checkout", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

type verifyPurchaseRequest struct {
	Platform  string `json:"platform" binding:"required"`
	Receipt   string `json:"receipt"`
	SessionID string `json:"session_id"`
}

// VerifyPurchase handles POST /billing/verify
func (h *BillingHandler) VerifyPurchase(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req verifyPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.verifyPurchaseUC.Execute(c.Request.Context(), usecases.VerifyPurchaseCommand{
		UserID:    userID,
		Platform:  subscription.Platform(req.Platform),
		Receipt:   req.Receipt,
		SessionID: req.SessionID,
	})
	if err != nil {
		h.logger.Warnw("purchase verification failed", "error", err, "user_id", userID, "platform", req.Platform)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

type restoreRequest struct {
	Platform string `json:"platform"`
	Receipt  string `json:"receipt"`
}

// RestorePurchases handles POST /billing/restore
func (h *BillingHandler) RestorePurchases(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.restoreUC.Execute(c.Request.Context(), usecases.RestorePurchasesCommand{
		UserID:   userID,
		Platform: subscription.Platform(req.Platform),
		Receipt:  req.Receipt,
	})
	if err != nil {
		h.logger.Warnw("purchase restore failed", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// CancelSubscription handles POST /billing/cancel
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	h.setCancellation(c, true)
}

// UncancelSubscription handles POST /billing/uncancel
func (h *BillingHandler) UncancelSubscription(c *gin.Context) {
	h.setCancellation(c, false)
}

func (h *BillingHandler) setCancellation(c *gin.Context, cancel bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		UserID: userID,
		Cancel: cancel,
	})
	if err != nil {
		h.logger.Warnw("cancellation update failed", "error", err, "user_id", userID, "cancel", cancel)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

type authorizeRequest struct {
	Features []string `json:"features" binding:"required"`
}

// Authorize handles POST /billing/authorize
func (h *BillingHandler) Authorize(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	features := make([]subscription.Feature, 0, len(req.Features))
	for _, f := range req.Features {
		features = append(features, subscription.Feature(f))
	}

	result, err := h.authorizeUC.Execute(c.Request.Context(), usecases.AuthorizeFeatureCommand{
		UserID:   userID,
		Features: features,
	})
	if err != nil {
		h.logger.Errorw("authorization check failed", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

type recordUsageRequest struct {
	Feature string `json:"feature" binding:"required"`
}

// RecordUsage handles POST /billing/usage
func (h *BillingHandler) RecordUsage(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req recordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.recordUsageUC.Execute(c.Request.Context(), usecases.RecordUsageCommand{
		UserID:  userID,
		Feature: subscription.Feature(req.Feature),
	})
	if err != nil {
		h.logger.Errorw("failed to record usage", "error", err, "user_id", userID, "feature", req.Feature)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// GetPurchaseHistory handles GET /billing/purchases
func (h *BillingHandler) GetPurchaseHistory(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	records, err := h.purchaseHistoryUC.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to list purchases", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, records)
}
