package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stylora-app/stylora/internal/application/billing/usecases"
	"github.com/stylora-app/stylora/internal/shared/biztime"
	"github.com/stylora-app/stylora/internal/shared/logger"
	"github.com/stylora-app/stylora/internal/shared/utils"
)

// InternalHandler serves the token-guarded service-to-service routes.
type InternalHandler struct {
	grantTrialUC *usecases.GrantTrialUseCase
	resetUsageUC *usecases.ResetMonthlyUsageUseCase
	logger       logger.Interface
}

func NewInternalHandler(
	grantTrialUC *usecases.GrantTrialUseCase,
	resetUsageUC *usecases.ResetMonthlyUsageUseCase,
	logger logger.Interface,
) *InternalHandler {
	return &InternalHandler{
		grantTrialUC: grantTrialUC,
		resetUsageUC: resetUsageUC,
		logger:       logger,
	}
}

type grantTrialRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// GrantTrial handles POST /internal/trial, called by the account service at
// registration.
func (h *InternalHandler) GrantTrial(c *gin.Context) {
	var req grantTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.grantTrialUC.Execute(c.Request.Context(), usecases.GrantTrialCommand{
		UserID: req.UserID,
	})
	if err != nil {
		h.logger.Warnw("trial grant failed", "error", err, "user_id", req.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

type resetUsageRequest struct {
	// Month defaults to the previous UTC month when omitted, matching the
	// scheduled job.
	Month string `json:"month"`
}

// ResetUsage handles POST /internal/usage/reset, the manual replay of the
// monthly reset.
func (h *InternalHandler) ResetUsage(c *gin.Context) {
	var req resetUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	month := req.Month
	if month == "" {
		month = biztime.PreviousMonthKey(biztime.NowUTC())
	}

	count, err := h.resetUsageUC.Execute(c.Request.Context(), month)
	if err != nil {
		h.logger.Errorw("manual usage reset failed", "error", err, "month", month)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, gin.H{
		"month":          month,
		"counters_reset": count,
	})
}
