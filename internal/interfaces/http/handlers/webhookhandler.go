package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stylora-app/stylora/internal/application/billing/usecases"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
	"github.com/stylora-app/stylora/internal/shared/utils"
)

// maxWebhookBodyBytes bounds webhook payload reads.
const maxWebhookBodyBytes = int64(65536)

// WebhookHandler receives payment-provider webhooks. Bad signatures get 400
// and are never retried; transient downstream failures get 5xx so the
// provider redelivers; events we cannot attribute are acknowledged with 200
// since redelivery would not help.
type WebhookHandler struct {
	processWebhookUC *usecases.ProcessWebhookUseCase
	logger           logger.Interface
}

func NewWebhookHandler(
	processWebhookUC *usecases.ProcessWebhookUseCase,
	logger logger.Interface,
) *WebhookHandler {
	return &WebhookHandler{
		processWebhookUC: processWebhookUC,
		logger:           logger,
	}
}

// HandleStripe handles POST /webhooks/stripe
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid payload")
		return
	}

	result, err := h.processWebhookUC.Execute(c.Request.Context(), usecases.ProcessWebhookCommand{
		Payload:   body,
		Signature: c.GetHeader("Stripe-Signature"),
	})
	if err != nil {
		if appErr := errors.GetAppError(err); appErr != nil && appErr.Type == errors.ErrorTypeUnauthorized {
			h.logger.Warnw("webhook signature rejected")
			utils.ErrorResponse(c, http.StatusBadRequest, "signature verification failed")
			return
		}
		// Transient failure: let the provider redeliver.
		h.logger.Errorw("webhook processing failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}
