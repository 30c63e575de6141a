package paymentControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wglickman33/mykosherdelivery-sub001/payments"
)

type CreateIntentRequest struct {
	AmountMinor int64  `json:"amount_minor" binding:"required"`
	Currency    string `json:"currency"`
	OrderIDs    []uint `json:"order_ids" binding:"required,min=1"`
}

type ConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// CreateIntentHandler creates or reuses the payment intent for a checkout
// attempt. The amount is the client's claim; the orchestrator recomputes the
// authoritative value and rejects any disagreement.
func CreateIntentHandler(orch *payments.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		intent, err := orch.CreateIntent(c.Request.Context(), req.OrderIDs, req.AmountMinor, req.Currency)
		if err != nil {
			respondPaymentError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"payment_intent_id": intent.IntentID,
			"client_secret":     intent.ClientSecret,
			"status":            intent.Status,
		})
	}
}

// ConfirmHandler is the processor's confirmation callback. Idempotent: a
// duplicate for a settled intent acknowledges without re-settling.
func ConfirmHandler(orch *payments.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		intent, err := orch.Confirm(c.Request.Context(), req.PaymentIntentID)
		if err != nil {
			respondPaymentError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"payment_intent_id": intent.IntentID,
			"status":            intent.Status,
			"settled":           true,
		})
	}
}

func respondPaymentError(c *gin.Context, err error) {
	var (
		mismatch  *payments.AmountMismatchError
		declined  *payments.DeclinedError
		transient *payments.TransientError
	)
	switch {
	case errors.As(err, &mismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment amount does not match order total"})
	case errors.Is(err, payments.ErrUnknownOrders):
		c.JSON(http.StatusBadRequest, gin.H{"error": "one or more orders not found"})
	case errors.Is(err, payments.ErrIntentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment intent not found"})
	case errors.Is(err, payments.ErrIntentPending):
		c.JSON(http.StatusConflict, gin.H{"error": "payment is not confirmed yet"})
	case errors.As(err, &declined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": declined.Error(), "code": declined.Code})
	case errors.As(err, &transient):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment processor unavailable, please retry"})
	default:
		logrus.WithError(err).Error("payment operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment failed, please try again"})
	}
}
