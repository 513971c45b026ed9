package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/fixhub/fixhub-backend/apperrors"
	"github.com/fixhub/fixhub-backend/middleware"
	"github.com/fixhub/fixhub-backend/models"
	"github.com/fixhub/fixhub-backend/payments"
	"github.com/fixhub/fixhub-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PaymentController struct {
	Registry    *payments.Registry
	Reconciler  *payments.Reconciler
	Refunds     *payments.RefundService
	Repo        repository.PaymentRepository
	WorkOrders  repository.WorkOrderRepository
	Logger      *zap.Logger
	FrontendURL string
}

type initiatePaymentRequest struct {
	Provider    string     `json:"provider" binding:"required"`
	WorkOrderID *uuid.UUID `json:"work_order_id"`
	Amount      int64      `json:"amount" binding:"required,min=1"`
	Currency    string     `json:"currency"`
}

// InitiatePayment creates a pending payment and opens a checkout transaction
// with the chosen provider.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	providerID, err := payments.ParseProviderID(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported payment provider"})
		return
	}
	provider, err := pc.Registry.Get(providerID)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrProviderUnavailable)
		return
	}

	if req.WorkOrderID != nil {
		if _, err := pc.WorkOrders.FindByIDAndUserID(c.Request.Context(), *req.WorkOrderID, principal.UserID); err != nil {
			apperrors.Respond(c, apperrors.ErrNotFound)
			return
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "NGN"
	}

	reference := fmt.Sprintf("fxh-%s", uuid.NewString())
	payment := &models.Payment{
		Reference:   reference,
		Provider:    string(providerID),
		UserID:      principal.UserID,
		WorkOrderID: req.WorkOrderID,
		Amount:      req.Amount,
		Currency:    currency,
		Status:      models.PaymentPending,
	}
	if err := pc.Repo.Create(c.Request.Context(), payment); err != nil {
		pc.Logger.Error("Failed to create payment", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	init, err := provider.InitializeTransaction(c.Request.Context(), payments.InitializeRequest{
		Reference:   reference,
		Email:       principal.Email,
		Amount:      req.Amount,
		Currency:    currency,
		CallbackURL: pc.FrontendURL + "/payments/callback",
	})
	if err != nil {
		pc.Logger.Error("Provider transaction initialize failed",
			zap.String("provider", string(providerID)),
			zap.String("reference", reference),
			zap.Error(err),
		)
		apperrors.Respond(c, apperrors.ErrProviderUnavailable)
		return
	}

	if err := pc.Repo.SetAuthorizationURL(c.Request.Context(), payment.ID, init.AuthorizationURL); err != nil {
		pc.Logger.Warn("Failed to store authorization URL",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment_id":        payment.ID,
		"reference":         reference,
		"authorization_url": init.AuthorizationURL,
	})
}

// VerifyPayment re-queries the provider for a reference and feeds the result
// through the same state machine the webhook path uses.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	reference := c.Param("reference")

	payment, err := pc.findOwnedPayment(c, principal, reference)
	if err != nil {
		return // response already written
	}

	provider, err := pc.Registry.Get(payments.ProviderID(payment.Provider))
	if err != nil {
		apperrors.Respond(c, apperrors.ErrProviderUnavailable)
		return
	}

	event, err := provider.VerifyTransaction(c.Request.Context(), reference)
	if err != nil {
		pc.Logger.Error("Provider verify call failed",
			zap.String("reference", reference),
			zap.Error(err),
		)
		apperrors.Respond(c, apperrors.ErrProviderUnavailable)
		return
	}

	if event.Kind != payments.EventUnknown {
		pc.Reconciler.Apply(c.Request.Context(), payments.ProviderID(payment.Provider), event, nil)
	}

	refreshed, err := pc.Repo.FindByID(c.Request.Context(), payment.ID)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": refreshed})
}

// ListMyPayments returns the caller's payments, paginated.
func (pc *PaymentController) ListMyPayments(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	page, limit := pagination(c)

	list, total, err := pc.Repo.FindByUserID(c.Request.Context(), principal.UserID, page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list, "total": total, "page": page})
}

// ListAllPayments is the admin view, optionally filtered by status.
func (pc *PaymentController) ListAllPayments(c *gin.Context) {
	page, limit := pagination(c)
	status := c.Query("status")

	list, total, err := pc.Repo.FindAll(c.Request.Context(), status, page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list, "total": total, "page": page})
}

type refundRequest struct {
	Reason string `json:"reason" binding:"required,min=3"`
	Amount *int64 `json:"amount"`
}

// InitiateRefund is the administrator-triggered refund path. The payment
// stays paid until the provider confirms via webhook.
func (pc *PaymentController) InitiateRefund(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment id"})
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refund reason must be at least 3 characters"})
		return
	}

	refund, err := pc.Refunds.InitiateRefund(c.Request.Context(), paymentID, principal.UserID, req.Reason, req.Amount)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"refund_request": refund,
		"status":         "pending_provider_confirmation",
	})
}

func (pc *PaymentController) findOwnedPayment(c *gin.Context, principal middleware.Principal, reference string) (*models.Payment, error) {
	for _, providerID := range pc.Registry.IDs() {
		payment, err := pc.Repo.FindByProviderReference(c.Request.Context(), string(providerID), reference)
		if err == nil {
			if payment.UserID != principal.UserID && principal.Role != models.RoleAdmin {
				apperrors.Respond(c, apperrors.ErrForbidden)
				return nil, apperrors.ErrForbidden
			}
			return payment, nil
		}
	}
	apperrors.Respond(c, apperrors.ErrNotFound)
	return nil, gorm.ErrRecordNotFound
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
