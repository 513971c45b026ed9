package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fixhub/fixhub-backend/apperrors"
	"github.com/fixhub/fixhub-backend/middleware"
	"github.com/fixhub/fixhub-backend/models"
	"github.com/fixhub/fixhub-backend/repository"
	"github.com/fixhub/fixhub-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type WorkOrderController struct {
	Repo   repository.WorkOrderRepository
	Users  repository.UserRepository
	Mailer services.EmailSender
	Logger *zap.Logger
}

type createWorkOrderRequest struct {
	DeviceType   string `json:"device_type" binding:"required"`
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model"`
	IssueDetails string `json:"issue_details" binding:"required"`
	ServiceType  string `json:"service_type" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=received diagnosing awaiting_approval repairing ready collected cancelled"`
}

type assignTechnicianRequest struct {
	TechnicianID uuid.UUID `json:"technician_id" binding:"required"`
}

type setQuoteRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// Create opens a new repair work order for the authenticated customer.
func (wc *WorkOrderController) Create(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	order := &models.WorkOrder{
		OrderNumber:   fmt.Sprintf("WO-%d", time.Now().UnixNano()),
		UserID:        principal.UserID,
		DeviceType:    req.DeviceType,
		Brand:         req.Brand,
		Model:         req.Model,
		IssueDetails:  req.IssueDetails,
		ServiceType:   req.ServiceType,
		Status:        models.WorkOrderReceived,
		PaymentStatus: models.WorkOrderUnpaid,
	}
	if err := wc.Repo.Create(c.Request.Context(), order); err != nil {
		wc.Logger.Error("Failed to create work order", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"work_order": order})
}

// ListMine returns the caller's work orders, paginated.
func (wc *WorkOrderController) ListMine(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	page, limit := pagination(c)

	orders, total, err := wc.Repo.FindByUserID(c.Request.Context(), principal.UserID, page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_orders": orders, "total": total, "page": page})
}

// Get returns a single work order. Customers only see their own; staff see
// everything.
func (wc *WorkOrderController) Get(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid work order id"})
		return
	}

	var order *models.WorkOrder
	if principal.Role == models.RoleCustomer {
		order, err = wc.Repo.FindByIDAndUserID(c.Request.Context(), id, principal.UserID)
	} else {
		order, err = wc.Repo.FindByID(c.Request.Context(), id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.Respond(c, apperrors.ErrNotFound)
			return
		}
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusOK, gin.H{"work_order": order})
}

// ListAll is the staff view, optionally filtered by status.
func (wc *WorkOrderController) ListAll(c *gin.Context) {
	page, limit := pagination(c)
	status := c.Query("status")

	orders, total, err := wc.Repo.FindAll(c.Request.Context(), status, page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_orders": orders, "total": total, "page": page})
}

// UpdateStatus moves a work order through its repair lifecycle. Payment
// status is deliberately untouchable here; only the payment reconciler
// writes it.
func (wc *WorkOrderController) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid work order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	order, err := wc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrNotFound)
		return
	}
	if order.Status == models.WorkOrderCollected || order.Status == models.WorkOrderCancelled {
		apperrors.Respond(c, apperrors.ErrWorkOrderNotEditable)
		return
	}

	if err := wc.Repo.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		wc.Logger.Error("Failed to update work order status", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	wc.notifyStatusChange(c, order, req.Status)

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// AssignTechnician links a technician to a work order.
func (wc *WorkOrderController) AssignTechnician(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid work order id"})
		return
	}

	var req assignTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	tech, err := wc.Users.FindByID(c.Request.Context(), req.TechnicianID)
	if err != nil || tech.Role != models.RoleTechnician {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a technician"})
		return
	}

	if err := wc.Repo.AssignTechnician(c.Request.Context(), id, req.TechnicianID); err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": true})
}

// SetQuote records the repair quote and moves the order to awaiting_approval.
func (wc *WorkOrderController) SetQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid work order id"})
		return
	}

	var req setQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote amount"})
		return
	}

	if err := wc.Repo.SetQuote(c.Request.Context(), id, req.Amount); err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote_amount": req.Amount})
}

func (wc *WorkOrderController) notifyStatusChange(c *gin.Context, order *models.WorkOrder, status string) {
	owner, err := wc.Users.FindByID(c.Request.Context(), order.UserID)
	if err != nil {
		return
	}
	subject := fmt.Sprintf("Your repair %s is now %s", order.OrderNumber, status)
	body := fmt.Sprintf("<p>Hello %s,</p><p>Your work order <b>%s</b> has moved to <b>%s</b>.</p>", owner.Name, order.OrderNumber, status)
	if err := wc.Mailer.SendEmail(c.Request.Context(), owner.Email, subject, body); err != nil {
		wc.Logger.Warn("Failed to send status notification",
			zap.String("work_order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
