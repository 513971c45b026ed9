package controllers

import (
	"net/http"

	"github.com/fixhub/fixhub-backend/apperrors"
	"github.com/fixhub/fixhub-backend/models"
	"github.com/fixhub/fixhub-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminController struct {
	Users      repository.UserRepository
	WorkOrders repository.WorkOrderRepository
	Logger     *zap.Logger
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer technician admin"`
}

// ListUsers returns all users, paginated.
func (ac *AdminController) ListUsers(c *gin.Context) {
	page, limit := pagination(c)

	users, total, err := ac.Users.FindAll(c.Request.Context(), page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	type userView struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
		Name  string    `json:"name"`
		Role  string    `json:"role"`
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
	}

	c.JSON(http.StatusOK, gin.H{"users": views, "total": total, "page": page})
}

// UpdateUserRole changes a user's role.
func (ac *AdminController) UpdateUserRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	if _, err := ac.Users.FindByID(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, apperrors.ErrNotFound)
		return
	}

	if err := ac.Users.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		ac.Logger.Error("Failed to update user role", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": req.Role})
}

// Dashboard returns work order counts grouped by status.
func (ac *AdminController) Dashboard(c *gin.Context) {
	counts, err := ac.WorkOrders.CountByStatus(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	var open int64
	for status, n := range counts {
		if status != models.WorkOrderCollected && status != models.WorkOrderCancelled {
			open += n
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"work_orders_by_status": counts,
		"open_work_orders":      open,
	})
}
