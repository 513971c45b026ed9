package controllers

import (
	"errors"
	"fmt"
	"net/http"

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

type TicketController struct {
	Repo   repository.TicketRepository
	Users  repository.UserRepository
	Mailer services.EmailSender
	Logger *zap.Logger
}

type createTicketRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type replyRequest struct {
	Message string `json:"message" binding:"required"`
}

// Create opens a support ticket for the authenticated customer.
func (tc *TicketController) Create(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	ticket := &models.SupportTicket{
		UserID:  principal.UserID,
		Subject: req.Subject,
		Message: req.Message,
		Status:  models.TicketOpen,
	}
	if err := tc.Repo.Create(c.Request.Context(), ticket); err != nil {
		tc.Logger.Error("Failed to create ticket", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

// ListMine returns the caller's tickets.
func (tc *TicketController) ListMine(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	page, limit := pagination(c)

	tickets, total, err := tc.Repo.FindByUserID(c.Request.Context(), principal.UserID, page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "total": total, "page": page})
}

// ListAll is the staff queue, optionally filtered by status.
func (tc *TicketController) ListAll(c *gin.Context) {
	page, limit := pagination(c)
	status := c.Query("status")

	tickets, total, err := tc.Repo.FindAll(c.Request.Context(), status, page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "total": total, "page": page})
}

// Get returns one ticket with its replies. Customers only see their own.
func (tc *TicketController) Get(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	ticket, err := tc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.Respond(c, apperrors.ErrNotFound)
			return
		}
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	if principal.Role == models.RoleCustomer && ticket.UserID != principal.UserID {
		apperrors.Respond(c, apperrors.ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// Reply posts a reply. A staff reply marks the ticket answered and emails
// the customer; a customer reply reopens it.
func (tc *TicketController) Reply(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	ticket, err := tc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrNotFound)
		return
	}
	if ticket.Status == models.TicketClosed {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Ticket is closed"})
		return
	}

	fromStaff := principal.Role != models.RoleCustomer
	if !fromStaff && ticket.UserID != principal.UserID {
		apperrors.Respond(c, apperrors.ErrForbidden)
		return
	}

	newStatus := models.TicketOpen
	if fromStaff {
		newStatus = models.TicketAnswered
	}

	reply := &models.TicketReply{
		TicketID:  ticket.ID,
		AuthorID:  principal.UserID,
		Message:   req.Message,
		FromStaff: fromStaff,
	}
	if err := tc.Repo.AddReply(c.Request.Context(), reply, newStatus); err != nil {
		tc.Logger.Error("Failed to add ticket reply", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	if fromStaff {
		tc.notifyCustomer(c, ticket)
	}

	c.JSON(http.StatusCreated, gin.H{"reply": reply, "status": newStatus})
}

// Close marks a ticket closed.
func (tc *TicketController) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	if err := tc.Repo.UpdateStatus(c.Request.Context(), id, models.TicketClosed); err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.TicketClosed})
}

func (tc *TicketController) notifyCustomer(c *gin.Context, ticket *models.SupportTicket) {
	owner, err := tc.Users.FindByID(c.Request.Context(), ticket.UserID)
	if err != nil {
		return
	}
	subject := fmt.Sprintf("Re: %s", ticket.Subject)
	body := fmt.Sprintf("<p>Hello %s,</p><p>Support has replied to your ticket <b>%s</b>.</p>", owner.Name, ticket.Subject)
	if err := tc.Mailer.SendEmail(c.Request.Context(), owner.Email, subject, body); err != nil {
		tc.Logger.Warn("Failed to send ticket notification",
			zap.String("ticket_id", ticket.ID.String()),
			zap.Error(err),
		)
	}
}
