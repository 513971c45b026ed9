package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fixhub/fixhub-backend/apperrors"
	"github.com/fixhub/fixhub-backend/middleware"
	"github.com/fixhub/fixhub-backend/models"
	"github.com/fixhub/fixhub-backend/repository"
	"github.com/fixhub/fixhub-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const presignExpiry = 15 * time.Minute

type UploadController struct {
	Store   *storage.AttachmentStore
	Tickets repository.TicketRepository
	Logger  *zap.Logger
}

type presignRequest struct {
	FileName    string     `json:"file_name" binding:"required"`
	ContentType string     `json:"content_type" binding:"required"`
	WorkOrderID *uuid.UUID `json:"work_order_id"`
	TicketID    *uuid.UUID `json:"ticket_id"`
}

// PresignAttachment records the attachment and hands back a presigned PUT
// URL; the client uploads directly to object storage.
func (uc *UploadController) PresignAttachment(c *gin.Context) {
	if !uc.Store.Enabled() {
		apperrors.Respond(c, apperrors.ErrServiceUnavailable)
		return
	}

	principal, _ := middleware.GetPrincipal(c)

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.WorkOrderID == nil && req.TicketID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attachment must reference a work order or ticket"})
		return
	}

	key := fmt.Sprintf("attachments/%s/%s-%s", principal.UserID, uuid.NewString(), req.FileName)
	uploadURL, err := uc.Store.PresignUpload(c.Request.Context(), key, req.ContentType, presignExpiry)
	if err != nil {
		uc.Logger.Error("Failed to presign upload", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	attachment := &models.Attachment{
		OwnerID:     principal.UserID,
		WorkOrderID: req.WorkOrderID,
		TicketID:    req.TicketID,
		Bucket:      uc.Store.Bucket(),
		Key:         key,
		ContentType: req.ContentType,
	}
	if err := uc.Tickets.SaveAttachment(c.Request.Context(), attachment); err != nil {
		uc.Logger.Error("Failed to record attachment", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"attachment_id": attachment.ID,
		"upload_url":    uploadURL,
		"expires_in":    int(presignExpiry.Seconds()),
	})
}

// DownloadAttachment returns a short-lived GET URL for an attachment.
func (uc *UploadController) DownloadAttachment(c *gin.Context) {
	if !uc.Store.Enabled() {
		apperrors.Respond(c, apperrors.ErrServiceUnavailable)
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing key"})
		return
	}

	url, err := uc.Store.PresignDownload(c.Request.Context(), key, presignExpiry)
	if err != nil {
		uc.Logger.Error("Failed to presign download", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"download_url": url})
}
