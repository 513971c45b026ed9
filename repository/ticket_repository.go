package repository

import (
	"context"

	"github.com/fixhub/fixhub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.SupportTicket) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.SupportTicket, int64, error)
	FindAll(ctx context.Context, status string, page, limit int) ([]models.SupportTicket, int64, error)
	AddReply(ctx context.Context, reply *models.TicketReply, newStatus string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SaveAttachment(ctx context.Context, attachment *models.Attachment) error
}

type gormTicketRepo struct {
	db *gorm.DB
}

func NewGormTicketRepo(db *gorm.DB) TicketRepository {
	return &gormTicketRepo{db: db}
}

func (r *gormTicketRepo) Create(ctx context.Context, ticket *models.SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *gormTicketRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := r.db.WithContext(ctx).Preload("Replies").First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *gormTicketRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.SupportTicket, int64, error) {
	var tickets []models.SupportTicket
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SupportTicket{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *gormTicketRepo) FindAll(ctx context.Context, status string, page, limit int) ([]models.SupportTicket, int64, error) {
	var tickets []models.SupportTicket
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SupportTicket{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *gormTicketRepo) AddReply(ctx context.Context, reply *models.TicketReply, newStatus string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.SupportTicket{}).
			Where("id = ?", reply.TicketID).
			Update("status", newStatus).Error
	})
}

func (r *gormTicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&models.SupportTicket{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *gormTicketRepo) SaveAttachment(ctx context.Context, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}
