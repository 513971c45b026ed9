package repository

import (
	"context"
	"time"

	"github.com/fixhub/fixhub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkOrderRepository interface {
	Create(ctx context.Context, order *models.WorkOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error)
	FindByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.WorkOrder, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.WorkOrder, int64, error)
	FindAll(ctx context.Context, status string, page, limit int) ([]models.WorkOrder, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AssignTechnician(ctx context.Context, id, technicianID uuid.UUID) error
	SetQuote(ctx context.Context, id uuid.UUID, amount int64) error
	// SetPaymentStatus is the single write path for payment-related fields on
	// a work order; only the payment reconciler calls it.
	SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type gormWorkOrderRepo struct {
	db *gorm.DB
}

func NewGormWorkOrderRepo(db *gorm.DB) WorkOrderRepository {
	return &gormWorkOrderRepo{db: db}
}

func (r *gormWorkOrderRepo) Create(ctx context.Context, order *models.WorkOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *gormWorkOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error) {
	var order models.WorkOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormWorkOrderRepo) FindByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.WorkOrder, error) {
	var order models.WorkOrder
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormWorkOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.WorkOrder, int64, error) {
	var orders []models.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&models.WorkOrder{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *gormWorkOrderRepo) FindAll(ctx context.Context, status string, page, limit int) ([]models.WorkOrder, int64, error) {
	var orders []models.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&models.WorkOrder{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *gormWorkOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == models.WorkOrderCollected {
		now := time.Now()
		updates["completed_at"] = &now
	}
	return r.db.WithContext(ctx).Model(&models.WorkOrder{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormWorkOrderRepo) AssignTechnician(ctx context.Context, id, technicianID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.WorkOrder{}).
		Where("id = ?", id).
		Update("technician_id", technicianID).Error
}

func (r *gormWorkOrderRepo) SetQuote(ctx context.Context, id uuid.UUID, amount int64) error {
	return r.db.WithContext(ctx).Model(&models.WorkOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quote_amount": amount,
			"status":       models.WorkOrderAwaitingApproval,
		}).Error
}

func (r *gormWorkOrderRepo) SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	return r.db.WithContext(ctx).Model(&models.WorkOrder{}).
		Where("id = ?", id).
		Update("payment_status", paymentStatus).Error
}

func (r *gormWorkOrderRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.WorkOrder{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
