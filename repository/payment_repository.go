package repository

import (
	"context"

	"github.com/fixhub/fixhub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByProviderReference(ctx context.Context, provider, reference string) (*models.Payment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Payment, int64, error)
	FindAll(ctx context.Context, status string, page, limit int) ([]models.Payment, int64, error)
	// TransitionStatus applies a conditional status update: the row is touched
	// only if its current status still equals from. Returns whether the update
	// was applied, which makes concurrent duplicate deliveries race-safe
	// without a lock.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, updates map[string]interface{}) (bool, error)
	SetAuthorizationURL(ctx context.Context, id uuid.UUID, url string) error
	CreateRefundRequest(ctx context.Context, req *models.RefundRequest) error
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepo) FindByProviderReference(ctx context.Context, provider, reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND reference = ?", provider, reference).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *gormPaymentRepo) FindAll(ctx context.Context, status string, page, limit int) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *gormPaymentRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormPaymentRepo) SetAuthorizationURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Update("authorization_url", url).Error
}

func (r *gormPaymentRepo) CreateRefundRequest(ctx context.Context, req *models.RefundRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}
