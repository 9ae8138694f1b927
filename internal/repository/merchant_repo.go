package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"gorm.io/gorm"
)

type MerchantRepository interface {
	Create(ctx context.Context, merchant *model.Merchant) error
	FindByID(ctx context.Context, id uint) (*model.Merchant, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Merchant, error)
	FindAll(ctx context.Context, approvedOnly bool) ([]model.Merchant, error)
	Update(ctx context.Context, merchant *model.Merchant) error
	SetApproved(ctx context.Context, id uint, approved bool) error
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) Create(ctx context.Context, merchant *model.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

func (r *merchantRepository) FindByID(ctx context.Context, id uint) (*model.Merchant, error) {
	var merchant model.Merchant
	if err := r.db.WithContext(ctx).First(&merchant, id).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Merchant, error) {
	var merchant model.Merchant
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&merchant).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) FindAll(ctx context.Context, approvedOnly bool) ([]model.Merchant, error) {
	var merchants []model.Merchant
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if approvedOnly {
		q = q.Where("approved = ?", true)
	}
	if err := q.Find(&merchants).Error; err != nil {
		return nil, err
	}
	return merchants, nil
}

func (r *merchantRepository) Update(ctx context.Context, merchant *model.Merchant) error {
	return r.db.WithContext(ctx).Save(merchant).Error
}

func (r *merchantRepository) SetApproved(ctx context.Context, id uint, approved bool) error {
	result := r.db.WithContext(ctx).Model(&model.Merchant{}).
		Where("id = ?", id).
		Update("approved", approved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
