package repository

import (
	"context"
	"time"

	"github.com/lokadeal/lokadeal-backend/internal/model"
	"gorm.io/gorm"
)

type DealRepository interface {
	Create(ctx context.Context, deal *model.Deal) error
	FindByID(ctx context.Context, id uint) (*model.Deal, error)
	FindActive(ctx context.Context, now time.Time, limit, offset int) ([]model.Deal, error)
	FindByMerchant(ctx context.Context, merchantID uint) ([]model.Deal, error)
	Update(ctx context.Context, deal *model.Deal) error
	Delete(ctx context.Context, id uint) error
}

type dealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(ctx context.Context, deal *model.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *dealRepository) FindByID(ctx context.Context, id uint) (*model.Deal, error) {
	var deal model.Deal
	if err := r.db.WithContext(ctx).Preload("Merchant").First(&deal, id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// FindActive lists running deals of approved merchants, newest first.
func (r *dealRepository) FindActive(ctx context.Context, now time.Time, limit, offset int) ([]model.Deal, error) {
	var deals []model.Deal
	err := r.db.WithContext(ctx).
		Preload("Merchant").
		Joins("JOIN merchants ON merchants.id = deals.merchant_id AND merchants.approved = ?", true).
		Where("deals.start_time <= ? AND deals.end_time >= ?", now, now).
		Order("deals.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&deals).Error
	if err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *dealRepository) FindByMerchant(ctx context.Context, merchantID uint) ([]model.Deal, error) {
	var deals []model.Deal
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&deals).Error
	if err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *dealRepository) Update(ctx context.Context, deal *model.Deal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

func (r *dealRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Deal{}, id).Error
}
