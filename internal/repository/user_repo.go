package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	// Create inserts the user and, when signupPoints > 0, the SIGNUP point
	// event plus the user's starting totals, in one transaction.
	Create(ctx context.Context, user *model.User, signupPoints int) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User, signupPoints int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if signupPoints > 0 {
			user.LifetimePoints = signupPoints
			user.CurrentMonthPoints = signupPoints
			user.CurrentMonth = model.MonthStamp(now)
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if signupPoints > 0 {
			event := &model.PointEvent{
				UserID:    user.ID,
				Type:      model.EventSignup,
				Points:    signupPoints,
				CreatedAt: now,
			}
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Find(&users, ids).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
