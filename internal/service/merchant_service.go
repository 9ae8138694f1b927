package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/lokadeal/lokadeal-backend/pkg/apperror"
	"gorm.io/gorm"
)

type MerchantService interface {
	Register(ctx context.Context, ownerID uuid.UUID, input dto.CreateMerchantInput) (*model.Merchant, error)
	GetOwn(ctx context.Context, ownerID uuid.UUID) (*model.Merchant, error)
	Update(ctx context.Context, ownerID uuid.UUID, input dto.UpdateMerchantInput) (*model.Merchant, error)
	ListPending(ctx context.Context) ([]model.Merchant, error)
	Approve(ctx context.Context, merchantID uint, approved bool) error
}

type merchantService struct {
	repo repository.MerchantRepository
}

func NewMerchantService(repo repository.MerchantRepository) MerchantService {
	return &merchantService{repo: repo}
}

func (s *merchantService) Register(ctx context.Context, ownerID uuid.UUID, input dto.CreateMerchantInput) (*model.Merchant, error) {
	if _, err := s.repo.FindByOwner(ctx, ownerID); err == nil {
		return nil, fmt.Errorf("%w: user already owns a merchant", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	merchant := &model.Merchant{
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	}

	if err := s.repo.Create(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

func (s *merchantService) GetOwn(ctx context.Context, ownerID uuid.UUID) (*model.Merchant, error) {
	merchant, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return merchant, nil
}

func (s *merchantService) Update(ctx context.Context, ownerID uuid.UUID, input dto.UpdateMerchantInput) (*model.Merchant, error) {
	merchant, err := s.GetOwn(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		merchant.Name = *input.Name
	}
	if input.Description != nil {
		merchant.Description = *input.Description
	}
	if input.Address != nil {
		merchant.Address = *input.Address
	}
	if input.Latitude != nil {
		merchant.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		merchant.Longitude = input.Longitude
	}

	if err := s.repo.Update(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

func (s *merchantService) ListPending(ctx context.Context) ([]model.Merchant, error) {
	merchants, err := s.repo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}

	pending := merchants[:0]
	for _, m := range merchants {
		if !m.Approved {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func (s *merchantService) Approve(ctx context.Context, merchantID uint, approved bool) error {
	if err := s.repo.SetApproved(ctx, merchantID, approved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return nil
}
