package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/lokadeal/lokadeal-backend/pkg/apperror"
	"github.com/lokadeal/lokadeal-backend/pkg/storage"
	"gorm.io/gorm"
)

type DealService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input dto.CreateDealInput) (*model.Deal, error)
	GetByID(ctx context.Context, id uint) (*model.Deal, error)
	ListActive(ctx context.Context, query dto.DealQuery) ([]model.Deal, error)
	Update(ctx context.Context, ownerID uuid.UUID, dealID uint, input dto.UpdateDealInput) (*model.Deal, error)
	Delete(ctx context.Context, ownerID uuid.UUID, dealID uint) error
	UploadImage(ctx context.Context, ownerID uuid.UUID, dealID uint, image *dto.ImageFile) (*model.Deal, error)
}

type dealService struct {
	dealRepo     repository.DealRepository
	merchantRepo repository.MerchantRepository
	search       SearchService
	imageStorage storage.ImageStorage
	uploadFolder string
}

func NewDealService(
	dealRepo repository.DealRepository,
	merchantRepo repository.MerchantRepository,
	search SearchService,
	imageStorage storage.ImageStorage,
	uploadFolder string,
) DealService {
	return &dealService{
		dealRepo:     dealRepo,
		merchantRepo: merchantRepo,
		search:       search,
		imageStorage: imageStorage,
		uploadFolder: uploadFolder,
	}
}

func (s *dealService) Create(ctx context.Context, ownerID uuid.UUID, input dto.CreateDealInput) (*model.Deal, error) {
	merchant, err := s.ownMerchant(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !merchant.Approved {
		return nil, fmt.Errorf("%w: merchant is not approved", apperror.ErrForbidden)
	}

	if !input.EndTime.After(input.StartTime) {
		return nil, fmt.Errorf("%w: deal end time must be after start time", apperror.ErrInvalidInput)
	}

	deal := &model.Deal{
		MerchantID:  merchant.ID,
		Merchant:    *merchant,
		Title:       input.Title,
		Description: input.Description,
		StartTime:   input.StartTime.UTC(),
		EndTime:     input.EndTime.UTC(),
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, err
	}

	s.indexDeal(deal)
	return deal, nil
}

func (s *dealService) GetByID(ctx context.Context, id uint) (*model.Deal, error) {
	deal, err := s.dealRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return deal, nil
}

func (s *dealService) ListActive(ctx context.Context, query dto.DealQuery) ([]model.Deal, error) {
	limit := query.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	// A search term narrows the listing to index hits; index unavailability
	// degrades to the plain listing.
	if query.Search != "" && s.search != nil {
		ids, err := s.search.SearchDealIDs(query.Search, limit)
		if err == nil {
			deals := make([]model.Deal, 0, len(ids))
			now := time.Now().UTC()
			for _, id := range ids {
				deal, err := s.dealRepo.FindByID(ctx, id)
				if err != nil || !deal.Active(now) || !deal.Merchant.Approved {
					continue
				}
				deals = append(deals, *deal)
			}
			return deals, nil
		}
		log.Printf("Deal search degraded to listing: %v", err)
	}

	return s.dealRepo.FindActive(ctx, time.Now().UTC(), limit, query.Offset)
}

func (s *dealService) Update(ctx context.Context, ownerID uuid.UUID, dealID uint, input dto.UpdateDealInput) (*model.Deal, error) {
	deal, err := s.ownDeal(ctx, ownerID, dealID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		deal.Title = *input.Title
	}
	if input.Description != nil {
		deal.Description = *input.Description
	}
	if input.StartTime != nil {
		deal.StartTime = input.StartTime.UTC()
	}
	if input.EndTime != nil {
		deal.EndTime = input.EndTime.UTC()
	}
	if !deal.EndTime.After(deal.StartTime) {
		return nil, fmt.Errorf("%w: deal end time must be after start time", apperror.ErrInvalidInput)
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, err
	}

	s.indexDeal(deal)
	return deal, nil
}

func (s *dealService) Delete(ctx context.Context, ownerID uuid.UUID, dealID uint) error {
	deal, err := s.ownDeal(ctx, ownerID, dealID)
	if err != nil {
		return err
	}

	if err := s.dealRepo.Delete(ctx, deal.ID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteDeal(deal.ID); err != nil {
			log.Printf("Failed to remove deal from search index: %v", err)
		}
	}
	return nil
}

func (s *dealService) UploadImage(ctx context.Context, ownerID uuid.UUID, dealID uint, image *dto.ImageFile) (*model.Deal, error) {
	if image == nil || image.Reader == nil {
		return nil, fmt.Errorf("%w: image file is required", apperror.ErrInvalidInput)
	}
	if s.imageStorage == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", apperror.ErrInternal)
	}

	deal, err := s.ownDeal(ctx, ownerID, dealID)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, image.Reader, s.uploadFolder+"/deals", image.FileName)
	if err != nil {
		return nil, err
	}

	if deal.ImageURL != nil {
		if err := s.imageStorage.DeleteImage(ctx, *deal.ImageURL); err != nil {
			log.Printf("Failed to delete previous deal image: %v", err)
		}
	}

	deal.ImageURL = &url
	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *dealService) ownMerchant(ctx context.Context, ownerID uuid.UUID) (*model.Merchant, error) {
	merchant, err := s.merchantRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user owns no merchant", apperror.ErrNotFound)
		}
		return nil, err
	}
	return merchant, nil
}

func (s *dealService) ownDeal(ctx context.Context, ownerID uuid.UUID, dealID uint) (*model.Deal, error) {
	merchant, err := s.ownMerchant(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	deal, err := s.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.MerchantID != merchant.ID {
		return nil, apperror.ErrForbidden
	}
	return deal, nil
}

func (s *dealService) indexDeal(deal *model.Deal) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexDeal(deal); err != nil {
		log.Printf("Failed to index deal: %v", err)
	}
}
