package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/config"
	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/lokadeal/lokadeal-backend/pkg/apperror"
	"github.com/lokadeal/lokadeal-backend/pkg/geo"
	"github.com/redis/go-redis/v9"
)

type CheckInService interface {
	CheckIn(ctx context.Context, userID uuid.UUID, dealID uint, latitude, longitude float64) (*dto.CheckInResponse, error)
}

type checkInService struct {
	dealRepo   repository.DealRepository
	pointsRepo repository.PointsRepository
	cache      LeaderboardCache
	notifier   NotificationService
	redis      *redis.Client
	cfg        *config.Config
	now        func() time.Time
}

func NewCheckInService(
	dealRepo repository.DealRepository,
	pointsRepo repository.PointsRepository,
	lbCache LeaderboardCache,
	notifier NotificationService,
	redisClient *redis.Client,
	cfg *config.Config,
) CheckInService {
	return &checkInService{
		dealRepo:   dealRepo,
		pointsRepo: pointsRepo,
		cache:      lbCache,
		notifier:   notifier,
		redis:      redisClient,
		cfg:        cfg,
		now:        time.Now,
	}
}

// CheckIn validates proximity to the deal's merchant and, when the claimed
// coordinate is within the configured radius on an active deal, records the
// visit and awards points in a single transaction. Out-of-range and inactive
// attempts are successful calls that award nothing.
func (s *checkInService) CheckIn(ctx context.Context, userID uuid.UUID, dealID uint, latitude, longitude float64) (*dto.CheckInResponse, error) {
	deal, err := s.dealRepo.FindByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("%w: deal not found", apperror.ErrNotFound)
	}

	merchant := deal.Merchant
	if !merchant.Approved {
		return nil, fmt.Errorf("%w: merchant is not approved", apperror.ErrForbidden)
	}
	if merchant.Latitude == nil || merchant.Longitude == nil {
		return nil, fmt.Errorf("%w: merchant has no registered location", apperror.ErrNotFound)
	}

	now := s.now().UTC()

	distance := geo.HaversineMeters(latitude, longitude, *merchant.Latitude, *merchant.Longitude)
	distance = math.Round(distance*100) / 100

	resp := &dto.CheckInResponse{
		DealID:          deal.ID,
		MerchantID:      merchant.ID,
		UserID:          userID,
		DistanceMeters:  distance,
		WithinRange:     distance <= s.cfg.CheckinRadiusMeters,
		ThresholdMeters: s.cfg.CheckinRadiusMeters,
		DealActive:      deal.Active(now),
		PointEvents:     []dto.PointEventSummary{},
	}

	if !resp.DealActive || !resp.WithinRange {
		return resp, nil
	}

	if err := s.checkRateLimit(ctx, userID); err != nil {
		return nil, err
	}

	checkIn := &model.CheckIn{
		UserID:         userID,
		DealID:         deal.ID,
		MerchantID:     merchant.ID,
		Latitude:       latitude,
		Longitude:      longitude,
		DistanceMeters: distance,
	}

	award, err := s.pointsRepo.RecordCheckIn(ctx, checkIn, s.cfg.CheckinPoints, s.cfg.FirstCheckinBonus)
	if err != nil {
		return nil, err
	}

	resp.FirstCheckIn = award.First
	for _, event := range award.Events {
		resp.PointsAwarded += event.Points
		resp.PointEvents = append(resp.PointEvents, dto.PointEventSummary{
			ID:     event.ID,
			Type:   event.Type,
			Points: event.Points,
		})
	}

	// The committed award can move today's windows; drop their cached pages.
	if s.cache != nil {
		s.cache.Invalidate(PeriodDay, PeriodWeek, PeriodMonth)
	}

	if s.notifier != nil {
		s.notifier.PublishPointsAwarded(ctx, userID, award.Events, resp.PointsAwarded)
	}

	return resp, nil
}

// checkRateLimit guards the geofence endpoint with a redis SetNX lock per
// user. A nil redis client disables the limit.
func (s *checkInService) checkRateLimit(ctx context.Context, userID uuid.UUID) error {
	if s.redis == nil || s.cfg.CheckinRateLimit <= 0 {
		return nil
	}

	key := fmt.Sprintf("rate_limit:user:%s:checkin", userID.String())
	wasSet, err := s.redis.SetNX(ctx, key, "locked", s.cfg.CheckinRateLimit).Result()
	if err != nil {
		// A broken limiter must not block check-ins.
		return nil
	}
	if !wasSet {
		return fmt.Errorf("%w: please wait before checking in again", apperror.ErrRateLimitExceeded)
	}
	return nil
}
