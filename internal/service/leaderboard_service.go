package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/lokadeal/lokadeal-backend/pkg/apperror"
	"github.com/lokadeal/lokadeal-backend/pkg/cache"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

// LeaderboardCache is the cache contract the aggregator depends on. The
// production implementation is pkg/cache; tests may inject a no-op.
type LeaderboardCache interface {
	Get(key string) ([]dto.LeaderboardRow, bool)
	Set(key, granularity string, rows []dto.LeaderboardRow)
	Invalidate(tags ...string)
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, query dto.LeaderboardQuery, selfUserID *uuid.UUID) (*dto.LeaderboardResponse, error)
}

type leaderboardService struct {
	pointsRepo repository.PointsRepository
	userRepo   repository.UserRepository
	cache      LeaderboardCache
	now        func() time.Time
}

func NewLeaderboardService(pointsRepo repository.PointsRepository, userRepo repository.UserRepository, lbCache LeaderboardCache) LeaderboardService {
	return &leaderboardService{
		pointsRepo: pointsRepo,
		userRepo:   userRepo,
		cache:      lbCache,
		now:        time.Now,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, query dto.LeaderboardQuery, selfUserID *uuid.UUID) (*dto.LeaderboardResponse, error) {
	now := s.now().UTC()

	req, limit, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	period, err := ResolvePeriod(now, req)
	if err != nil {
		return nil, err
	}

	key := cache.BuildKey(map[string]string{
		"granularity": period.Granularity,
		"start":       period.Start.Format(time.RFC3339),
		"end":         period.EndExclusive.Format(time.RFC3339),
		"limit":       fmt.Sprintf("%d", limit),
	})

	rows, hit := s.cacheGet(key)
	if !hit {
		rows, err = s.aggregate(ctx, period, now, limit)
		if err != nil {
			return nil, err
		}
		ApplyCompetitionRanks(rows)
		s.cacheSet(key, period.Granularity, rows)
	}

	resp := &dto.LeaderboardResponse{
		Period: dto.PeriodInfo{
			Granularity:  period.Granularity,
			Start:        period.Start,
			EndExclusive: period.EndExclusive,
			Label:        period.Label,
		},
		Top: rows,
	}

	includeSelf := query.IncludeSelf == nil || *query.IncludeSelf
	if includeSelf && selfUserID != nil {
		me, err := s.selfPosition(ctx, period, now, rows, *selfUserID)
		if err != nil {
			return nil, err
		}
		resp.Me = me
	}

	return resp, nil
}

func normalizeQuery(query dto.LeaderboardQuery) (PeriodRequest, int, error) {
	limit := query.Limit
	if limit == 0 {
		limit = defaultLeaderboardLimit
	}
	if limit < 1 || limit > maxLeaderboardLimit {
		return PeriodRequest{}, 0, fmt.Errorf("%w: limit must be between 1 and %d", apperror.ErrInvalidInput, maxLeaderboardLimit)
	}

	granularity := query.Period
	if granularity == "" {
		granularity = PeriodMonth
	}

	req := PeriodRequest{
		Granularity: granularity,
		Year:        query.Year,
		Month:       query.Month,
	}

	if granularity == PeriodCustom {
		from, err := parseTimeParam(query.From)
		if err != nil {
			return PeriodRequest{}, 0, fmt.Errorf("%w: invalid from date", apperror.ErrInvalidInput)
		}
		to, err := parseTimeParam(query.To)
		if err != nil {
			return PeriodRequest{}, 0, fmt.Errorf("%w: invalid to date", apperror.ErrInvalidInput)
		}
		req.From = from
		req.To = to
	}

	return req, limit, nil
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// aggregate computes the unranked top rows for the window. The fast path
// reads the denormalized running totals; every other window sums raw events.
func (s *leaderboardService) aggregate(ctx context.Context, period Period, now time.Time, limit int) ([]dto.LeaderboardRow, error) {
	if period.IsCurrentMonth(now) {
		users, err := s.pointsRepo.TopUsersByCurrentMonth(ctx, now, limit)
		if err != nil {
			return nil, err
		}

		rows := make([]dto.LeaderboardRow, 0, len(users))
		for _, u := range users {
			rows = append(rows, dto.LeaderboardRow{
				UserID:       u.ID,
				Name:         u.Name,
				PeriodPoints: u.MonthPoints(now),
				TotalPoints:  u.LifetimePoints,
			})
		}
		return rows, nil
	}

	sums, err := s.pointsRepo.SumPointsByUser(ctx, period.Start, period.EndExclusive, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(sums))
	for _, sum := range sums {
		ids = append(ids, sum.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]userMeta, len(users))
	for _, u := range users {
		byID[u.ID] = userMeta{name: u.Name, lifetime: u.LifetimePoints}
	}

	rows := make([]dto.LeaderboardRow, 0, len(sums))
	for _, sum := range sums {
		u := byID[sum.UserID]
		rows = append(rows, dto.LeaderboardRow{
			UserID:       sum.UserID,
			Name:         u.name,
			PeriodPoints: sum.Points,
			TotalPoints:  u.lifetime,
		})
	}
	return rows, nil
}

type userMeta struct {
	name     *string
	lifetime int
}

// selfPosition resolves the requesting user's own rank. A user already in
// the top rows is reused as-is; otherwise the rank is one more than the
// number of users with strictly more points in the window. Zero points in
// the window yields rank 0 rather than omitting the user.
func (s *leaderboardService) selfPosition(ctx context.Context, period Period, now time.Time, top []dto.LeaderboardRow, selfID uuid.UUID) (*dto.LeaderboardSelf, error) {
	for _, row := range top {
		if row.UserID == selfID {
			return &dto.LeaderboardSelf{LeaderboardRow: row, InTop: true}, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, selfID.String())
	if err != nil {
		return nil, err
	}

	var points int
	if period.IsCurrentMonth(now) {
		points = user.MonthPoints(now)
	} else {
		points, err = s.pointsRepo.SumPointsForUser(ctx, selfID, period.Start, period.EndExclusive)
		if err != nil {
			return nil, err
		}
	}

	me := &dto.LeaderboardSelf{
		LeaderboardRow: dto.LeaderboardRow{
			UserID:       selfID,
			Name:         user.Name,
			PeriodPoints: points,
			TotalPoints:  user.LifetimePoints,
		},
	}

	if points == 0 {
		return me, nil
	}

	var above int64
	if period.IsCurrentMonth(now) {
		above, err = s.pointsRepo.CountUsersAboveCurrentMonth(ctx, now, points)
	} else {
		above, err = s.pointsRepo.CountUsersAbove(ctx, period.Start, period.EndExclusive, points)
	}
	if err != nil {
		return nil, err
	}

	me.Rank = int(above) + 1
	return me, nil
}

// Cache problems must never fail a read; a broken cache degrades to a miss.
func (s *leaderboardService) cacheGet(key string) ([]dto.LeaderboardRow, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *leaderboardService) cacheSet(key, granularity string, rows []dto.LeaderboardRow) {
	if s.cache == nil {
		return
	}
	s.cache.Set(key, granularity, rows)
}
