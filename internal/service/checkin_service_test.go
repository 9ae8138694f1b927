package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/lokadeal/lokadeal-backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	merchantLat = -6.2088
	merchantLon = 106.8456
)

// metersToLatDegrees converts a distance along a meridian to degrees of
// latitude, matching the haversine Earth radius.
func metersToLatDegrees(meters float64) float64 {
	return meters / (6371000.0 * math.Pi / 180.0)
}

type checkinFixture struct {
	db    *gorm.DB
	svc   CheckInService
	cache *stubCache
	user  *model.User
	deal  *model.Deal
}

func newCheckinFixture(t *testing.T) *checkinFixture {
	t.Helper()

	db := newTestDB(t)
	now := time.Now().UTC()

	merchant := createMerchant(t, db, true, floatPtr(merchantLat), floatPtr(merchantLon))
	deal := createDeal(t, db, merchant.ID, now.Add(-time.Hour), now.Add(time.Hour))
	user := createUser(t, db, "alice@example.com", 50)

	dealRepo := repository.NewDealRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	lbCache := newStubCache()

	svc := NewCheckInService(dealRepo, pointsRepo, lbCache, nil, nil, testConfig())

	return &checkinFixture{
		db:    db,
		svc:   svc,
		cache: lbCache,
		user:  user,
		deal:  deal,
	}
}

func (f *checkinFixture) eventCount(t *testing.T, eventType string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&model.PointEvent{}).
		Where("user_id = ? AND type = ?", f.user.ID, eventType).
		Count(&count).Error)
	return count
}

func (f *checkinFixture) reloadUser(t *testing.T) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, f.db.First(&user, "id = ?", f.user.ID).Error)
	return &user
}

func TestCheckIn_SignupThenFirstCheckIn(t *testing.T) {
	f := newCheckinFixture(t)

	res, err := f.svc.CheckIn(context.Background(), f.user.ID, f.deal.ID, merchantLat, merchantLon)
	require.NoError(t, err)

	assert.True(t, res.WithinRange)
	assert.True(t, res.DealActive)
	assert.True(t, res.FirstCheckIn)
	assert.Equal(t, 35, res.PointsAwarded)
	require.Len(t, res.PointEvents, 2)
	assert.Equal(t, model.EventFirstCheckinBonus, res.PointEvents[0].Type)
	assert.Equal(t, model.EventCheckin, res.PointEvents[1].Type)

	user := f.reloadUser(t)
	assert.Equal(t, 85, user.LifetimePoints, "signup 50 + checkin 10 + bonus 25")
	assert.Equal(t, 85, user.CurrentMonthPoints)

	assert.EqualValues(t, 1, f.eventCount(t, model.EventSignup))
	assert.EqualValues(t, 1, f.eventCount(t, model.EventFirstCheckinBonus))
	assert.EqualValues(t, 1, f.eventCount(t, model.EventCheckin))
}

func TestCheckIn_SecondCheckInSameDealSkipsBonus(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.user.ID, f.deal.ID, merchantLat, merchantLon)
	require.NoError(t, err)

	res, err := f.svc.CheckIn(ctx, f.user.ID, f.deal.ID, merchantLat, merchantLon)
	require.NoError(t, err)

	assert.False(t, res.FirstCheckIn)
	assert.Equal(t, 10, res.PointsAwarded)
	require.Len(t, res.PointEvents, 1)
	assert.Equal(t, model.EventCheckin, res.PointEvents[0].Type)

	assert.EqualValues(t, 1, f.eventCount(t, model.EventFirstCheckinBonus), "bonus must be granted at most once per (user, deal)")
	assert.EqualValues(t, 2, f.eventCount(t, model.EventCheckin))
	assert.Equal(t, 95, f.reloadUser(t).LifetimePoints)
}

func TestCheckIn_OutOfRangeAwardsNothing(t *testing.T) {
	f := newCheckinFixture(t)

	// Roughly 15 km north of the merchant.
	farLat := merchantLat + metersToLatDegrees(15000)
	res, err := f.svc.CheckIn(context.Background(), f.user.ID, f.deal.ID, farLat, merchantLon)
	require.NoError(t, err)

	assert.False(t, res.WithinRange)
	assert.Equal(t, 0, res.PointsAwarded)
	assert.Empty(t, res.PointEvents)
	assert.InDelta(t, 15000, res.DistanceMeters, 50)

	assert.EqualValues(t, 0, f.eventCount(t, model.EventCheckin))
	assert.Equal(t, 50, f.reloadUser(t).LifetimePoints, "only the signup award remains")
}

func TestCheckIn_GeofenceBoundary(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	// Exactly at the configured radius: still within range.
	atRadius := merchantLat + metersToLatDegrees(100)
	res, err := f.svc.CheckIn(ctx, f.user.ID, f.deal.ID, atRadius, merchantLon)
	require.NoError(t, err)
	assert.True(t, res.WithinRange)
	assert.InDelta(t, 100, res.DistanceMeters, 0.01)

	// A couple of meters past the radius: out of range.
	pastRadius := merchantLat + metersToLatDegrees(103)
	res, err = f.svc.CheckIn(ctx, f.user.ID, f.deal.ID, pastRadius, merchantLon)
	require.NoError(t, err)
	assert.False(t, res.WithinRange)
}

func TestCheckIn_InactiveDealAwardsNothing(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	merchant := createMerchant(t, db, true, floatPtr(merchantLat), floatPtr(merchantLon))
	deal := createDeal(t, db, merchant.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	user := createUser(t, db, "bob@example.com", 50)

	svc := NewCheckInService(repository.NewDealRepository(db), repository.NewPointsRepository(db), nil, nil, nil, testConfig())

	res, err := svc.CheckIn(context.Background(), user.ID, deal.ID, merchantLat, merchantLon)
	require.NoError(t, err)

	assert.False(t, res.DealActive)
	assert.Equal(t, 0, res.PointsAwarded)
	assert.Empty(t, res.PointEvents)
}

func TestCheckIn_MissingDeal(t *testing.T) {
	f := newCheckinFixture(t)

	_, err := f.svc.CheckIn(context.Background(), f.user.ID, 9999, merchantLat, merchantLon)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCheckIn_UnapprovedMerchant(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	merchant := createMerchant(t, db, false, floatPtr(merchantLat), floatPtr(merchantLon))
	deal := createDeal(t, db, merchant.ID, now.Add(-time.Hour), now.Add(time.Hour))
	user := createUser(t, db, "carol@example.com", 50)

	svc := NewCheckInService(repository.NewDealRepository(db), repository.NewPointsRepository(db), nil, nil, nil, testConfig())

	_, err := svc.CheckIn(context.Background(), user.ID, deal.ID, merchantLat, merchantLon)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCheckIn_MerchantWithoutCoordinates(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	merchant := createMerchant(t, db, true, nil, nil)
	deal := createDeal(t, db, merchant.ID, now.Add(-time.Hour), now.Add(time.Hour))
	user := createUser(t, db, "dave@example.com", 50)

	svc := NewCheckInService(repository.NewDealRepository(db), repository.NewPointsRepository(db), nil, nil, nil, testConfig())

	_, err := svc.CheckIn(context.Background(), user.ID, deal.ID, merchantLat, merchantLon)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRecordCheckIn_NewMonthResetsRunningTotal(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	// Signup this month: lifetime 50, current month 50.
	require.Equal(t, 50, f.reloadUser(t).CurrentMonthPoints)

	nextMonth := time.Now().UTC().AddDate(0, 1, 0)
	pointsRepo := repository.NewPointsRepository(f.db)
	award, err := pointsRepo.RecordCheckIn(ctx, &model.CheckIn{
		UserID:     f.user.ID,
		DealID:     f.deal.ID,
		MerchantID: f.deal.MerchantID,
		Latitude:   merchantLat,
		Longitude:  merchantLon,
		CreatedAt:  nextMonth,
	}, 10, 25)
	require.NoError(t, err)
	require.True(t, award.First)

	user := f.reloadUser(t)
	assert.Equal(t, 85, user.LifetimePoints, "lifetime keeps accumulating across months")
	assert.Equal(t, 35, user.CurrentMonthPoints, "the first award of a month replaces the stale total")
	assert.Equal(t, model.MonthStamp(nextMonth), user.CurrentMonth)
	assert.Equal(t, 0, user.MonthPoints(time.Now().UTC()), "a stale stamp reads as zero")
	assert.Equal(t, 35, user.MonthPoints(nextMonth))
}

func TestCheckIn_InvalidatesTodayWindows(t *testing.T) {
	f := newCheckinFixture(t)

	_, err := f.svc.CheckIn(context.Background(), f.user.ID, f.deal.ID, merchantLat, merchantLon)
	require.NoError(t, err)

	require.Len(t, f.cache.invalidated, 1)
	assert.ElementsMatch(t, []string{PeriodDay, PeriodWeek, PeriodMonth}, f.cache.invalidated[0])
}

func TestCheckIn_OutOfRangeDoesNotTouchCache(t *testing.T) {
	f := newCheckinFixture(t)

	farLat := merchantLat + metersToLatDegrees(5000)
	_, err := f.svc.CheckIn(context.Background(), f.user.ID, f.deal.ID, farLat, merchantLon)
	require.NoError(t, err)

	assert.Empty(t, f.cache.invalidated)
}
