package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/config"
	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Merchant{},
		&model.Deal{},
		&model.PointEvent{},
		&model.CheckIn{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SignupPoints:        50,
		CheckinPoints:       10,
		FirstCheckinBonus:   25,
		CheckinRadiusMeters: 100,
	}
}

func createUser(t *testing.T, db *gorm.DB, email string, signupPoints int) *model.User {
	t.Helper()

	repo := repository.NewUserRepository(db)
	name := "Test User"
	user := &model.User{Email: email, PasswordHash: "x", Name: &name}
	require.NoError(t, repo.Create(context.Background(), user, signupPoints))
	return user
}

func createMerchant(t *testing.T, db *gorm.DB, approved bool, lat, lon *float64) *model.Merchant {
	t.Helper()

	owner := createUser(t, db, fmt.Sprintf("owner-%s@example.com", uuid.NewString()), 0)
	merchant := &model.Merchant{
		OwnerID:   owner.ID,
		Name:      "Kopi Senja",
		Approved:  approved,
		Latitude:  lat,
		Longitude: lon,
	}
	require.NoError(t, db.Create(merchant).Error)
	return merchant
}

func createDeal(t *testing.T, db *gorm.DB, merchantID uint, start, end time.Time) *model.Deal {
	t.Helper()

	deal := &model.Deal{
		MerchantID: merchantID,
		Title:      "Buy one get one",
		StartTime:  start,
		EndTime:    end,
	}
	require.NoError(t, db.Create(deal).Error)
	return deal
}

func floatPtr(v float64) *float64 { return &v }

// stubCache records cache traffic for assertions.
type stubCache struct {
	store       map[string][]dto.LeaderboardRow
	granularity map[string]string
	sets        int
	invalidated [][]string
}

func newStubCache() *stubCache {
	return &stubCache{
		store:       make(map[string][]dto.LeaderboardRow),
		granularity: make(map[string]string),
	}
}

func (c *stubCache) Get(key string) ([]dto.LeaderboardRow, bool) {
	rows, ok := c.store[key]
	return rows, ok
}

func (c *stubCache) Set(key, granularity string, rows []dto.LeaderboardRow) {
	c.store[key] = rows
	c.granularity[key] = granularity
	c.sets++
}

func (c *stubCache) Invalidate(tags ...string) {
	c.invalidated = append(c.invalidated, tags)
	if len(tags) == 0 {
		c.store = make(map[string][]dto.LeaderboardRow)
		return
	}
	for key, g := range c.granularity {
		for _, tag := range tags {
			if g == tag {
				delete(c.store, key)
			}
		}
	}
}
