package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"gorm.io/gorm"
)

// UserPeriodPoints is one row of the grouped point aggregation.
type UserPeriodPoints struct {
	UserID uuid.UUID
	Points int
}

// CheckInAward is the outcome of a committed check-in transaction.
type CheckInAward struct {
	First  bool
	Events []model.PointEvent
}

type PointsRepository interface {
	// RecordCheckIn performs the atomic check-in unit: the prior-existence
	// check, the unconditional CheckIn insert, the CHECKIN event, the
	// FIRST_CHECKIN_BONUS event at most once per (user, deal), and the
	// user's running totals. Eligibility checks belong to the caller.
	RecordCheckIn(ctx context.Context, checkIn *model.CheckIn, checkinPoints, bonusPoints int) (*CheckInAward, error)

	// SumPointsByUser aggregates event points per user over [start, end),
	// ordered points descending then user id ascending, truncated to limit.
	SumPointsByUser(ctx context.Context, start, end time.Time, limit int) ([]UserPeriodPoints, error)
	SumPointsForUser(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error)
	CountUsersAbove(ctx context.Context, start, end time.Time, points int) (int64, error)

	// TopUsersByCurrentMonth reads the denormalized running totals off the
	// user rows. Only valid when the queried window is now's month; rows
	// stamped with an earlier month are excluded.
	TopUsersByCurrentMonth(ctx context.Context, now time.Time, limit int) ([]model.User, error)
	CountUsersAboveCurrentMonth(ctx context.Context, now time.Time, points int) (int64, error)

	EventsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.PointEvent, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) RecordCheckIn(ctx context.Context, checkIn *model.CheckIn, checkinPoints, bonusPoints int) (*CheckInAward, error) {
	award := &CheckInAward{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior int64
		if err := tx.Model(&model.CheckIn{}).
			Where("user_id = ? AND deal_id = ?", checkIn.UserID, checkIn.DealID).
			Count(&prior).Error; err != nil {
			return err
		}
		award.First = prior == 0

		// The partial unique index on (user_id, deal_id, is_first) turns a
		// concurrent double-first into a constraint violation instead of a
		// double bonus. The losing transaction rolls back; the caller may
		// retry the whole call.
		if award.First {
			isFirst := true
			checkIn.IsFirst = &isFirst
		}

		now := checkIn.CreatedAt
		if now.IsZero() {
			now = time.Now().UTC()
			checkIn.CreatedAt = now
		}

		if err := tx.Create(checkIn).Error; err != nil {
			return err
		}

		dealID := checkIn.DealID

		if award.First && bonusPoints > 0 {
			bonus := model.PointEvent{
				UserID:    checkIn.UserID,
				Type:      model.EventFirstCheckinBonus,
				Points:    bonusPoints,
				DealID:    &dealID,
				CreatedAt: now,
			}
			if err := r.award(tx, &bonus); err != nil {
				return err
			}
			award.Events = append(award.Events, bonus)
		}

		event := model.PointEvent{
			UserID:    checkIn.UserID,
			Type:      model.EventCheckin,
			Points:    checkinPoints,
			DealID:    &dealID,
			CreatedAt: now,
		}
		if err := r.award(tx, &event); err != nil {
			return err
		}
		award.Events = append(award.Events, event)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return award, nil
}

// award appends one immutable event and bumps the owner's running totals.
// The current-month total rolls over lazily: the first award of a new month
// replaces the stale total instead of adding to it.
func (r *pointsRepository) award(tx *gorm.DB, event *model.PointEvent) error {
	if err := tx.Create(event).Error; err != nil {
		return err
	}

	stamp := model.MonthStamp(event.CreatedAt)

	return tx.Model(&model.User{}).
		Where("id = ?", event.UserID).
		UpdateColumns(map[string]interface{}{
			"lifetime_points": gorm.Expr("lifetime_points + ?", event.Points),
			"current_month_points": gorm.Expr(
				"CASE WHEN current_month = ? THEN current_month_points + ? ELSE ? END",
				stamp, event.Points, event.Points,
			),
			"current_month": stamp,
		}).Error
}

func (r *pointsRepository) SumPointsByUser(ctx context.Context, start, end time.Time, limit int) ([]UserPeriodPoints, error) {
	var results []UserPeriodPoints
	err := r.db.WithContext(ctx).Model(&model.PointEvent{}).
		Select("user_id, SUM(points) as points").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("user_id").
		Order("points DESC, user_id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pointsRepository) SumPointsForUser(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&model.PointEvent{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *pointsRepository) CountUsersAbove(ctx context.Context, start, end time.Time, points int) (int64, error) {
	sub := r.db.WithContext(ctx).Model(&model.PointEvent{}).
		Select("user_id").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("user_id").
		Having("SUM(points) > ?", points)

	var count int64
	if err := r.db.WithContext(ctx).Table("(?) as above", sub).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pointsRepository) TopUsersByCurrentMonth(ctx context.Context, now time.Time, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("current_month = ? AND current_month_points > 0", model.MonthStamp(now)).
		Order("current_month_points DESC, id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *pointsRepository) CountUsersAboveCurrentMonth(ctx context.Context, now time.Time, points int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("current_month = ? AND current_month_points > ?", model.MonthStamp(now), points).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pointsRepository) EventsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.PointEvent, error) {
	var events []model.PointEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
