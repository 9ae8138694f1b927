package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Name         *string   `gorm:"size:100" json:"name,omitempty"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`

	// Running point totals maintained by the point ledger. LifetimePoints is
	// monotonically non-decreasing. CurrentMonthPoints belongs to the UTC
	// month stamped in CurrentMonth; a stale stamp means the user earned
	// nothing this month yet and the total reads as zero.
	LifetimePoints     int    `gorm:"not null;default:0" json:"lifetime_points"`
	CurrentMonthPoints int    `gorm:"not null;default:0" json:"current_month_points"`
	CurrentMonth       string `gorm:"size:7;not null;default:''" json:"current_month"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// MonthStamp identifies a UTC calendar month for the denormalized totals.
const MonthStampLayout = "2006-01"

func MonthStamp(t time.Time) string {
	return t.UTC().Format(MonthStampLayout)
}

// MonthPoints returns the user's running total for now's month, or zero when
// the stamp shows the total belongs to an earlier month.
func (u *User) MonthPoints(now time.Time) int {
	if u.CurrentMonth != MonthStamp(now) {
		return 0
	}
	return u.CurrentMonthPoints
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
