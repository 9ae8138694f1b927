package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSignup            = "SIGNUP"
	EventCheckin           = "CHECKIN"
	EventFirstCheckinBonus = "FIRST_CHECKIN_BONUS"
)

// PointEvent is the append-only ledger of point awards. Rows are never
// updated or deleted; a user's lifetime total always equals the sum of their
// events' points.
type PointEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_event_user_date,priority:1;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Type      string    `gorm:"size:40;not null" json:"type"`
	Points    int       `gorm:"not null" json:"points"`
	DealID    *uint     `gorm:"index" json:"deal_id,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_event_user_date,priority:2;index:idx_event_date" json:"created_at"`
}

// CheckIn records one geofence-validated visit. Append-only; a user may check
// in to the same deal many times, but only the first row per (user, deal)
// carries IsFirst, guarded by the partial unique index below (NULLs do not
// collide, so repeat check-ins leave IsFirst nil).
type CheckIn struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index:idx_checkin_user_deal,priority:1;index:idx_first_checkin,unique,priority:1;not null" json:"user_id"`
	DealID         uint      `gorm:"index:idx_checkin_user_deal,priority:2;index:idx_first_checkin,unique,priority:2;not null" json:"deal_id"`
	MerchantID     uint      `gorm:"index;not null" json:"merchant_id"`
	Latitude       float64   `gorm:"not null" json:"latitude"`
	Longitude      float64   `gorm:"not null" json:"longitude"`
	DistanceMeters float64   `gorm:"not null" json:"distance_meters"`
	IsFirst        *bool     `gorm:"index:idx_first_checkin,unique,priority:3" json:"is_first,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
