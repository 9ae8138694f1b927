package model

import (
	"time"

	"github.com/google/uuid"
)

type Merchant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"-"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `gorm:"size:255" json:"address"`

	// Registered storefront coordinates; nil until the merchant supplies
	// them. Check-ins cannot be validated without both set.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Approved  bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Deal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MerchantID  uint      `gorm:"index;not null" json:"merchant_id"`
	Merchant    Merchant  `gorm:"foreignKey:MerchantID" json:"merchant"`
	Title       string    `gorm:"size:150;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"type:text" json:"image_url,omitempty"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null;index" json:"end_time"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Active reports whether the deal is running at t.
func (d *Deal) Active(t time.Time) bool {
	return !t.Before(d.StartTime) && !t.After(d.EndTime)
}
