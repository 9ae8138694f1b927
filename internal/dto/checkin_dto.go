package dto

import "github.com/google/uuid"

type CheckInInput struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
}

type PointEventSummary struct {
	ID     uint   `json:"id"`
	Type   string `json:"type"`
	Points int    `json:"points"`
}

// CheckInResponse reports the full outcome of a check-in attempt. An
// out-of-range attempt is a successful call with WithinRange=false and no
// points awarded.
type CheckInResponse struct {
	DealID          uint                `json:"deal_id"`
	MerchantID      uint                `json:"merchant_id"`
	UserID          uuid.UUID           `json:"user_id"`
	DistanceMeters  float64             `json:"distance_meters"`
	WithinRange     bool                `json:"within_range"`
	ThresholdMeters float64             `json:"threshold_meters"`
	DealActive      bool                `json:"deal_active"`
	PointsAwarded   int                 `json:"points_awarded"`
	FirstCheckIn    bool                `json:"first_check_in"`
	PointEvents     []PointEventSummary `json:"point_events"`
}
