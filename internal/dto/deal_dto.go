package dto

import (
	"io"
	"time"
)

// ImageFile wraps an uploaded image stream.
type ImageFile struct {
	Reader   io.Reader
	FileName string
}

type CreateMerchantInput struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=2000"`
	Address     string   `json:"address" binding:"max=255"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
}

type UpdateMerchantInput struct {
	Name        *string  `json:"name" binding:"omitempty,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Address     *string  `json:"address" binding:"omitempty,max=255"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
}

type CreateDealInput struct {
	Title       string    `json:"title" binding:"required,max=150"`
	Description string    `json:"description" binding:"max=5000"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
}

type UpdateDealInput struct {
	Title       *string    `json:"title" binding:"omitempty,max=150"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

type DealQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
