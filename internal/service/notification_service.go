package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// NotificationService publishes point-award notifications for asynchronous
// consumers (e.g. a push or email worker). Publishing is fire-and-forget:
// the check-in response never waits on delivery.
type NotificationService interface {
	PublishPointsAwarded(ctx context.Context, userID uuid.UUID, events []model.PointEvent, totalAwarded int)
}

type notificationService struct {
	redisClient *redis.Client
}

func NewNotificationService(redisClient *redis.Client) NotificationService {
	return &notificationService{redisClient: redisClient}
}

type pointsAwardedMessage struct {
	UserID       uuid.UUID `json:"user_id"`
	TotalAwarded int       `json:"total_awarded"`
	EventTypes   []string  `json:"event_types"`
	AwardedAt    time.Time `json:"awarded_at"`
}

func (s *notificationService) PublishPointsAwarded(ctx context.Context, userID uuid.UUID, events []model.PointEvent, totalAwarded int) {
	if s.redisClient == nil {
		return
	}

	msg := pointsAwardedMessage{
		UserID:       userID,
		TotalAwarded: totalAwarded,
		AwardedAt:    time.Now().UTC(),
	}
	for _, event := range events {
		msg.EventTypes = append(msg.EventTypes, event.Type)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	channel := fmt.Sprintf("user_points:%s", userID.String())
	if err := s.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("Failed to publish points notification for user %s: %v", userID, err)
	}
}
