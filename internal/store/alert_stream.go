package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

// AlertStreamKey is the Redis stream downstream consumers (dashboards,
// escalation workers) read alert events from.
const AlertStreamKey = "medico:alerts"

// AlertStream publishes alert events to a Redis stream. Publishing is
// best-effort and never affects the ingestion result.
type AlertStream struct {
	client *redis.Client
	logger *zap.Logger
}

// NewAlertStream creates the publisher.
func NewAlertStream(client *redis.Client, logger *zap.Logger) *AlertStream {
	return &AlertStream{client: client, logger: logger}
}

// Publish appends the alert to the stream and returns the entry id.
func (s *AlertStream) Publish(ctx context.Context, alert *domain.HealthAlert) (string, error) {
	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: AlertStreamKey,
		Values: map[string]interface{}{
			"alert_id":   alert.ID,
			"patient_id": alert.PatientID,
			"doctor_id":  alert.DoctorID,
			"reading_id": alert.ReadingID,
			"alert_type": string(alert.AlertType),
			"message":    alert.Message,
			"created_at": alert.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish alert to stream: %w", err)
	}
	s.logger.Debug("Published alert event",
		zap.String("alert_id", alert.ID),
		zap.String("stream_id", id),
	)
	return id, nil
}
