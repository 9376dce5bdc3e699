package notify

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

// Message is one push notification.
type Message struct {
	Title string
	Body  string
	Data  map[string]any
}

// Dispatcher delivers doctor notifications. Delivery is fire-and-
// forget: failures are logged and dropped, never surfaced to the
// ingestion pipeline.
type Dispatcher interface {
	SendCriticalAlert(ctx context.Context, doctor *domain.Doctor, patient *domain.Patient, message string)
	SendWarningAlert(ctx context.Context, doctor *domain.Doctor, patient *domain.Patient, message string)
}

// ExpoDispatcher sends push messages through the Expo push service.
type ExpoDispatcher struct {
	client  *resty.Client
	pushURL string
	logger  *zap.Logger
}

// NewExpoDispatcher creates the dispatcher.
func NewExpoDispatcher(pushURL string, logger *zap.Logger) *ExpoDispatcher {
	return &ExpoDispatcher{
		client:  resty.New(),
		pushURL: pushURL,
		logger:  logger,
	}
}

// SendCriticalAlert notifies the doctor about a critical reading.
func (d *ExpoDispatcher) SendCriticalAlert(ctx context.Context, doctor *domain.Doctor, patient *domain.Patient, message string) {
	d.send(ctx, doctor, Message{
		Title: "🚨 Critical Alert: " + patient.FullName,
		Body:  message,
		Data: map[string]any{
			"patientId": patient.ID,
			"alertType": string(domain.AlertCritical),
			"screen":    "PatientDetail",
		},
	})
}

// SendWarningAlert notifies the doctor about a moderate reading.
func (d *ExpoDispatcher) SendWarningAlert(ctx context.Context, doctor *domain.Doctor, patient *domain.Patient, message string) {
	d.send(ctx, doctor, Message{
		Title: "⚠️ Warning: " + patient.FullName,
		Body:  message,
		Data: map[string]any{
			"patientId": patient.ID,
			"alertType": string(domain.AlertWarning),
			"screen":    "PatientDetail",
		},
	})
}

func (d *ExpoDispatcher) send(ctx context.Context, doctor *domain.Doctor, msg Message) {
	if !doctor.ExpoPushToken.Valid || doctor.ExpoPushToken.String == "" {
		d.logger.Warn("Doctor has no push token registered",
			zap.String("doctor_id", doctor.ID),
		)
		return
	}

	payload := map[string]any{
		"to":        doctor.ExpoPushToken.String,
		"title":     msg.Title,
		"body":      msg.Body,
		"data":      msg.Data,
		"sound":     "default",
		"priority":  "high",
		"channelId": "medico-alerts",
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(d.pushURL)
	if err != nil {
		d.logger.Error("Failed to send push notification",
			zap.String("doctor_id", doctor.ID),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		d.logger.Error("Expo push service rejected notification",
			zap.String("doctor_id", doctor.ID),
			zap.Int("status", resp.StatusCode()),
			zap.String("response", fmt.Sprintf("%.512s", resp.String())),
		)
		return
	}

	d.logger.Info("Push notification sent",
		zap.String("doctor_id", doctor.ID),
		zap.String("title", msg.Title),
	)
}

// NopDispatcher drops every notification. Used when push is disabled
// and in tests.
type NopDispatcher struct{}

func (NopDispatcher) SendCriticalAlert(context.Context, *domain.Doctor, *domain.Patient, string) {}
func (NopDispatcher) SendWarningAlert(context.Context, *domain.Doctor, *domain.Patient, string)  {}
