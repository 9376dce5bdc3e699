package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"medico-vitals/internal/config"
	"medico-vitals/internal/domain"
	"medico-vitals/internal/service"
)

// vitalsPayload is the JSON body devices publish to
// medico/devices/<deviceId>/vitals. The device id in the payload is
// optional; the topic segment wins when both are present.
type vitalsPayload struct {
	DeviceID    string  `json:"deviceId"`
	HeartRate   int     `json:"heartRate"`
	SpO2        int     `json:"spo2"`
	Temperature float64 `json:"temperature"`
}

// VitalsBroker subscribes to the device vitals topic and feeds each
// sample into the ingestion pipeline.
type VitalsBroker struct {
	client mqtt.Client
	cfg    *config.MQTTConfig
	vitals service.VitalService
	logger *zap.Logger
}

// NewVitalsBroker connects to the broker. Call Subscribe to start
// consuming and Disconnect on shutdown.
func NewVitalsBroker(cfg *config.MQTTConfig, vitals service.VitalService, logger *zap.Logger) (*VitalsBroker, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("Lost MQTT connection", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &VitalsBroker{
		client: client,
		cfg:    cfg,
		vitals: vitals,
		logger: logger,
	}, nil
}

// Subscribe starts consuming the vitals topic filter.
func (b *VitalsBroker) Subscribe() error {
	token := b.client.Subscribe(b.cfg.VitalsTopic, b.cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		if err := b.handleMessage(msg.Topic(), msg.Payload()); err != nil {
			b.logger.Warn("Failed to process vitals message",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.cfg.VitalsTopic, token.Error())
	}
	b.logger.Info("Subscribed to vitals topic", zap.String("topic", b.cfg.VitalsTopic))
	return nil
}

func (b *VitalsBroker) handleMessage(topic string, payload []byte) error {
	var body vitalsPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return fmt.Errorf("invalid vitals payload: %w", err)
	}

	deviceID := deviceIDFromTopic(topic)
	if deviceID == "" {
		deviceID = body.DeviceID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := b.vitals.IngestReading(ctx, service.IngestRequest{
		DeviceID:    deviceID,
		HeartRate:   body.HeartRate,
		SpO2:        body.SpO2,
		Temperature: body.Temperature,
	})
	if err != nil {
		// A sample from an unbound device is expected churn, not a
		// processing failure.
		if errors.Is(err, domain.ErrNoActiveBinding) {
			b.logger.Debug("Dropped vitals from unbound device", zap.String("device_id", deviceID))
			return nil
		}
		return err
	}

	b.logger.Debug("Ingested vitals over MQTT",
		zap.String("device_id", deviceID),
		zap.String("reading_id", result.ReadingID),
		zap.String("risk_level", string(result.RiskLevel)),
	)
	return nil
}

// deviceIDFromTopic extracts <deviceId> from
// medico/devices/<deviceId>/vitals. Returns "" for any other shape.
func deviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[3] != "vitals" {
		return ""
	}
	return parts[2]
}

// Disconnect drains the client.
func (b *VitalsBroker) Disconnect() {
	b.client.Disconnect(250)
}

// IsConnected reports broker connectivity, for health checks.
func (b *VitalsBroker) IsConnected() bool {
	return b.client.IsConnected()
}
