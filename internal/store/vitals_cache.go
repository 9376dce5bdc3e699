package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

const (
	latestVitalsKeyPrefix = "vitals:patient:"
	latestVitalsKeySuffix = ":latest"
	latestVitalsTTL       = 30 * time.Second
)

// VitalsCache keeps the latest classified reading per patient in
// Redis so dashboards can poll without hitting PostgreSQL. It is a
// best-effort cache: the database stays authoritative.
type VitalsCache struct {
	kv     KVStore
	logger *zap.Logger
}

// NewVitalsCache creates the cache.
func NewVitalsCache(kv KVStore, logger *zap.Logger) *VitalsCache {
	return &VitalsCache{kv: kv, logger: logger}
}

func latestVitalsKey(patientID string) string {
	return latestVitalsKeyPrefix + patientID + latestVitalsKeySuffix
}

// PutLatest caches the reading under the patient's latest-vitals key.
func (c *VitalsCache) PutLatest(ctx context.Context, reading *domain.VitalReading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal vital reading: %w", err)
	}
	key := latestVitalsKey(reading.PatientID)
	if err := c.kv.Set(ctx, key, string(data), latestVitalsTTL); err != nil {
		return fmt.Errorf("failed to cache latest vitals: %w", err)
	}
	c.logger.Debug("Cached latest vitals",
		zap.String("patient_id", reading.PatientID),
		zap.String("key", key),
	)
	return nil
}

// GetLatest returns the cached reading or ErrCacheMiss.
func (c *VitalsCache) GetLatest(ctx context.Context, patientID string) (*domain.VitalReading, error) {
	raw, err := c.kv.Get(ctx, latestVitalsKey(patientID))
	if err != nil {
		return nil, err
	}
	var reading domain.VitalReading
	if err := json.Unmarshal([]byte(raw), &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached vitals: %w", err)
	}
	return &reading, nil
}
