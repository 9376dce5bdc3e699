package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestVitalsCache_PutAndGetLatest(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewVitalsCache(NewRedisKVStore(client), zap.NewNop())

	reading := &domain.VitalReading{
		ID:            "r1",
		PatientID:     "p1",
		DeviceID:      "dev-001",
		HeartRate:     120,
		SpO2:          90,
		Temperature:   36.0,
		RiskLevel:     domain.RiskCritical,
		ScenarioID:    2,
		SpecificCause: "Tachycardia, Mild Hypothermia, Mild Hypoxemia",
		RecordedAt:    time.Now().UTC(),
	}

	require.NoError(t, cache.PutLatest(context.Background(), reading))

	got, err := cache.GetLatest(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, domain.RiskCritical, got.RiskLevel)
	assert.Equal(t, 2, got.ScenarioID)
}

func TestVitalsCache_MissAfterTTL(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewVitalsCache(NewRedisKVStore(client), zap.NewNop())

	reading := &domain.VitalReading{ID: "r1", PatientID: "p1", RecordedAt: time.Now()}
	require.NoError(t, cache.PutLatest(context.Background(), reading))

	mr.FastForward(time.Minute)

	_, err := cache.GetLatest(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestVitalsCache_MissForUnknownPatient(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewVitalsCache(NewRedisKVStore(client), zap.NewNop())

	_, err := cache.GetLatest(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestAlertStream_Publish(t *testing.T) {
	mr, client := setupRedis(t)
	stream := NewAlertStream(client, zap.NewNop())

	alert := &domain.HealthAlert{
		ID:        "a1",
		PatientID: "p1",
		DoctorID:  "d1",
		ReadingID: "r1",
		AlertType: domain.AlertCritical,
		Message:   "Scenario 2: Tachycardia, Mild Hypothermia, Mild Hypoxemia - Serious underlying condition, sepsis, or shock",
		CreatedAt: time.Now(),
	}

	id, err := stream.Publish(context.Background(), alert)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := mr.Stream(AlertStreamKey)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
