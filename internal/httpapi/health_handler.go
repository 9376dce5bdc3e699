package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// HealthHandler reports dependency health.
type HealthHandler struct {
	db          *sql.DB
	redisClient *redis.Client
	// mqttConnected is nil when MQTT ingestion is disabled.
	mqttConnected func() bool
	logger        *zap.Logger
}

func NewHealthHandler(db *sql.DB, redisClient *redis.Client, mqttConnected func() bool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:            db,
		redisClient:   redisClient,
		mqttConnected: mqttConnected,
		logger:        logger,
	}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	services := make(map[string]string)

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = "unhealthy"
			services["database"] = "unhealthy: " + err.Error()
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "not configured"
	}

	if h.redisClient != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			status = "unhealthy"
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	if h.mqttConnected != nil {
		if h.mqttConnected() {
			services["mqtt"] = "healthy"
		} else {
			status = "unhealthy"
			services["mqtt"] = "disconnected"
		}
	} else {
		services["mqtt"] = "not configured"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, healthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	})
}
