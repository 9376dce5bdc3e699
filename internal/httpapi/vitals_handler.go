package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"medico-vitals/internal/service"
	"medico-vitals/internal/store"
)

// VitalsHandler serves device ingestion and reading history.
type VitalsHandler struct {
	vitals service.VitalService
	cache  *store.VitalsCache
	logger *zap.Logger
}

// NewVitalsHandler creates the handler. cache may be nil.
func NewVitalsHandler(vitals service.VitalService, cache *store.VitalsCache, logger *zap.Logger) *VitalsHandler {
	return &VitalsHandler{vitals: vitals, cache: cache, logger: logger}
}

type ingestBody struct {
	DeviceID    string  `json:"deviceId"`
	HeartRate   int     `json:"heartRate"`
	SpO2        int     `json:"spo2"`
	Temperature float64 `json:"temperature"`
}

// Ingest handles POST /iot/api/v1/vitals. Devices authenticate at the
// transport layer; no doctor identity is involved.
func (h *VitalsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var body ingestBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	result, err := h.vitals.IngestReading(r.Context(), service.IngestRequest{
		DeviceID:    body.DeviceID,
		HeartRate:   body.HeartRate,
		SpO2:        body.SpO2,
		Temperature: body.Temperature,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// Recent handles GET /data/api/v1/patients/{id}/vitals/recent.
func (h *VitalsHandler) Recent(w http.ResponseWriter, r *http.Request, patientID string) {
	readings, err := h.vitals.RecentReadings(r.Context(), patientID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]map[string]any, 0, len(readings))
	for _, reading := range readings {
		out = append(out, reading.ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// Latest handles GET /data/api/v1/patients/{id}/vitals/latest. The
// Redis cache is consulted first; a miss falls through to the database.
func (h *VitalsHandler) Latest(w http.ResponseWriter, r *http.Request, patientID string) {
	if h.cache != nil {
		if reading, err := h.cache.GetLatest(r.Context(), patientID); err == nil {
			writeJSON(w, http.StatusOK, Ok(reading.ToJSON()))
			return
		} else if !errors.Is(err, store.ErrCacheMiss) {
			h.logger.Warn("Latest vitals cache lookup failed",
				zap.String("patient_id", patientID),
				zap.Error(err),
			)
		}
	}

	reading, err := h.vitals.LatestReading(r.Context(), patientID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(reading.ToJSON()))
}

// Range handles GET /data/api/v1/patients/{id}/vitals/range?start=&end=
// with RFC3339 bounds.
func (h *VitalsHandler) Range(w http.ResponseWriter, r *http.Request, patientID string) {
	start, ok := parseTime(r.URL.Query().Get("start"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail("start must be RFC3339"))
		return
	}
	end, ok := parseTime(r.URL.Query().Get("end"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail("end must be RFC3339"))
		return
	}

	readings, err := h.vitals.ReadingsInRange(r.Context(), patientID, start, end)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]map[string]any, 0, len(readings))
	for _, reading := range readings {
		out = append(out, reading.ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(out))
}
