package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
	"medico-vitals/internal/service"
)

// AlertHandler serves the doctor's alert feed.
type AlertHandler struct {
	alerts service.AlertService
	logger *zap.Logger
}

func NewAlertHandler(alerts service.AlertService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

func alertsToJSON(alerts []*domain.HealthAlert) []map[string]any {
	out := make([]map[string]any, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, alert.ToJSON())
	}
	return out
}

// List handles GET /data/api/v1/alerts.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	alerts, err := h.alerts.ListAlerts(r.Context(), docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alertsToJSON(alerts)))
}

// ListUnread handles GET /data/api/v1/alerts/unread.
func (h *AlertHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	alerts, err := h.alerts.ListUnread(r.Context(), docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alertsToJSON(alerts)))
}

// CountUnread handles GET /data/api/v1/alerts/unread/count.
func (h *AlertHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	count, err := h.alerts.CountUnread(r.Context(), docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"count": count}))
}

// MarkRead handles POST /data/api/v1/alerts/{id}/read.
func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request, alertID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	if err := h.alerts.MarkRead(r.Context(), alertID, docID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"alertId": alertID}))
}

// MarkAllRead handles POST /data/api/v1/alerts/read-all.
func (h *AlertHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	n, err := h.alerts.MarkAllRead(r.Context(), docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"marked": n}))
}

// ListByPatient handles GET /data/api/v1/patients/{id}/alerts.
func (h *AlertHandler) ListByPatient(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	alerts, err := h.alerts.ListByPatient(r.Context(), patientID, docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alertsToJSON(alerts)))
}
