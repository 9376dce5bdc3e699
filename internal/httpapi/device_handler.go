package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"medico-vitals/internal/service"
)

// DeviceHandler serves device binding management.
type DeviceHandler struct {
	devices service.DeviceService
	logger  *zap.Logger
}

func NewDeviceHandler(devices service.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, logger: logger}
}

type assignDeviceBody struct {
	DeviceID        string `json:"deviceId"`
	DurationSeconds *int64 `json:"durationSeconds"`
}

// Assign handles POST /data/api/v1/patients/{id}/device.
func (h *DeviceHandler) Assign(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	var body assignDeviceBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	err := h.devices.AssignDevice(r.Context(), service.AssignDeviceRequest{
		PatientID:       patientID,
		DeviceID:        body.DeviceID,
		DoctorID:        docID,
		DurationSeconds: body.DurationSeconds,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"patientId": patientID,
		"deviceId":  body.DeviceID,
	}))
}

// Unassign handles DELETE /data/api/v1/patients/{id}/device.
func (h *DeviceHandler) Unassign(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	if err := h.devices.UnassignDevice(r.Context(), patientID, docID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"patientId": patientID}))
}

// ActivePatient handles GET /data/api/v1/devices/{id}/patient.
func (h *DeviceHandler) ActivePatient(w http.ResponseWriter, r *http.Request, deviceID string) {
	patient, err := h.devices.ResolveActivePatient(r.Context(), deviceID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if patient == nil {
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"deviceId": deviceID,
			"active":   false,
		}))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"deviceId":    deviceID,
		"active":      true,
		"patientId":   patient.ID,
		"patientName": patient.FullName,
	}))
}

// Active handles GET /iot/api/v1/devices/{id}/active, a cheap liveness
// probe for provisioning tools.
func (h *DeviceHandler) Active(w http.ResponseWriter, r *http.Request, deviceID string) {
	active, err := h.devices.IsDeviceActive(r.Context(), deviceID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"deviceId": deviceID,
		"active":   active,
	}))
}
