package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
	"medico-vitals/internal/service"
)

// DiseaseHandler serves the disease catalog, matching and history.
type DiseaseHandler struct {
	diseases service.DiseaseService
	logger   *zap.Logger
}

func NewDiseaseHandler(diseases service.DiseaseService, logger *zap.Logger) *DiseaseHandler {
	return &DiseaseHandler{diseases: diseases, logger: logger}
}

// Catalog handles GET /data/api/v1/diseases.
func (h *DiseaseHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.diseases.AllDiseases()))
}

type matchVitalsBody struct {
	Temperature     float64 `json:"temperature"`
	HeartRate       int     `json:"heartRate"`
	SpO2            int     `json:"spo2"`
	RespiratoryRate *int    `json:"respiratoryRate"`
}

// DirectMatch handles POST /data/api/v1/diseases/match.
func (h *DiseaseHandler) DirectMatch(w http.ResponseWriter, r *http.Request) {
	var body matchVitalsBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	matches := h.diseases.MatchVitals(service.MatchVitalsRequest{
		Temperature:     body.Temperature,
		HeartRate:       body.HeartRate,
		SpO2:            body.SpO2,
		RespiratoryRate: body.RespiratoryRate,
	})
	writeJSON(w, http.StatusOK, Ok(matches))
}

// MatchesForPatient handles GET /data/api/v1/patients/{id}/diseases/matches.
func (h *DiseaseHandler) MatchesForPatient(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	matches, err := h.diseases.MatchForPatient(r.Context(), patientID, docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(matches))
}

type recordDiseaseBody struct {
	DiseaseID int `json:"diseaseId"`
	// Manual entries carry their own confidence and optional notes.
	Manual      bool    `json:"manual"`
	Confidence  float64 `json:"confidence"`
	DoctorNotes string  `json:"doctorNotes"`
}

// RecordDisease handles POST /data/api/v1/patients/{id}/history.
func (h *DiseaseHandler) RecordDisease(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	var body recordDiseaseBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	var record *domain.DiseaseHistory
	var err error
	if body.Manual {
		record, err = h.diseases.RecordManually(r.Context(), service.RecordManualRequest{
			PatientID:   patientID,
			DoctorID:    docID,
			DiseaseID:   body.DiseaseID,
			Confidence:  body.Confidence,
			DoctorNotes: body.DoctorNotes,
		})
	} else {
		record, err = h.diseases.RecordFromMatch(r.Context(), service.RecordDiseaseRequest{
			PatientID: patientID,
			DoctorID:  docID,
			DiseaseID: body.DiseaseID,
		})
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(record.ToJSON()))
}

// AutoRecord handles POST /data/api/v1/patients/{id}/history/auto-record.
func (h *DiseaseHandler) AutoRecord(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	recorded, err := h.diseases.AutoRecordFromMatches(r.Context(), patientID, docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]map[string]any, 0, len(recorded))
	for _, record := range recorded {
		out = append(out, record.ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// History handles GET /data/api/v1/patients/{id}/history with an
// optional ?status= filter.
func (h *DiseaseHandler) History(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	var records []*domain.DiseaseHistory
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		records, err = h.diseases.ListHistoryByStatus(r.Context(), patientID, docID, domain.DiseaseStatus(status))
	} else {
		records, err = h.diseases.ListHistory(r.Context(), patientID, docID)
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		out = append(out, record.ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// HistorySummary handles GET /data/api/v1/patients/{id}/history/summary.
func (h *DiseaseHandler) HistorySummary(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	summary, err := h.diseases.Summary(r.Context(), patientID, docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

type updateStatusBody struct {
	Status string `json:"status"`
}

// UpdateStatus handles POST /data/api/v1/history/{id}/status.
func (h *DiseaseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, historyID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	var body updateStatusBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.diseases.UpdateStatus(r.Context(), historyID, docID, domain.DiseaseStatus(body.Status)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"historyId": historyID,
		"status":    body.Status,
	}))
}

type addNotesBody struct {
	Note string `json:"note"`
}

// AddNotes handles POST /data/api/v1/history/{id}/notes.
func (h *DiseaseHandler) AddNotes(w http.ResponseWriter, r *http.Request, historyID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	var body addNotesBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.diseases.AddDoctorNotes(r.Context(), historyID, docID, body.Note); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"historyId": historyID}))
}
