package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"medico-vitals/internal/report"
	"medico-vitals/internal/repository"
	"medico-vitals/internal/service"
)

// ReportHandler serves the per-patient Excel export.
type ReportHandler struct {
	patients *repository.PatientsRepository
	vitals   service.VitalService
	diseases service.DiseaseService
	logger   *zap.Logger
}

func NewReportHandler(patients *repository.PatientsRepository, vitals service.VitalService, diseases service.DiseaseService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		patients: patients,
		vitals:   vitals,
		diseases: diseases,
		logger:   logger,
	}
}

// Download handles GET /data/api/v1/patients/{id}/report and streams
// the workbook. Ownership is enforced by the history listing.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request, patientID string) {
	docID := requireDoctor(w, r)
	if docID == "" {
		return
	}

	history, err := h.diseases.ListHistory(r.Context(), patientID, docID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	patient, err := h.patients.GetByID(r.Context(), patientID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	readings, err := h.vitals.RecentReadings(r.Context(), patientID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	data, err := report.Generate(report.PatientReport{
		Patient:  patient,
		Readings: readings,
		History:  history,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename(patient)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
