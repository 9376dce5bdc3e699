package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medico-vitals/internal/domain"
	"medico-vitals/internal/repository"
	"medico-vitals/internal/triage"
)

// MatchVitalsRequest is an ad-hoc sample to score against the catalog,
// independent of any stored reading.
type MatchVitalsRequest struct {
	Temperature     float64
	HeartRate       int
	SpO2            int
	RespiratoryRate *int
}

// RecordDiseaseRequest creates or refreshes a history record from a
// catalog match against the patient's latest reading.
type RecordDiseaseRequest struct {
	PatientID string
	DoctorID  string
	DiseaseID int
}

// RecordManualRequest is a doctor-entered record with no (or partial)
// vitals backing it.
type RecordManualRequest struct {
	PatientID   string
	DoctorID    string
	DiseaseID   int
	Confidence  float64
	DoctorNotes string
}

// HistorySummary counts a patient's records per lifecycle status.
type HistorySummary struct {
	Active     int `json:"active"`
	Monitoring int `json:"monitoring"`
	Cleared    int `json:"cleared"`
	Chronic    int `json:"chronic"`
}

// DiseaseService scores vitals against the disease catalog and manages
// the per-patient disease history.
type DiseaseService interface {
	// AllDiseases returns the full immutable catalog.
	AllDiseases() []triage.Disease
	// MatchVitals scores a raw sample without touching storage.
	MatchVitals(req MatchVitalsRequest) []triage.DiseaseMatch
	// MatchForPatient scores the patient's latest stored reading.
	// A patient with no readings yields an empty result, not an error.
	MatchForPatient(ctx context.Context, patientID, doctorID string) ([]triage.DiseaseMatch, error)

	// RecordFromMatch persists one match as a history record. An
	// existing ACTIVE record for the same disease has its confidence
	// refreshed instead of a duplicate being created.
	RecordFromMatch(ctx context.Context, req RecordDiseaseRequest) (*domain.DiseaseHistory, error)
	// RecordManually persists a doctor-entered record.
	RecordManually(ctx context.Context, req RecordManualRequest) (*domain.DiseaseHistory, error)
	// AutoRecordFromMatches records every current match at or above
	// the auto-record confidence cutoff and returns what was written.
	AutoRecordFromMatches(ctx context.Context, patientID, doctorID string) ([]*domain.DiseaseHistory, error)

	ListHistory(ctx context.Context, patientID, doctorID string) ([]*domain.DiseaseHistory, error)
	ListHistoryByStatus(ctx context.Context, patientID, doctorID string, status domain.DiseaseStatus) ([]*domain.DiseaseHistory, error)
	Summary(ctx context.Context, patientID, doctorID string) (*HistorySummary, error)

	// UpdateStatus moves a record through its lifecycle. Transitioning
	// to CLEARED stamps clearedAt; any other target clears it.
	UpdateStatus(ctx context.Context, historyID, doctorID string, status domain.DiseaseStatus) error
	// AddDoctorNotes appends a timestamped note to the record.
	AddDoctorNotes(ctx context.Context, historyID, doctorID, note string) error
}

type diseaseService struct {
	patientsRepo *repository.PatientsRepository
	vitalsRepo   *repository.VitalReadingsRepository
	historyRepo  *repository.DiseaseHistoryRepository
	logger       *zap.Logger

	// serializes record/refresh per patient id
	patientLocks *keyedMutex
	now          func() time.Time
}

func NewDiseaseService(
	patientsRepo *repository.PatientsRepository,
	vitalsRepo *repository.VitalReadingsRepository,
	historyRepo *repository.DiseaseHistoryRepository,
	logger *zap.Logger,
) DiseaseService {
	return &diseaseService{
		patientsRepo: patientsRepo,
		vitalsRepo:   vitalsRepo,
		historyRepo:  historyRepo,
		logger:       logger,
		patientLocks: newKeyedMutex(),
		now:          time.Now,
	}
}

func (s *diseaseService) AllDiseases() []triage.Disease {
	return triage.AllDiseases()
}

func (s *diseaseService) MatchVitals(req MatchVitalsRequest) []triage.DiseaseMatch {
	return triage.MatchDiseases(req.Temperature, req.HeartRate, req.SpO2, req.RespiratoryRate)
}

// ownedPatient loads the patient and checks the caller is the assigned
// doctor.
func (s *diseaseService) ownedPatient(ctx context.Context, patientID, doctorID string) (*domain.Patient, error) {
	patient, err := s.patientsRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.AssignedDoctorID != doctorID {
		return nil, fmt.Errorf("patient %s is not assigned to doctor %s: %w", patientID, doctorID, domain.ErrAccessDenied)
	}
	return patient, nil
}

func (s *diseaseService) MatchForPatient(ctx context.Context, patientID, doctorID string) ([]triage.DiseaseMatch, error) {
	if _, err := s.ownedPatient(ctx, patientID, doctorID); err != nil {
		return nil, err
	}

	latest, err := s.vitalsRepo.LatestByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []triage.DiseaseMatch{}, nil
		}
		return nil, err
	}

	return triage.MatchDiseases(latest.Temperature, latest.HeartRate, latest.SpO2, nil), nil
}

func (s *diseaseService) RecordFromMatch(ctx context.Context, req RecordDiseaseRequest) (*domain.DiseaseHistory, error) {
	if _, err := s.ownedPatient(ctx, req.PatientID, req.DoctorID); err != nil {
		return nil, err
	}
	disease, ok := triage.DiseaseByID(req.DiseaseID)
	if !ok {
		return nil, fmt.Errorf("unknown disease id %d: %w", req.DiseaseID, domain.ErrValidation)
	}

	latest, err := s.vitalsRepo.LatestByPatient(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("patient %s has no readings to match against: %w", req.PatientID, domain.ErrValidation)
		}
		return nil, err
	}

	match, ok := matchFor(disease.ID, latest)
	if !ok {
		return nil, fmt.Errorf("disease %q does not match the latest vitals: %w", disease.Name, domain.ErrValidation)
	}

	unlock := s.patientLocks.Lock(req.PatientID)
	defer unlock()

	return s.upsertFromMatch(ctx, req.PatientID, match, latest)
}

// matchFor re-scores the reading and picks out one disease.
func matchFor(diseaseID int, reading *domain.VitalReading) (triage.DiseaseMatch, bool) {
	for _, m := range triage.MatchDiseases(reading.Temperature, reading.HeartRate, reading.SpO2, nil) {
		if m.Disease.ID == diseaseID {
			return m, true
		}
	}
	return triage.DiseaseMatch{}, false
}

// upsertFromMatch refreshes an existing ACTIVE record or inserts a new
// one. Caller holds the patient lock.
func (s *diseaseService) upsertFromMatch(ctx context.Context, patientID string, match triage.DiseaseMatch, reading *domain.VitalReading) (*domain.DiseaseHistory, error) {
	existing, err := s.historyRepo.FindActiveByDisease(ctx, patientID, match.Disease.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if err := s.historyRepo.UpdateConfidence(ctx, existing.ID, match.Confidence); err != nil {
			return nil, err
		}
		existing.DetectionConfidence = match.Confidence
		s.logger.Info("Refreshed disease record",
			zap.String("patient_id", patientID),
			zap.String("disease", match.Disease.Name),
			zap.Float64("confidence", match.Confidence),
		)
		return existing, nil
	}

	record := &domain.DiseaseHistory{
		ID:                  uuid.New().String(),
		PatientID:           patientID,
		DiseaseID:           match.Disease.ID,
		DiseaseName:         match.Disease.Name,
		PossibleCauses:      match.Disease.PossibleCauses,
		Status:              domain.DiseaseActive,
		DetectionConfidence: match.Confidence,
		DetectedTemperature: sql.NullFloat64{Float64: reading.Temperature, Valid: true},
		DetectedHeartRate:   sql.NullInt64{Int64: int64(reading.HeartRate), Valid: true},
		DetectedSpO2:        sql.NullInt64{Int64: int64(reading.SpO2), Valid: true},
		ObservedSymptoms:    strings.Join(match.Disease.Symptoms, ", "),
		DetectedAt:          s.now(),
	}
	if err := s.historyRepo.InsertHistory(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("Recorded disease",
		zap.String("patient_id", patientID),
		zap.String("disease", match.Disease.Name),
		zap.Float64("confidence", match.Confidence),
	)
	return record, nil
}

func (s *diseaseService) RecordManually(ctx context.Context, req RecordManualRequest) (*domain.DiseaseHistory, error) {
	if _, err := s.ownedPatient(ctx, req.PatientID, req.DoctorID); err != nil {
		return nil, err
	}
	disease, ok := triage.DiseaseByID(req.DiseaseID)
	if !ok {
		return nil, fmt.Errorf("unknown disease id %d: %w", req.DiseaseID, domain.ErrValidation)
	}
	if req.Confidence < 0 || req.Confidence > 100 {
		return nil, fmt.Errorf("confidence %.1f out of range: %w", req.Confidence, domain.ErrValidation)
	}

	record := &domain.DiseaseHistory{
		ID:                  uuid.New().String(),
		PatientID:           req.PatientID,
		DiseaseID:           disease.ID,
		DiseaseName:         disease.Name,
		PossibleCauses:      disease.PossibleCauses,
		Status:              domain.DiseaseActive,
		DetectionConfidence: req.Confidence,
		ObservedSymptoms:    strings.Join(disease.Symptoms, ", "),
		DetectedAt:          s.now(),
	}
	if req.DoctorNotes != "" {
		record.DoctorNotes = sql.NullString{String: stampNote(s.now(), req.DoctorNotes), Valid: true}
	}

	// A recent reading, if any, still gets snapshotted for context.
	if latest, err := s.vitalsRepo.LatestByPatient(ctx, req.PatientID); err == nil {
		record.DetectedTemperature = sql.NullFloat64{Float64: latest.Temperature, Valid: true}
		record.DetectedHeartRate = sql.NullInt64{Int64: int64(latest.HeartRate), Valid: true}
		record.DetectedSpO2 = sql.NullInt64{Int64: int64(latest.SpO2), Valid: true}
	}

	unlock := s.patientLocks.Lock(req.PatientID)
	defer unlock()

	if err := s.historyRepo.InsertHistory(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("Recorded disease manually",
		zap.String("patient_id", req.PatientID),
		zap.String("disease", disease.Name),
	)
	return record, nil
}

func (s *diseaseService) AutoRecordFromMatches(ctx context.Context, patientID, doctorID string) ([]*domain.DiseaseHistory, error) {
	if _, err := s.ownedPatient(ctx, patientID, doctorID); err != nil {
		return nil, err
	}

	latest, err := s.vitalsRepo.LatestByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []*domain.DiseaseHistory{}, nil
		}
		return nil, err
	}

	unlock := s.patientLocks.Lock(patientID)
	defer unlock()

	var recorded []*domain.DiseaseHistory
	for _, match := range triage.MatchDiseases(latest.Temperature, latest.HeartRate, latest.SpO2, nil) {
		if match.Confidence < triage.AutoRecordConfidenceMin {
			continue
		}
		record, err := s.upsertFromMatch(ctx, patientID, match, latest)
		if err != nil {
			return nil, err
		}
		recorded = append(recorded, record)
	}
	return recorded, nil
}

func (s *diseaseService) ListHistory(ctx context.Context, patientID, doctorID string) ([]*domain.DiseaseHistory, error) {
	if _, err := s.ownedPatient(ctx, patientID, doctorID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByPatient(ctx, patientID)
}

func (s *diseaseService) ListHistoryByStatus(ctx context.Context, patientID, doctorID string, status domain.DiseaseStatus) ([]*domain.DiseaseHistory, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, domain.ErrValidation)
	}
	if _, err := s.ownedPatient(ctx, patientID, doctorID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByPatientAndStatus(ctx, patientID, status)
}

func (s *diseaseService) Summary(ctx context.Context, patientID, doctorID string) (*HistorySummary, error) {
	if _, err := s.ownedPatient(ctx, patientID, doctorID); err != nil {
		return nil, err
	}

	summary := &HistorySummary{}
	for _, c := range []struct {
		status domain.DiseaseStatus
		dst    *int
	}{
		{domain.DiseaseActive, &summary.Active},
		{domain.DiseaseMonitoring, &summary.Monitoring},
		{domain.DiseaseCleared, &summary.Cleared},
		{domain.DiseaseChronic, &summary.Chronic},
	} {
		n, err := s.historyRepo.CountByPatientAndStatus(ctx, patientID, c.status)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return summary, nil
}

// ownedRecord loads the record and checks the caller owns its patient.
func (s *diseaseService) ownedRecord(ctx context.Context, historyID, doctorID string) (*domain.DiseaseHistory, error) {
	record, err := s.historyRepo.GetByID(ctx, historyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedPatient(ctx, record.PatientID, doctorID); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *diseaseService) UpdateStatus(ctx context.Context, historyID, doctorID string, status domain.DiseaseStatus) error {
	if !validStatus(status) {
		return fmt.Errorf("unknown status %q: %w", status, domain.ErrValidation)
	}
	record, err := s.ownedRecord(ctx, historyID, doctorID)
	if err != nil {
		return err
	}

	var clearedAt *time.Time
	if status == domain.DiseaseCleared {
		t := s.now()
		clearedAt = &t
	}
	if err := s.historyRepo.UpdateStatus(ctx, historyID, status, clearedAt); err != nil {
		return err
	}
	s.logger.Info("Updated disease status",
		zap.String("history_id", historyID),
		zap.String("disease", record.DiseaseName),
		zap.String("status", string(status)),
	)
	return nil
}

func (s *diseaseService) AddDoctorNotes(ctx context.Context, historyID, doctorID, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return fmt.Errorf("note is empty: %w", domain.ErrValidation)
	}
	record, err := s.ownedRecord(ctx, historyID, doctorID)
	if err != nil {
		return err
	}

	stamped := stampNote(s.now(), note)
	if record.DoctorNotes.Valid && record.DoctorNotes.String != "" {
		stamped = record.DoctorNotes.String + "\n" + stamped
	}
	return s.historyRepo.UpdateDoctorNotes(ctx, historyID, stamped)
}

func stampNote(at time.Time, note string) string {
	return fmt.Sprintf("[%s] %s", at.Format("2006-01-02 15:04"), note)
}

func validStatus(status domain.DiseaseStatus) bool {
	switch status {
	case domain.DiseaseActive, domain.DiseaseMonitoring, domain.DiseaseCleared, domain.DiseaseChronic:
		return true
	}
	return false
}
