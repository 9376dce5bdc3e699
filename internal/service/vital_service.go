package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medico-vitals/internal/domain"
	"medico-vitals/internal/notify"
	"medico-vitals/internal/repository"
	"medico-vitals/internal/store"
	"medico-vitals/internal/triage"
)

// RetentionLimit is the number of readings kept per patient. Older
// readings are evicted on every ingestion.
const RetentionLimit = 5

// IngestRequest is one raw device sample.
type IngestRequest struct {
	DeviceID    string
	HeartRate   int
	SpO2        int
	Temperature float64 // °C
}

// IngestResult is returned to the device after a successful ingestion.
type IngestResult struct {
	ReadingID       string           `json:"readingId"`
	PatientID       string           `json:"patientId"`
	RiskLevel       domain.RiskLevel `json:"riskLevel"`
	ScenarioID      int              `json:"scenarioId"`
	SpecificCause   string           `json:"specificCause"`
	Recommendations string           `json:"recommendations"`
}

// VitalService runs the ingestion pipeline and serves reading history.
type VitalService interface {
	// IngestReading resolves the device binding, classifies the
	// sample, persists it, prunes the retention window and raises
	// alerts, all as one unit. Fails with domain.ErrNoActiveBinding
	// when no patient is bound to the device; nothing is written then.
	IngestReading(ctx context.Context, req IngestRequest) (*IngestResult, error)
	// RecentReadings returns up to RetentionLimit readings, newest first.
	RecentReadings(ctx context.Context, patientID string) ([]*domain.VitalReading, error)
	// LatestReading returns the newest reading or domain.ErrNotFound.
	LatestReading(ctx context.Context, patientID string) (*domain.VitalReading, error)
	// ReadingsInRange returns readings between start and end, newest first.
	ReadingsInRange(ctx context.Context, patientID string, start, end time.Time) ([]*domain.VitalReading, error)
}

type vitalService struct {
	db           *sql.DB
	vitalsRepo   *repository.VitalReadingsRepository
	patientsRepo *repository.PatientsRepository
	alertsRepo   *repository.HealthAlertsRepository
	doctorsRepo  *repository.DoctorsRepository
	devices      DeviceService
	dispatcher   notify.Dispatcher
	cache        *store.VitalsCache
	alertStream  *store.AlertStream
	logger       *zap.Logger

	// serializes ingestions per patient id
	patientLocks *keyedMutex
	now          func() time.Time
}

// NewVitalService creates the service. cache and alertStream may be
// nil when Redis is not configured; both are best-effort.
func NewVitalService(
	db *sql.DB,
	vitalsRepo *repository.VitalReadingsRepository,
	patientsRepo *repository.PatientsRepository,
	alertsRepo *repository.HealthAlertsRepository,
	doctorsRepo *repository.DoctorsRepository,
	devices DeviceService,
	dispatcher notify.Dispatcher,
	cache *store.VitalsCache,
	alertStream *store.AlertStream,
	logger *zap.Logger,
) VitalService {
	return &vitalService{
		db:           db,
		vitalsRepo:   vitalsRepo,
		patientsRepo: patientsRepo,
		alertsRepo:   alertsRepo,
		doctorsRepo:  doctorsRepo,
		devices:      devices,
		dispatcher:   dispatcher,
		cache:        cache,
		alertStream:  alertStream,
		logger:       logger,
		patientLocks: newKeyedMutex(),
		now:          time.Now,
	}
}

func validateIngest(req IngestRequest) error {
	if req.DeviceID == "" {
		return fmt.Errorf("device_id is required: %w", domain.ErrValidation)
	}
	if req.HeartRate < 0 || req.HeartRate > 300 {
		return fmt.Errorf("heart_rate %d out of range: %w", req.HeartRate, domain.ErrValidation)
	}
	if req.SpO2 < 0 || req.SpO2 > 100 {
		return fmt.Errorf("spo2 %d out of range: %w", req.SpO2, domain.ErrValidation)
	}
	if req.Temperature < 20.0 || req.Temperature > 45.0 {
		return fmt.Errorf("temperature %.1f out of range: %w", req.Temperature, domain.ErrValidation)
	}
	return nil
}

func (s *vitalService) IngestReading(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if err := validateIngest(req); err != nil {
		return nil, err
	}

	patient, err := s.devices.ResolveActivePatient(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("device %s: %w", req.DeviceID, domain.ErrNoActiveBinding)
	}

	unlock := s.patientLocks.Lock(patient.ID)
	defer unlock()

	scenario := triage.Classify(req.HeartRate, req.SpO2, req.Temperature)

	reading := &domain.VitalReading{
		ID:              uuid.New().String(),
		PatientID:       patient.ID,
		DeviceID:        req.DeviceID,
		HeartRate:       req.HeartRate,
		SpO2:            req.SpO2,
		Temperature:     req.Temperature,
		RiskLevel:       scenario.RiskLevel,
		ScenarioID:      scenario.ID,
		SpecificCause:   scenario.SpecificCause,
		PossibleCauses:  scenario.PossibleCauses,
		Symptoms:        scenario.Symptoms,
		Recommendations: scenario.Recommendations,
		RecordedAt:      s.now(),
	}

	// Persist, update risk, prune and alert as one transaction. A
	// reading that is stored but not retained or not alerted is a bug.
	var alert *domain.HealthAlert

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingestion transaction: %w", err)
	}
	defer tx.Rollback()

	txVitals := s.vitalsRepo.WithTx(tx)
	txPatients := s.patientsRepo.WithTx(tx)
	txAlerts := s.alertsRepo.WithTx(tx)

	if err := txVitals.InsertReading(ctx, reading); err != nil {
		return nil, err
	}
	if err := txPatients.UpdateRiskLevel(ctx, patient.ID, scenario.RiskLevel); err != nil {
		return nil, err
	}
	if _, err := txVitals.PruneToLimit(ctx, patient.ID, RetentionLimit); err != nil {
		return nil, err
	}

	switch scenario.RiskLevel {
	case domain.RiskCritical:
		alert = s.buildAlert(patient, reading, scenario, domain.AlertCritical)
	case domain.RiskModerate:
		alert = s.buildAlert(patient, reading, scenario, domain.AlertWarning)
	}
	if alert != nil {
		if err := txAlerts.InsertAlert(ctx, alert); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingestion: %w", err)
	}

	s.logger.Info("Processed vitals",
		zap.String("patient_id", patient.ID),
		zap.String("device_id", req.DeviceID),
		zap.Int("scenario_id", scenario.ID),
		zap.String("risk_level", string(scenario.RiskLevel)),
	)

	// Post-commit side effects are best-effort and never roll back the
	// ingestion.
	s.publishSideEffects(patient, reading, alert)

	return &IngestResult{
		ReadingID:       reading.ID,
		PatientID:       patient.ID,
		RiskLevel:       scenario.RiskLevel,
		ScenarioID:      scenario.ID,
		SpecificCause:   scenario.SpecificCause,
		Recommendations: scenario.Recommendations,
	}, nil
}

func (s *vitalService) buildAlert(patient *domain.Patient, reading *domain.VitalReading, scenario triage.Scenario, alertType domain.AlertType) *domain.HealthAlert {
	return &domain.HealthAlert{
		ID:        uuid.New().String(),
		PatientID: patient.ID,
		DoctorID:  patient.AssignedDoctorID,
		ReadingID: reading.ID,
		AlertType: alertType,
		Message:   riskSummary(scenario),
		IsRead:    false,
		CreatedAt: s.now(),
	}
}

// riskSummary is the human-readable alert message.
func riskSummary(scenario triage.Scenario) string {
	return fmt.Sprintf("Scenario %d: %s - %s", scenario.ID, scenario.SpecificCause, scenario.PossibleCauses)
}

func (s *vitalService) publishSideEffects(patient *domain.Patient, reading *domain.VitalReading, alert *domain.HealthAlert) {
	// Detached from the request context: the caller's deadline must
	// not cancel best-effort delivery mid-flight.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	go func() {
		defer cancel()

		if s.cache != nil {
			if err := s.cache.PutLatest(ctx, reading); err != nil {
				s.logger.Warn("Failed to cache latest vitals",
					zap.String("patient_id", patient.ID),
					zap.Error(err),
				)
			}
		}

		if alert == nil {
			return
		}

		if s.alertStream != nil {
			if _, err := s.alertStream.Publish(ctx, alert); err != nil {
				s.logger.Warn("Failed to publish alert event",
					zap.String("alert_id", alert.ID),
					zap.Error(err),
				)
			}
		}

		doctor, err := s.doctorsRepo.GetByID(ctx, patient.AssignedDoctorID)
		if err != nil {
			s.logger.Warn("Failed to load doctor for notification",
				zap.String("doctor_id", patient.AssignedDoctorID),
				zap.Error(err),
			)
			return
		}
		switch alert.AlertType {
		case domain.AlertCritical:
			s.dispatcher.SendCriticalAlert(ctx, doctor, patient, alert.Message)
		case domain.AlertWarning:
			s.dispatcher.SendWarningAlert(ctx, doctor, patient, alert.Message)
		}
	}()
}

func (s *vitalService) RecentReadings(ctx context.Context, patientID string) ([]*domain.VitalReading, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required: %w", domain.ErrValidation)
	}
	return s.vitalsRepo.RecentByPatient(ctx, patientID, RetentionLimit)
}

func (s *vitalService) LatestReading(ctx context.Context, patientID string) (*domain.VitalReading, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required: %w", domain.ErrValidation)
	}
	return s.vitalsRepo.LatestByPatient(ctx, patientID)
}

func (s *vitalService) ReadingsInRange(ctx context.Context, patientID string, start, end time.Time) ([]*domain.VitalReading, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required: %w", domain.ErrValidation)
	}
	return s.vitalsRepo.ByPatientInRange(ctx, patientID, start, end)
}
