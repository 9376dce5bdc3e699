package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
	"medico-vitals/internal/repository"
)

// AlertService serves a doctor's health alert feed.
type AlertService interface {
	ListAlerts(ctx context.Context, doctorID string) ([]*domain.HealthAlert, error)
	ListUnread(ctx context.Context, doctorID string) ([]*domain.HealthAlert, error)
	CountUnread(ctx context.Context, doctorID string) (int, error)
	// ListByPatient returns the patient's alerts; the caller must be
	// the patient's assigned doctor.
	ListByPatient(ctx context.Context, patientID, doctorID string) ([]*domain.HealthAlert, error)
	// MarkRead marks one alert read; only its addressee may do so.
	MarkRead(ctx context.Context, alertID, doctorID string) error
	// MarkAllRead marks every unread alert of the doctor, returning
	// how many changed.
	MarkAllRead(ctx context.Context, doctorID string) (int64, error)
}

type alertService struct {
	alertsRepo   *repository.HealthAlertsRepository
	patientsRepo *repository.PatientsRepository
	logger       *zap.Logger
}

func NewAlertService(alertsRepo *repository.HealthAlertsRepository, patientsRepo *repository.PatientsRepository, logger *zap.Logger) AlertService {
	return &alertService{
		alertsRepo:   alertsRepo,
		patientsRepo: patientsRepo,
		logger:       logger,
	}
}

func (s *alertService) ListAlerts(ctx context.Context, doctorID string) ([]*domain.HealthAlert, error) {
	if doctorID == "" {
		return nil, fmt.Errorf("doctor_id is required: %w", domain.ErrValidation)
	}
	return s.alertsRepo.ListByDoctor(ctx, doctorID)
}

func (s *alertService) ListUnread(ctx context.Context, doctorID string) ([]*domain.HealthAlert, error) {
	if doctorID == "" {
		return nil, fmt.Errorf("doctor_id is required: %w", domain.ErrValidation)
	}
	return s.alertsRepo.ListUnreadByDoctor(ctx, doctorID)
}

func (s *alertService) CountUnread(ctx context.Context, doctorID string) (int, error) {
	if doctorID == "" {
		return 0, fmt.Errorf("doctor_id is required: %w", domain.ErrValidation)
	}
	return s.alertsRepo.CountUnreadByDoctor(ctx, doctorID)
}

func (s *alertService) ListByPatient(ctx context.Context, patientID, doctorID string) ([]*domain.HealthAlert, error) {
	patient, err := s.patientsRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.AssignedDoctorID != doctorID {
		return nil, fmt.Errorf("patient %s is not assigned to doctor %s: %w", patientID, doctorID, domain.ErrAccessDenied)
	}
	return s.alertsRepo.ListByPatient(ctx, patientID)
}

func (s *alertService) MarkRead(ctx context.Context, alertID, doctorID string) error {
	alert, err := s.alertsRepo.GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	if alert.DoctorID != doctorID {
		return fmt.Errorf("alert %s is not addressed to doctor %s: %w", alertID, doctorID, domain.ErrAccessDenied)
	}
	return s.alertsRepo.MarkRead(ctx, alertID)
}

func (s *alertService) MarkAllRead(ctx context.Context, doctorID string) (int64, error) {
	if doctorID == "" {
		return 0, fmt.Errorf("doctor_id is required: %w", domain.ErrValidation)
	}
	n, err := s.alertsRepo.MarkAllRead(ctx, doctorID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Marked alerts read",
			zap.String("doctor_id", doctorID),
			zap.Int64("count", n),
		)
	}
	return n, nil
}
