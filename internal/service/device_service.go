package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
	"medico-vitals/internal/repository"
)

// DeviceService manages device-to-patient bindings.
type DeviceService interface {
	// AssignDevice binds the device to the patient, invalidating any
	// other patient's binding for the same device first. A nil
	// duration means the binding never expires.
	AssignDevice(ctx context.Context, req AssignDeviceRequest) error
	// UnassignDevice clears the active binding but keeps the last
	// device id on the patient for audit.
	UnassignDevice(ctx context.Context, patientID, doctorID string) error
	// ResolveActivePatient returns the patient the device currently
	// reports for, or nil when the device is unbound or the binding
	// has expired. It never fails for an unknown device.
	ResolveActivePatient(ctx context.Context, deviceID string) (*domain.Patient, error)
	// IsDeviceActive reports whether the device has an active binding.
	IsDeviceActive(ctx context.Context, deviceID string) (bool, error)
}

// AssignDeviceRequest carries a binding assignment.
type AssignDeviceRequest struct {
	PatientID       string
	DeviceID        string
	DoctorID        string
	DurationSeconds *int64
}

type deviceService struct {
	db           *sql.DB
	patientsRepo *repository.PatientsRepository
	logger       *zap.Logger

	// serializes assignments per device id
	deviceLocks *keyedMutex
	now         func() time.Time
}

// NewDeviceService creates the service.
func NewDeviceService(db *sql.DB, patientsRepo *repository.PatientsRepository, logger *zap.Logger) DeviceService {
	return &deviceService{
		db:           db,
		patientsRepo: patientsRepo,
		logger:       logger,
		deviceLocks:  newKeyedMutex(),
		now:          time.Now,
	}
}

func (s *deviceService) AssignDevice(ctx context.Context, req AssignDeviceRequest) error {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" || req.PatientID == "" || req.DoctorID == "" {
		return fmt.Errorf("patient_id, device_id and doctor_id are required: %w", domain.ErrValidation)
	}
	if req.DurationSeconds != nil && *req.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive: %w", domain.ErrValidation)
	}

	unlock := s.deviceLocks.Lock(deviceID)
	defer unlock()

	patient, err := s.patientsRepo.GetByID(ctx, req.PatientID)
	if err != nil {
		return err
	}
	if patient.AssignedDoctorID != req.DoctorID {
		return fmt.Errorf("doctor %s does not own patient %s: %w", req.DoctorID, req.PatientID, domain.ErrAccessDenied)
	}

	// Invalidate-then-assign inside one transaction: the clear must be
	// visible before the new binding commits so the device never has
	// two active bindings.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin assignment transaction: %w", err)
	}
	defer tx.Rollback()

	txRepo := s.patientsRepo.WithTx(tx)

	cleared, err := txRepo.ClearBindingFromOthers(ctx, deviceID, req.PatientID)
	if err != nil {
		return err
	}
	if err := txRepo.SetDeviceBinding(ctx, req.PatientID, deviceID, s.now(), req.DurationSeconds); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}

	s.logger.Info("Device assigned",
		zap.String("device_id", deviceID),
		zap.String("patient_id", req.PatientID),
		zap.Int64("cleared_prior_bindings", cleared),
	)
	return nil
}

func (s *deviceService) UnassignDevice(ctx context.Context, patientID, doctorID string) error {
	if patientID == "" || doctorID == "" {
		return fmt.Errorf("patient_id and doctor_id are required: %w", domain.ErrValidation)
	}

	patient, err := s.patientsRepo.GetByID(ctx, patientID)
	if err != nil {
		return err
	}
	if patient.AssignedDoctorID != doctorID {
		return fmt.Errorf("doctor %s does not own patient %s: %w", doctorID, patientID, domain.ErrAccessDenied)
	}

	if err := s.patientsRepo.ClearDeviceBinding(ctx, patientID); err != nil {
		return err
	}

	s.logger.Info("Device unassigned", zap.String("patient_id", patientID))
	return nil
}

func (s *deviceService) ResolveActivePatient(ctx context.Context, deviceID string) (*domain.Patient, error) {
	if deviceID == "" {
		return nil, nil
	}

	patient, err := s.patientsRepo.MostRecentlyAssigned(ctx, deviceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Soft expiry: the row survives, resolution just stops returning it.
	if !patient.BindingActiveAt(s.now()) {
		return nil, nil
	}
	return patient, nil
}

func (s *deviceService) IsDeviceActive(ctx context.Context, deviceID string) (bool, error) {
	patient, err := s.ResolveActivePatient(ctx, deviceID)
	if err != nil {
		return false, err
	}
	return patient != nil, nil
}
