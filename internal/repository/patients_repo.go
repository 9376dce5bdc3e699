package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

// PatientsRepository covers the patient fields the binding and
// ingestion pipelines touch. Demographics CRUD lives elsewhere.
type PatientsRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPatientsRepository creates the repository.
func NewPatientsRepository(db *sql.DB, logger *zap.Logger) *PatientsRepository {
	return &PatientsRepository{db: db, logger: logger}
}

// WithTx returns a copy bound to the given transaction.
func (r *PatientsRepository) WithTx(tx *sql.Tx) *PatientsRepository {
	return &PatientsRepository{db: tx, logger: r.logger}
}

const patientColumns = `
	patient_id,
	full_name,
	assigned_doctor_id,
	current_risk_level,
	device_id,
	device_assigned_at,
	device_assignment_duration`

// GetByID fetches a patient or domain.ErrNotFound.
func (r *PatientsRepository) GetByID(ctx context.Context, patientID string) (*domain.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE patient_id = $1
	`
	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, patientID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient %s: %w", patientID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// UpdateRiskLevel sets the patient's current risk level.
func (r *PatientsRepository) UpdateRiskLevel(ctx context.Context, patientID string, risk domain.RiskLevel) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE patients SET current_risk_level = $2 WHERE patient_id = $1`,
		patientID, string(risk),
	)
	if err != nil {
		return fmt.Errorf("failed to update risk level: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("patient %s: %w", patientID, domain.ErrNotFound)
	}
	return nil
}

// ClearBindingFromOthers invalidates the device's binding on every
// patient other than the given one. Must run, and be visible, before
// the new binding commits so the device never has two active bindings.
func (r *PatientsRepository) ClearBindingFromOthers(ctx context.Context, deviceID, exceptPatientID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET device_assigned_at = NULL,
		    device_assignment_duration = NULL
		WHERE device_id = $1
		  AND patient_id <> $2
	`, deviceID, exceptPatientID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear binding from other patients: %w", err)
	}
	cleared, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read cleared row count: %w", err)
	}
	return cleared, nil
}

// SetDeviceBinding binds the device to the patient. A nil duration
// means the binding never expires.
func (r *PatientsRepository) SetDeviceBinding(ctx context.Context, patientID, deviceID string, assignedAt time.Time, durationSeconds *int64) error {
	var duration sql.NullInt64
	if durationSeconds != nil {
		duration = sql.NullInt64{Int64: *durationSeconds, Valid: true}
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET device_id = $2,
		    device_assigned_at = $3,
		    device_assignment_duration = $4
		WHERE patient_id = $1
	`, patientID, deviceID, assignedAt, duration)
	if err != nil {
		return fmt.Errorf("failed to set device binding: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("patient %s: %w", patientID, domain.ErrNotFound)
	}
	return nil
}

// ClearDeviceBinding unbinds the patient's device but keeps device_id
// for audit/history.
func (r *PatientsRepository) ClearDeviceBinding(ctx context.Context, patientID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET device_assigned_at = NULL,
		    device_assignment_duration = NULL
		WHERE patient_id = $1
	`, patientID)
	if err != nil {
		return fmt.Errorf("failed to clear device binding: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("patient %s: %w", patientID, domain.ErrNotFound)
	}
	return nil
}

// MostRecentlyAssigned returns the patient with the newest assigned-at
// for the device, or domain.ErrNotFound when no patient ever held an
// assignment. Expiry is not evaluated here; the resolver computes it
// lazily from the returned row.
func (r *PatientsRepository) MostRecentlyAssigned(ctx context.Context, deviceID string) (*domain.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE device_id = $1
		  AND device_assigned_at IS NOT NULL
		ORDER BY device_assigned_at DESC
		LIMIT 1
	`
	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, deviceID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device assignment: %w", err)
	}
	return patient, nil
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var patient domain.Patient
	var riskLevel string
	err := row.Scan(
		&patient.ID,
		&patient.FullName,
		&patient.AssignedDoctorID,
		&riskLevel,
		&patient.DeviceID,
		&patient.DeviceAssignedAt,
		&patient.DeviceAssignmentDuration,
	)
	if err != nil {
		return nil, err
	}
	patient.CurrentRiskLevel = domain.RiskLevel(riskLevel)
	return &patient, nil
}
