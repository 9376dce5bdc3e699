package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

// DiseaseHistoryRepository persists longer-lived disease records
// derived from matches or entered manually.
type DiseaseHistoryRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewDiseaseHistoryRepository creates the repository.
func NewDiseaseHistoryRepository(db *sql.DB, logger *zap.Logger) *DiseaseHistoryRepository {
	return &DiseaseHistoryRepository{db: db, logger: logger}
}

const diseaseHistoryColumns = `
	history_id,
	patient_id,
	disease_id,
	disease_name,
	possible_causes,
	status,
	detection_confidence,
	detected_temperature,
	detected_heart_rate,
	detected_spo2,
	observed_symptoms,
	doctor_notes,
	detected_at,
	cleared_at`

// InsertHistory appends a disease history record.
func (r *DiseaseHistoryRepository) InsertHistory(ctx context.Context, h *domain.DiseaseHistory) error {
	query := `
		INSERT INTO patient_disease_history (` + diseaseHistoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		h.ID,
		h.PatientID,
		h.DiseaseID,
		h.DiseaseName,
		h.PossibleCauses,
		string(h.Status),
		h.DetectionConfidence,
		h.DetectedTemperature,
		h.DetectedHeartRate,
		h.DetectedSpO2,
		h.ObservedSymptoms,
		h.DoctorNotes,
		h.DetectedAt,
		h.ClearedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert disease history: %w", err)
	}
	return nil
}

// GetByID fetches a record or domain.ErrNotFound.
func (r *DiseaseHistoryRepository) GetByID(ctx context.Context, historyID string) (*domain.DiseaseHistory, error) {
	query := `
		SELECT ` + diseaseHistoryColumns + `
		FROM patient_disease_history
		WHERE history_id = $1
	`
	h, err := scanDiseaseHistory(r.db.QueryRowContext(ctx, query, historyID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("disease history %s: %w", historyID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get disease history: %w", err)
	}
	return h, nil
}

// FindActiveByDisease returns the patient's ACTIVE record for the
// disease, or domain.ErrNotFound.
func (r *DiseaseHistoryRepository) FindActiveByDisease(ctx context.Context, patientID string, diseaseID int) (*domain.DiseaseHistory, error) {
	query := `
		SELECT ` + diseaseHistoryColumns + `
		FROM patient_disease_history
		WHERE patient_id = $1
		  AND disease_id = $2
		  AND status = 'ACTIVE'
		LIMIT 1
	`
	h, err := scanDiseaseHistory(r.db.QueryRowContext(ctx, query, patientID, diseaseID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("active disease %d for patient %s: %w", diseaseID, patientID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active disease history: %w", err)
	}
	return h, nil
}

// ListByPatient returns all records, active statuses first, newest
// detected within each status.
func (r *DiseaseHistoryRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.DiseaseHistory, error) {
	query := `
		SELECT ` + diseaseHistoryColumns + `
		FROM patient_disease_history
		WHERE patient_id = $1
		ORDER BY
			CASE status
				WHEN 'ACTIVE' THEN 0
				WHEN 'MONITORING' THEN 1
				WHEN 'CHRONIC' THEN 2
				ELSE 3
			END,
			detected_at DESC
	`
	return r.queryHistory(ctx, query, patientID)
}

// ListByPatientAndStatus returns records in one status, newest first.
func (r *DiseaseHistoryRepository) ListByPatientAndStatus(ctx context.Context, patientID string, status domain.DiseaseStatus) ([]*domain.DiseaseHistory, error) {
	query := `
		SELECT ` + diseaseHistoryColumns + `
		FROM patient_disease_history
		WHERE patient_id = $1
		  AND status = $2
		ORDER BY detected_at DESC
	`
	return r.queryHistory(ctx, query, patientID, string(status))
}

// CountByPatientAndStatus returns how many records sit in one status.
func (r *DiseaseHistoryRepository) CountByPatientAndStatus(ctx context.Context, patientID string, status domain.DiseaseStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM patient_disease_history WHERE patient_id = $1 AND status = $2`,
		patientID, string(status),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count disease history: %w", err)
	}
	return count, nil
}

// UpdateConfidence refreshes the detection confidence of a record.
func (r *DiseaseHistoryRepository) UpdateConfidence(ctx context.Context, historyID string, confidence float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE patient_disease_history SET detection_confidence = $2 WHERE history_id = $1`,
		historyID, confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to update detection confidence: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("disease history %s: %w", historyID, domain.ErrNotFound)
	}
	return nil
}

// UpdateStatus transitions a record; clearedAt is set only for
// CLEARED transitions and nil otherwise.
func (r *DiseaseHistoryRepository) UpdateStatus(ctx context.Context, historyID string, status domain.DiseaseStatus, clearedAt *time.Time) error {
	var cleared sql.NullTime
	if clearedAt != nil {
		cleared = sql.NullTime{Time: *clearedAt, Valid: true}
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE patient_disease_history SET status = $2, cleared_at = $3 WHERE history_id = $1`,
		historyID, string(status), cleared,
	)
	if err != nil {
		return fmt.Errorf("failed to update disease status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("disease history %s: %w", historyID, domain.ErrNotFound)
	}
	return nil
}

// UpdateDoctorNotes replaces the notes blob.
func (r *DiseaseHistoryRepository) UpdateDoctorNotes(ctx context.Context, historyID, notes string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE patient_disease_history SET doctor_notes = $2 WHERE history_id = $1`,
		historyID, notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor notes: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("disease history %s: %w", historyID, domain.ErrNotFound)
	}
	return nil
}

func (r *DiseaseHistoryRepository) queryHistory(ctx context.Context, query string, args ...any) ([]*domain.DiseaseHistory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query disease history: %w", err)
	}
	defer rows.Close()

	var records []*domain.DiseaseHistory
	for rows.Next() {
		h, err := scanDiseaseHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disease history: %w", err)
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate disease history: %w", err)
	}
	return records, nil
}

func scanDiseaseHistory(row rowScanner) (*domain.DiseaseHistory, error) {
	var h domain.DiseaseHistory
	var status string
	err := row.Scan(
		&h.ID,
		&h.PatientID,
		&h.DiseaseID,
		&h.DiseaseName,
		&h.PossibleCauses,
		&status,
		&h.DetectionConfidence,
		&h.DetectedTemperature,
		&h.DetectedHeartRate,
		&h.DetectedSpO2,
		&h.ObservedSymptoms,
		&h.DoctorNotes,
		&h.DetectedAt,
		&h.ClearedAt,
	)
	if err != nil {
		return nil, err
	}
	h.Status = domain.DiseaseStatus(status)
	return &h, nil
}
