package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

// VitalReadingsRepository persists ingested readings and enforces the
// per-patient retention window.
type VitalReadingsRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewVitalReadingsRepository creates the repository.
func NewVitalReadingsRepository(db *sql.DB, logger *zap.Logger) *VitalReadingsRepository {
	return &VitalReadingsRepository{db: db, logger: logger}
}

// WithTx returns a copy bound to the given transaction.
func (r *VitalReadingsRepository) WithTx(tx *sql.Tx) *VitalReadingsRepository {
	return &VitalReadingsRepository{db: tx, logger: r.logger}
}

const vitalReadingColumns = `
	reading_id,
	patient_id,
	device_id,
	heart_rate,
	spo2,
	temperature,
	risk_level,
	scenario_id,
	specific_cause,
	possible_causes,
	symptoms,
	recommendations,
	recorded_at`

// InsertReading appends a reading. Readings are never updated.
func (r *VitalReadingsRepository) InsertReading(ctx context.Context, reading *domain.VitalReading) error {
	query := `
		INSERT INTO vital_readings (` + vitalReadingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		reading.ID,
		reading.PatientID,
		reading.DeviceID,
		reading.HeartRate,
		reading.SpO2,
		reading.Temperature,
		string(reading.RiskLevel),
		reading.ScenarioID,
		reading.SpecificCause,
		reading.PossibleCauses,
		reading.Symptoms,
		reading.Recommendations,
		reading.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vital reading: %w", err)
	}
	return nil
}

// CountByPatient returns the number of retained readings.
func (r *VitalReadingsRepository) CountByPatient(ctx context.Context, patientID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vital_readings WHERE patient_id = $1`, patientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count vital readings: %w", err)
	}
	return count, nil
}

// PruneToLimit deletes everything but the `keep` most recent readings
// for the patient, oldest first. Returns the number of rows deleted.
func (r *VitalReadingsRepository) PruneToLimit(ctx context.Context, patientID string, keep int) (int64, error) {
	query := `
		DELETE FROM vital_readings
		WHERE patient_id = $1
		  AND reading_id NOT IN (
			SELECT reading_id FROM vital_readings
			WHERE patient_id = $1
			ORDER BY recorded_at DESC
			LIMIT $2
		  )
	`
	result, err := r.db.ExecContext(ctx, query, patientID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune vital readings: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	return deleted, nil
}

// RecentByPatient returns up to `limit` readings, newest first.
func (r *VitalReadingsRepository) RecentByPatient(ctx context.Context, patientID string, limit int) ([]*domain.VitalReading, error) {
	query := `
		SELECT ` + vitalReadingColumns + `
		FROM vital_readings
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent vital readings: %w", err)
	}
	defer rows.Close()

	return scanVitalReadings(rows)
}

// LatestByPatient returns the newest reading or domain.ErrNotFound.
func (r *VitalReadingsRepository) LatestByPatient(ctx context.Context, patientID string) (*domain.VitalReading, error) {
	query := `
		SELECT ` + vitalReadingColumns + `
		FROM vital_readings
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	reading, err := scanVitalReading(r.db.QueryRowContext(ctx, query, patientID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no vital readings for patient %s: %w", patientID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest vital reading: %w", err)
	}
	return reading, nil
}

// ByPatientInRange returns readings between start and end, newest first.
func (r *VitalReadingsRepository) ByPatientInRange(ctx context.Context, patientID string, start, end time.Time) ([]*domain.VitalReading, error) {
	query := `
		SELECT ` + vitalReadingColumns + `
		FROM vital_readings
		WHERE patient_id = $1
		  AND recorded_at >= $2
		  AND recorded_at <= $3
		ORDER BY recorded_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, patientID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query vital readings in range: %w", err)
	}
	defer rows.Close()

	return scanVitalReadings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVitalReading(row rowScanner) (*domain.VitalReading, error) {
	var reading domain.VitalReading
	var riskLevel string
	err := row.Scan(
		&reading.ID,
		&reading.PatientID,
		&reading.DeviceID,
		&reading.HeartRate,
		&reading.SpO2,
		&reading.Temperature,
		&riskLevel,
		&reading.ScenarioID,
		&reading.SpecificCause,
		&reading.PossibleCauses,
		&reading.Symptoms,
		&reading.Recommendations,
		&reading.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	reading.RiskLevel = domain.RiskLevel(riskLevel)
	return &reading, nil
}

func scanVitalReadings(rows *sql.Rows) ([]*domain.VitalReading, error) {
	var readings []*domain.VitalReading
	for rows.Next() {
		reading, err := scanVitalReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vital reading: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vital readings: %w", err)
	}
	return readings, nil
}
