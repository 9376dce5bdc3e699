package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

// HealthAlertsRepository persists CRITICAL/WARNING alerts.
type HealthAlertsRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewHealthAlertsRepository creates the repository.
func NewHealthAlertsRepository(db *sql.DB, logger *zap.Logger) *HealthAlertsRepository {
	return &HealthAlertsRepository{db: db, logger: logger}
}

// WithTx returns a copy bound to the given transaction.
func (r *HealthAlertsRepository) WithTx(tx *sql.Tx) *HealthAlertsRepository {
	return &HealthAlertsRepository{db: tx, logger: r.logger}
}

const healthAlertColumns = `
	alert_id,
	patient_id,
	doctor_id,
	reading_id,
	alert_type,
	message,
	is_read,
	created_at`

// InsertAlert appends an alert row.
func (r *HealthAlertsRepository) InsertAlert(ctx context.Context, alert *domain.HealthAlert) error {
	query := `
		INSERT INTO health_alerts (` + healthAlertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.PatientID,
		alert.DoctorID,
		alert.ReadingID,
		string(alert.AlertType),
		alert.Message,
		alert.IsRead,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert health alert: %w", err)
	}
	return nil
}

// GetByID fetches an alert or domain.ErrNotFound.
func (r *HealthAlertsRepository) GetByID(ctx context.Context, alertID string) (*domain.HealthAlert, error) {
	query := `
		SELECT ` + healthAlertColumns + `
		FROM health_alerts
		WHERE alert_id = $1
	`
	alert, err := scanHealthAlert(r.db.QueryRowContext(ctx, query, alertID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("alert %s: %w", alertID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health alert: %w", err)
	}
	return alert, nil
}

// ListByDoctor returns the doctor's alerts, newest first.
func (r *HealthAlertsRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*domain.HealthAlert, error) {
	query := `
		SELECT ` + healthAlertColumns + `
		FROM health_alerts
		WHERE doctor_id = $1
		ORDER BY created_at DESC
	`
	return r.queryAlerts(ctx, query, doctorID)
}

// ListUnreadByDoctor returns unread alerts, newest first.
func (r *HealthAlertsRepository) ListUnreadByDoctor(ctx context.Context, doctorID string) ([]*domain.HealthAlert, error) {
	query := `
		SELECT ` + healthAlertColumns + `
		FROM health_alerts
		WHERE doctor_id = $1
		  AND is_read = FALSE
		ORDER BY created_at DESC
	`
	return r.queryAlerts(ctx, query, doctorID)
}

// CountUnreadByDoctor returns the unread alert count.
func (r *HealthAlertsRepository) CountUnreadByDoctor(ctx context.Context, doctorID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM health_alerts WHERE doctor_id = $1 AND is_read = FALSE`,
		doctorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}

// ListByPatient returns a patient's alerts, newest first.
func (r *HealthAlertsRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.HealthAlert, error) {
	query := `
		SELECT ` + healthAlertColumns + `
		FROM health_alerts
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	return r.queryAlerts(ctx, query, patientID)
}

// MarkRead flags one alert as read.
func (r *HealthAlertsRepository) MarkRead(ctx context.Context, alertID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE health_alerts SET is_read = TRUE WHERE alert_id = $1`, alertID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("alert %s: %w", alertID, domain.ErrNotFound)
	}
	return nil
}

// MarkAllRead flags every unread alert of the doctor as read and
// returns how many were updated.
func (r *HealthAlertsRepository) MarkAllRead(ctx context.Context, doctorID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE health_alerts SET is_read = TRUE WHERE doctor_id = $1 AND is_read = FALSE`,
		doctorID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all alerts read: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read updated alert count: %w", err)
	}
	return updated, nil
}

func (r *HealthAlertsRepository) queryAlerts(ctx context.Context, query string, args ...any) ([]*domain.HealthAlert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query health alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.HealthAlert
	for rows.Next() {
		alert, err := scanHealthAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan health alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate health alerts: %w", err)
	}
	return alerts, nil
}

func scanHealthAlert(row rowScanner) (*domain.HealthAlert, error) {
	var alert domain.HealthAlert
	var alertType string
	err := row.Scan(
		&alert.ID,
		&alert.PatientID,
		&alert.DoctorID,
		&alert.ReadingID,
		&alertType,
		&alert.Message,
		&alert.IsRead,
		&alert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	alert.AlertType = domain.AlertType(alertType)
	return &alert, nil
}
