package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

func setupMockAlertsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *HealthAlertsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewHealthAlertsRepository(db, zap.NewNop())
	return db, mock, repo
}

func TestInsertAlert(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	alert := &domain.HealthAlert{
		ID:        uuid.New().String(),
		PatientID: uuid.New().String(),
		DoctorID:  uuid.New().String(),
		ReadingID: uuid.New().String(),
		AlertType: domain.AlertCritical,
		Message:   "Scenario 1: Bradycardia, Hypothermia, Hypoxemia - Cardiac issues, hypothermia, respiratory problems, or other serious conditions",
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO health_alerts`).
		WithArgs(
			alert.ID, alert.PatientID, alert.DoctorID, alert.ReadingID,
			"CRITICAL", alert.Message, false, alert.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.InsertAlert(context.Background(), alert))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUnreadByDoctor(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(doctorID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnreadByDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMarkRead_NotFound(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE health_alerts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListUnreadByDoctor(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	doctorID := uuid.New().String()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"alert_id", "patient_id", "doctor_id", "reading_id",
		"alert_type", "message", "is_read", "created_at",
	}).AddRow("a1", "p1", doctorID, "r1", "WARNING", "Scenario 6: Tachycardia - Stress, anxiety, caffeine, or underlying condition", false, now)

	mock.ExpectQuery(`SELECT`).
		WithArgs(doctorID).
		WillReturnRows(rows)

	alerts, err := repo.ListUnreadByDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertWarning, alerts[0].AlertType)
	assert.False(t, alerts[0].IsRead)
}
