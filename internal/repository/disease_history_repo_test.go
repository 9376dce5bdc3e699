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

func setupMockHistoryDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *DiseaseHistoryRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewDiseaseHistoryRepository(db, zap.NewNop())
	return db, mock, repo
}

func diseaseHistoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"history_id", "patient_id", "disease_id", "disease_name",
		"possible_causes", "status", "detection_confidence",
		"detected_temperature", "detected_heart_rate", "detected_spo2",
		"observed_symptoms", "doctor_notes", "detected_at", "cleared_at",
	})
}

func TestFindActiveByDisease_Found(t *testing.T) {
	db, mock, repo := setupMockHistoryDB(t)
	defer db.Close()

	patientID := uuid.New().String()

	rows := diseaseHistoryRows().AddRow(
		"h1", patientID, 2, "Fever",
		"Usually an infection (viral or bacterial), inflammation, or immune response",
		"ACTIVE", 66.7, 38.5, int64(90), int64(93),
		"Elevated body temperature, Chills, sweating", nil, time.Now(), nil,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(patientID, 2).
		WillReturnRows(rows)

	h, err := repo.FindActiveByDisease(context.Background(), patientID, 2)
	require.NoError(t, err)
	assert.Equal(t, "h1", h.ID)
	assert.Equal(t, domain.DiseaseActive, h.Status)
	assert.InDelta(t, 66.7, h.DetectionConfidence, 0.01)
	require.True(t, h.DetectedTemperature.Valid)
	assert.InDelta(t, 38.5, h.DetectedTemperature.Float64, 0.01)
}

func TestFindActiveByDisease_NotFound(t *testing.T) {
	db, mock, repo := setupMockHistoryDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByDisease(context.Background(), uuid.New().String(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus_Cleared(t *testing.T) {
	db, mock, repo := setupMockHistoryDB(t)
	defer db.Close()

	clearedAt := time.Now()

	mock.ExpectExec(`UPDATE patient_disease_history`).
		WithArgs("h1", "CLEARED", sql.NullTime{Time: clearedAt, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "h1", domain.DiseaseCleared, &clearedAt)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByPatientAndStatus(t *testing.T) {
	db, mock, repo := setupMockHistoryDB(t)
	defer db.Close()

	patientID := uuid.New().String()

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(patientID, "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByPatientAndStatus(context.Background(), patientID, domain.DiseaseActive)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
