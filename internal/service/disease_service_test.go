package service

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
	"medico-vitals/internal/repository"
	"medico-vitals/internal/triage"
)

func setupDiseaseService(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *diseaseService) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	svc := NewDiseaseService(
		repository.NewPatientsRepository(db, logger),
		repository.NewVitalReadingsRepository(db, logger),
		repository.NewDiseaseHistoryRepository(db, logger),
		logger,
	).(*diseaseService)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return db, mock, svc
}

func ownedPatientRows(patientID, doctorID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"patient_id", "full_name", "assigned_doctor_id", "current_risk_level",
		"device_id", "device_assigned_at", "device_assignment_duration",
	}).AddRow(patientID, "Jane Roe", doctorID, "NORMAL", nil, nil, nil)
}

func latestReadingRows(patientID string, hr, spo2 int, temp float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"reading_id", "patient_id", "device_id", "heart_rate", "spo2", "temperature",
		"risk_level", "scenario_id", "specific_cause", "possible_causes", "symptoms",
		"recommendations", "recorded_at",
	}).AddRow(
		uuid.New().String(), patientID, "dev-001", hr, spo2, temp,
		"MODERATE", 13, "", "", "", "", time.Now(),
	)
}

func historyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"history_id", "patient_id", "disease_id", "disease_name", "possible_causes",
		"status", "detection_confidence", "detected_temperature", "detected_heart_rate",
		"detected_spo2", "observed_symptoms", "doctor_notes", "detected_at", "cleared_at",
	})
}

func TestMatchForPatient(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(latestReadingRows(patientID, 90, 93, 38.5))

	matches, err := svc.MatchForPatient(context.Background(), patientID, doctorID)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, 1, matches[0].Disease.ID)
	assert.InDelta(t, 100.0, matches[0].Confidence, 0.01)
}

func TestMatchForPatient_NoReadings(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnError(sql.ErrNoRows)

	matches, err := svc.MatchForPatient(context.Background(), patientID, doctorID)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatchForPatient_AccessDenied(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, uuid.New().String()))

	_, err := svc.MatchForPatient(context.Background(), patientID, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestRecordFromMatch_InsertsNew(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(latestReadingRows(patientID, 90, 93, 38.5))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID, 1).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO patient_disease_history`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := svc.RecordFromMatch(context.Background(), RecordDiseaseRequest{
		PatientID: patientID,
		DoctorID:  doctorID,
		DiseaseID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cough, Cold, and Sore Throat", record.DiseaseName)
	assert.Equal(t, domain.DiseaseActive, record.Status)
	assert.InDelta(t, 100.0, record.DetectionConfidence, 0.01)
	require.True(t, record.DetectedTemperature.Valid)
	assert.InDelta(t, 38.5, record.DetectedTemperature.Float64, 0.001)
	require.True(t, record.DetectedHeartRate.Valid)
	assert.Equal(t, int64(90), record.DetectedHeartRate.Int64)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFromMatch_RefreshesActiveRecord(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()
	historyID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(latestReadingRows(patientID, 90, 93, 38.5))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID, 1).
		WillReturnRows(historyRows().AddRow(
			historyID, patientID, 1, "Cough, Cold, and Sore Throat", "Viral infection",
			"ACTIVE", 66.7, 38.0, 85, 94, "Cough", nil, time.Now().Add(-24*time.Hour), nil,
		))
	mock.ExpectExec(`UPDATE patient_disease_history`).
		WithArgs(historyID, 100.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := svc.RecordFromMatch(context.Background(), RecordDiseaseRequest{
		PatientID: patientID,
		DoctorID:  doctorID,
		DiseaseID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, historyID, record.ID)
	assert.InDelta(t, 100.0, record.DetectionConfidence, 0.01)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFromMatch_DiseaseDoesNotMatch(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	// Typhoid needs temp >= 39.0; 38.5 does not qualify.
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(latestReadingRows(patientID, 90, 93, 38.5))

	_, err := svc.RecordFromMatch(context.Background(), RecordDiseaseRequest{
		PatientID: patientID,
		DoctorID:  doctorID,
		DiseaseID: 11,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecordFromMatch_UnknownDisease(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))

	_, err := svc.RecordFromMatch(context.Background(), RecordDiseaseRequest{
		PatientID: patientID,
		DoctorID:  doctorID,
		DiseaseID: 99,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecordManually_NoReadingsOnFile(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO patient_disease_history`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := svc.RecordManually(context.Background(), RecordManualRequest{
		PatientID:   patientID,
		DoctorID:    doctorID,
		DiseaseID:   2,
		Confidence:  80,
		DoctorNotes: "reported fever at home",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fever", record.DiseaseName)
	assert.False(t, record.DetectedTemperature.Valid)
	require.True(t, record.DoctorNotes.Valid)
	assert.Equal(t, "[2025-06-01 12:00] reported fever at home", record.DoctorNotes.String)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordManually_ConfidenceOutOfRange(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))

	_, err := svc.RecordManually(context.Background(), RecordManualRequest{
		PatientID:  patientID,
		DoctorID:   doctorID,
		DiseaseID:  2,
		Confidence: 120,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAutoRecordFromMatches(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(latestReadingRows(patientID, 90, 93, 38.5))

	// (38.5°C, 90, 93) matches 8 diseases at or above the auto-record
	// cutoff; the two 50% matches (Fever, Chikungunya) stay out.
	autoIDs := []int{1, 6, 9, 10, 12, 3, 4, 8}
	for _, id := range autoIDs {
		mock.ExpectQuery(`SELECT`).WithArgs(patientID, id).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(`INSERT INTO patient_disease_history`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	recorded, err := svc.AutoRecordFromMatches(context.Background(), patientID, doctorID)
	require.NoError(t, err)
	require.Len(t, recorded, len(autoIDs))
	for i, id := range autoIDs {
		assert.Equal(t, id, recorded[i].DiseaseID)
		assert.GreaterOrEqual(t, recorded[i].DetectionConfidence, triage.AutoRecordConfidenceMin)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_ClearedStampsTime(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()
	historyID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(historyID).
		WillReturnRows(historyRows().AddRow(
			historyID, patientID, 2, "Fever", "Infection",
			"ACTIVE", 80.0, nil, nil, nil, "Fever", nil, time.Now(), nil,
		))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	mock.ExpectExec(`UPDATE patient_disease_history`).
		WithArgs(historyID, "CLEARED", sql.NullTime{Time: svc.now(), Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.UpdateStatus(context.Background(), historyID, doctorID, domain.DiseaseCleared)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	db, _, svc := setupDiseaseService(t)
	defer db.Close()

	err := svc.UpdateStatus(context.Background(), uuid.New().String(), uuid.New().String(), "RESOLVED")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddDoctorNotes_AppendsStamped(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()
	historyID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(historyID).
		WillReturnRows(historyRows().AddRow(
			historyID, patientID, 2, "Fever", "Infection",
			"ACTIVE", 80.0, nil, nil, nil, "Fever", "[2025-05-30 09:00] first visit", time.Now(), nil,
		))
	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	mock.ExpectExec(`UPDATE patient_disease_history`).
		WithArgs(historyID, "[2025-05-30 09:00] first visit\n[2025-06-01 12:00] fever subsiding").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.AddDoctorNotes(context.Background(), historyID, doctorID, "fever subsiding")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummary(t *testing.T) {
	db, mock, svc := setupDiseaseService(t)
	defer db.Close()

	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).WithArgs(patientID).
		WillReturnRows(ownedPatientRows(patientID, doctorID))
	for _, n := range []int{2, 1, 3, 0} { // ACTIVE, MONITORING, CLEARED, CHRONIC
		mock.ExpectQuery(`SELECT COUNT`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(n))
	}

	summary, err := svc.Summary(context.Background(), patientID, doctorID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Active)
	assert.Equal(t, 1, summary.Monitoring)
	assert.Equal(t, 3, summary.Cleared)
	assert.Equal(t, 0, summary.Chronic)
}

func TestAllDiseases(t *testing.T) {
	db, _, svc := setupDiseaseService(t)
	defer db.Close()

	diseases := svc.AllDiseases()
	assert.Len(t, diseases, 12)
}
