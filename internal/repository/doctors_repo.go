package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

// DoctorsRepository resolves alert recipients.
type DoctorsRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewDoctorsRepository creates the repository.
func NewDoctorsRepository(db *sql.DB, logger *zap.Logger) *DoctorsRepository {
	return &DoctorsRepository{db: db, logger: logger}
}

// GetByID fetches a doctor or domain.ErrNotFound.
func (r *DoctorsRepository) GetByID(ctx context.Context, doctorID string) (*domain.Doctor, error) {
	var doctor domain.Doctor
	err := r.db.QueryRowContext(ctx, `
		SELECT doctor_id, full_name, expo_push_token
		FROM doctors
		WHERE doctor_id = $1
	`, doctorID).Scan(&doctor.ID, &doctor.FullName, &doctor.ExpoPushToken)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("doctor %s: %w", doctorID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}
