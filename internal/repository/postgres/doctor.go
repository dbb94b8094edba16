package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
)

const uniqueViolation = "23505"

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, name, email, password_hash, specialty, experience,
			city, state, consultation_locations, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.Name,
		doctor.Email,
		doctor.PasswordHash,
		doctor.Specialty,
		doctor.Experience,
		doctor.City,
		doctor.State,
		doctor.ConsultationLocations,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, name, email, password_hash, specialty, experience,
			   city, state, consultation_locations, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	query := `
		SELECT id, name, email, password_hash, specialty, experience,
			   city, state, consultation_locations, created_at, updated_at
		FROM doctors
		WHERE email = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor by email: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	query := `
		SELECT id, name, email, password_hash, specialty, experience,
			   city, state, consultation_locations, created_at, updated_at
		FROM doctors
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Specialty != "" {
			query += fmt.Sprintf(" AND specialty ILIKE $%d", argCount)
			args = append(args, "%"+filters.Specialty+"%")
			argCount++
		}
		if filters.City != "" {
			query += fmt.Sprintf(" AND city ILIKE $%d", argCount)
			args = append(args, "%"+filters.City+"%")
			argCount++
		}
		if filters.State != "" {
			query += fmt.Sprintf(" AND state ILIKE $%d", argCount)
			args = append(args, "%"+filters.State+"%")
			argCount++
		}
		if filters.Name != "" {
			query += fmt.Sprintf(" AND name ILIKE $%d", argCount)
			args = append(args, "%"+filters.Name+"%")
			argCount++
		}
	}

	query += " ORDER BY name ASC"

	var doctors []*model.Doctor
	err := r.db.SelectContext(ctx, &doctors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) UpdateConsultationLocations(ctx context.Context, id uuid.UUID, locations []string) (*model.Doctor, error) {
	query := `
		UPDATE doctors
		SET consultation_locations = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, pq.StringArray(locations), time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update consultation locations: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, repository.ErrNotFound
	}

	return r.Get(ctx, id)
}
