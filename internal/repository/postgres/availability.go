package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
)

func (r *availabilityRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (
			id, doctor_id, start_time, end_time, location, reserved,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	slot.ID = uuid.New()
	slot.Reserved = false
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.DoctorID,
		slot.StartTime,
		slot.EndTime,
		slot.Location,
		slot.Reserved,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability slot: %w", err)
	}
	return nil
}

func (r *availabilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	query := `
		SELECT id, doctor_id, start_time, end_time, location, reserved,
			   created_at, updated_at
		FROM availability_slots
		WHERE id = $1
	`
	var slot model.AvailabilitySlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability slot: %w", err)
	}
	return &slot, nil
}

func (r *availabilityRepository) HasOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM availability_slots
			WHERE doctor_id = $1
			AND start_time < $3
			AND end_time > $2
		)
	`
	var hasOverlap bool
	err := r.db.GetContext(ctx, &hasOverlap, query, doctorID, start, end)
	if err != nil {
		return false, fmt.Errorf("failed to check slot overlap: %w", err)
	}
	return hasOverlap, nil
}

func (r *availabilityRepository) ListOpen(ctx context.Context, doctorID uuid.UUID, from, to *time.Time) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT id, doctor_id, start_time, end_time, location, reserved,
			   created_at, updated_at
		FROM availability_slots
		WHERE doctor_id = $1
		AND reserved = FALSE
		AND start_time > NOW()
	`
	args := []interface{}{doctorID}
	argCount := 2

	if from != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, *from)
		argCount++
	}
	if to != nil {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, *to)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var slots []*model.AvailabilitySlot
	err := r.db.SelectContext(ctx, &slots, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list open slots: %w", err)
	}
	return slots, nil
}
