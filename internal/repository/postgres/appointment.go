package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
)

// withTx executes fn within a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Reserve claims the slot and records the appointment in one transaction.
// The conditional UPDATE on reserved is the compare-and-set that guarantees
// at most one concurrent caller wins the slot.
func (r *appointmentRepository) Reserve(ctx context.Context, slotID, patientID uuid.UUID) (*model.Appointment, error) {
	appointment := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		PatientID: patientID,
		SlotID:    slotID,
		Status:    model.AppointmentStatusBooked,
	}

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		claim := `
			UPDATE availability_slots
			SET reserved = TRUE, updated_at = NOW()
			WHERE id = $1 AND reserved = FALSE
			RETURNING doctor_id
		`
		err := tx.QueryRowContext(ctx, claim, slotID).Scan(&appointment.DoctorID)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrSlotUnavailable
		}
		if err != nil {
			return fmt.Errorf("failed to claim slot: %w", err)
		}

		insert := `
			INSERT INTO appointments (
				id, doctor_id, patient_id, slot_id, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = tx.ExecContext(ctx, insert,
			appointment.ID,
			appointment.DoctorID,
			appointment.PatientID,
			appointment.SlotID,
			appointment.Status,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return appointment, nil
}

// Cancel marks the appointment canceled and releases its slot in one
// transaction. The conditional UPDATE on status makes a second cancel a
// no-op that surfaces as ErrAlreadyCanceled.
func (r *appointmentRepository) Cancel(ctx context.Context, appointmentID, slotID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cancel := `
			UPDATE appointments
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`
		result, err := tx.ExecContext(ctx, cancel,
			model.AppointmentStatusCanceled,
			appointmentID,
			model.AppointmentStatusBooked,
		)
		if err != nil {
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrAlreadyCanceled
		}

		release := `
			UPDATE availability_slots
			SET reserved = FALSE, updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, release, slotID); err != nil {
			return fmt.Errorf("failed to release slot: %w", err)
		}
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, slot_id, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

const detailColumns = `
	a.id, a.doctor_id, a.patient_id, a.slot_id, a.status, a.created_at, a.updated_at,
	s.start_time AS slot_start, s.end_time AS slot_end, s.location AS slot_location,
	d.name AS doctor_name, d.email AS doctor_email,
	p.name AS patient_name, p.email AS patient_email
`

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM appointments a
		JOIN availability_slots s ON s.id = a.slot_id
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.id = $1
	`
	var detail model.AppointmentDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment detail: %w", err)
	}
	return &detail, nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM appointments a
		JOIN availability_slots s ON s.id = a.slot_id
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.patient_id = $1
		ORDER BY a.created_at DESC
	`
	var details []*model.AppointmentDetail
	err := r.db.SelectContext(ctx, &details, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return details, nil
}

func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM appointments a
		JOIN availability_slots s ON s.id = a.slot_id
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1
		ORDER BY a.created_at DESC
	`
	var details []*model.AppointmentDetail
	err := r.db.SelectContext(ctx, &details, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return details, nil
}
