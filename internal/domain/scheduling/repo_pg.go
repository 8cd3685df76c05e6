package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepoPG persists attempts in Postgres so the diagnostic trail
// survives restarts.
type AttemptRepoPG struct{ pool *pgxpool.Pool }

func NewAttemptRepoPG(pool *pgxpool.Pool) *AttemptRepoPG { return &AttemptRepoPG{pool: pool} }

const attemptCols = `id, patient_id, meeting_date, meeting_time, succeeded, error_kind, error_message, event_id, created_at`

func scanAttempt(row pgx.Row) (*Attempt, error) {
	var a Attempt
	err := row.Scan(&a.ID, &a.PatientID, &a.Date, &a.Time, &a.Succeeded,
		&a.ErrorKind, &a.Error, &a.EventID, &a.CreatedAt)
	return &a, err
}

func (r *AttemptRepoPG) Create(ctx context.Context, a *Attempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO meeting_attempt (id, patient_id, meeting_date, meeting_time, succeeded, error_kind, error_message, event_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.Date, a.Time, a.Succeeded, a.ErrorKind, a.Error, a.EventID, a.CreatedAt)
	return err
}

func (r *AttemptRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx, `SELECT `+attemptCols+` FROM meeting_attempt WHERE id = $1`, id))
}

func (r *AttemptRepoPG) List(ctx context.Context, patientID string, limit, offset int) ([]*Attempt, int, error) {
	where, args := ``, []interface{}{}
	if patientID != "" {
		where = ` WHERE patient_id = $1`
		args = append(args, patientID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM meeting_attempt`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM meeting_attempt%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		attemptCols, where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	attempts := []*Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}
