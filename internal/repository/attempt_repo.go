package repository

import (
	"context"
	"database/sql"

	"lms/internal/model"
)

// AttemptRepository defines the interface for interacting with quiz attempts
type AttemptRepository interface {
	// CreateAttempt stores the attempt and its answers in one transaction.
	CreateAttempt(ctx context.Context, a *model.Attempt, answers []model.AttemptAnswer) error
	GetAttemptByID(ctx context.Context, attemptID int64) (*model.Attempt, error)
	ListAnswers(ctx context.Context, attemptID int64) ([]model.AttemptAnswer, error)
}

type attemptRepo struct {
	db *sql.DB
}

// NewAttemptRepo creates a new AttemptRepository
func NewAttemptRepo(db *sql.DB) AttemptRepository {
	return &attemptRepo{db: db}
}

// CreateAttempt inserts an attempt with its answer rows
func (r *attemptRepo) CreateAttempt(ctx context.Context, a *model.Attempt, answers []model.AttemptAnswer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO attempts (lesson_id, user_id, score, passed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, query, a.LessonID, a.UserID, a.Score, a.Passed).
		Scan(&a.ID, &a.CreatedAt); err != nil {
		return err
	}

	for _, ans := range answers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attempt_answers (attempt_id, question_id, option_id) VALUES ($1, $2, $3)`,
			a.ID, ans.QuestionID, ans.OptionID,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetAttemptByID retrieves an attempt by its ID
func (r *attemptRepo) GetAttemptByID(ctx context.Context, attemptID int64) (*model.Attempt, error) {
	query := `
		SELECT id, lesson_id, user_id, score, passed, created_at
		FROM attempts
		WHERE id = $1
	`
	var a model.Attempt
	err := r.db.QueryRowContext(ctx, query, attemptID).Scan(
		&a.ID, &a.LessonID, &a.UserID, &a.Score, &a.Passed, &a.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListAnswers retrieves the answers recorded for an attempt
func (r *attemptRepo) ListAnswers(ctx context.Context, attemptID int64) ([]model.AttemptAnswer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT attempt_id, question_id, option_id FROM attempt_answers WHERE attempt_id = $1`,
		attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.AttemptAnswer
	for rows.Next() {
		var a model.AttemptAnswer
		if err := rows.Scan(&a.AttemptID, &a.QuestionID, &a.OptionID); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return []model.AttemptAnswer{}, nil
	}
	return answers, nil
}
