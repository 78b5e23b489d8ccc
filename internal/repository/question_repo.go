package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lms/internal/model"
)

// QuestionRepository defines the interface for interacting with quiz
// questions and their options
type QuestionRepository interface {
	// CreateQuestion inserts the question and its options in one
	// transaction; Sequence is assigned as the current count + 1.
	CreateQuestion(ctx context.Context, q *model.Question) error
	// UpdateQuestion rewrites the question row and replaces its options in
	// one transaction.
	UpdateQuestion(ctx context.Context, q *model.Question) error
	// DeleteQuestion removes the question and closes the sequence gap so
	// sequences stay dense.
	DeleteQuestion(ctx context.Context, questionID int64) error
	GetQuestionByID(ctx context.Context, questionID int64) (*model.Question, error)
	GetQuestionBySequence(ctx context.Context, lessonID int64, seq int) (*model.Question, error)
	ListQuestionsByLesson(ctx context.Context, lessonID int64) ([]model.Question, error)
	CountQuestionsByLesson(ctx context.Context, lessonID int64) (int, error)
	// UpdateSequences applies a full sequence map transactionally.
	UpdateSequences(ctx context.Context, lessonID int64, sequences map[int64]int) error
}

type questionRepo struct {
	db *sql.DB
}

// NewQuestionRepo creates a new QuestionRepository
func NewQuestionRepo(db *sql.DB) QuestionRepository {
	return &questionRepo{db: db}
}

// CreateQuestion inserts a question with its options
func (r *questionRepo) CreateQuestion(ctx context.Context, q *model.Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO questions (lesson_id, prompt, points, sequence, explanation)
		VALUES ($1, $2, $3,
			(SELECT COUNT(*) + 1 FROM questions WHERE lesson_id = $1),
			$4)
		RETURNING id, sequence, created_at
	`
	if err := tx.QueryRowContext(ctx, query, q.LessonID, q.Prompt, q.Points, q.Explanation).
		Scan(&q.ID, &q.Sequence, &q.CreatedAt); err != nil {
		return err
	}

	if err := insertOptions(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateQuestion rewrites a question and replaces its options
func (r *questionRepo) UpdateQuestion(ctx context.Context, q *model.Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE questions
		SET prompt = $1, points = $2, explanation = $3
		WHERE id = $4
		RETURNING lesson_id, sequence, created_at
	`
	if err := tx.QueryRowContext(ctx, query, q.Prompt, q.Points, q.Explanation, q.ID).
		Scan(&q.LessonID, &q.Sequence, &q.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM options WHERE question_id = $1`, q.ID); err != nil {
		return err
	}
	if err := insertOptions(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit()
}

func insertOptions(ctx context.Context, tx *sql.Tx, q *model.Question) error {
	for i := range q.Options {
		o := &q.Options[i]
		o.QuestionID = q.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO options (question_id, body, is_correct) VALUES ($1, $2, $3) RETURNING id`,
			o.QuestionID, o.Body, o.IsCorrect,
		).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("insert option %d: %w", i, err)
		}
	}
	return nil
}

// DeleteQuestion removes a question and resequences the remainder
func (r *questionRepo) DeleteQuestion(ctx context.Context, questionID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lessonID int64
	var seq int
	err = tx.QueryRowContext(ctx,
		`DELETE FROM questions WHERE id = $1 RETURNING lesson_id, sequence`, questionID,
	).Scan(&lessonID, &seq)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE questions SET sequence = sequence - 1 WHERE lesson_id = $1 AND sequence > $2`,
		lessonID, seq,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetQuestionByID retrieves a question with its options
func (r *questionRepo) GetQuestionByID(ctx context.Context, questionID int64) (*model.Question, error) {
	query := `
		SELECT id, lesson_id, prompt, points, sequence, explanation, created_at
		FROM questions
		WHERE id = $1
	`
	return r.getQuestion(ctx, query, questionID)
}

// GetQuestionBySequence retrieves the question at a 1-based sequence within
// a lesson
func (r *questionRepo) GetQuestionBySequence(ctx context.Context, lessonID int64, seq int) (*model.Question, error) {
	query := `
		SELECT id, lesson_id, prompt, points, sequence, explanation, created_at
		FROM questions
		WHERE lesson_id = $1 AND sequence = $2
	`
	return r.getQuestion(ctx, query, lessonID, seq)
}

func (r *questionRepo) getQuestion(ctx context.Context, query string, args ...any) (*model.Question, error) {
	var q model.Question
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&q.ID, &q.LessonID, &q.Prompt, &q.Points, &q.Sequence, &q.Explanation, &q.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadOptions(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) loadOptions(ctx context.Context, q *model.Question) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question_id, body, is_correct FROM options WHERE question_id = $1 ORDER BY id ASC`,
		q.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Body, &o.IsCorrect); err != nil {
			return err
		}
		q.Options = append(q.Options, o)
	}
	return rows.Err()
}

// ListQuestionsByLesson retrieves a lesson's questions with options, in
// sequence order
func (r *questionRepo) ListQuestionsByLesson(ctx context.Context, lessonID int64) ([]model.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lesson_id, prompt, points, sequence, explanation, created_at
		FROM questions
		WHERE lesson_id = $1
		ORDER BY sequence ASC
	`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.LessonID, &q.Prompt, &q.Points, &q.Sequence, &q.Explanation, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	for i := range questions {
		if err := r.loadOptions(ctx, &questions[i]); err != nil {
			return nil, err
		}
	}
	if len(questions) == 0 {
		return []model.Question{}, nil
	}
	return questions, nil
}

// CountQuestionsByLesson returns the number of questions in a lesson's quiz
func (r *questionRepo) CountQuestionsByLesson(ctx context.Context, lessonID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE lesson_id = $1`, lessonID,
	).Scan(&n)
	return n, err
}

// UpdateSequences applies a full reorder in one transaction
func (r *questionRepo) UpdateSequences(ctx context.Context, lessonID int64, sequences map[int64]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for id, seq := range sequences {
		res, err := tx.ExecContext(ctx,
			`UPDATE questions SET sequence = $1 WHERE id = $2 AND lesson_id = $3`,
			seq, id, lessonID,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("question %d does not belong to lesson %d", id, lessonID)
		}
	}
	return tx.Commit()
}
