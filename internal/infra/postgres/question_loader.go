package postgres

import (
	"context"
	"fmt"

	"survey-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads the survey questions from Postgres in survey order.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, prompt FROM questions ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Prompt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
