package postgres

import (
	"context"
	"fmt"

	"survey-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AnswerStore appends accepted answers to the answers table.
type AnswerStore struct {
	pool *pgxpool.Pool
}

func NewAnswerStore(pool *pgxpool.Pool) *AnswerStore {
	return &AnswerStore{pool: pool}
}

func (s *AnswerStore) SaveAnswer(ctx context.Context, answer domain.SubmittedAnswer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO answers (question_id, answer, submitted_at) VALUES ($1, $2, $3)`,
		answer.QuestionID, answer.Text, answer.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}
