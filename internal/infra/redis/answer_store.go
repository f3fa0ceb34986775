package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"survey-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AnswersKey is a hash of question ID to the latest JSON-encoded answer:
// HSET survey:answers {questionID} {answer}
const AnswersKey = "survey:answers"

// AnswerStore is a Redis implementation of app.AnswerStore.
type AnswerStore struct {
	client *redis.Client
}

func NewAnswerStore(client *redis.Client) *AnswerStore {
	return &AnswerStore{client: client}
}

func (s *AnswerStore) SaveAnswer(ctx context.Context, answer domain.SubmittedAnswer) error {
	raw, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("encode answer: %w", err)
	}
	if err := s.client.HSet(ctx, AnswersKey, strconv.Itoa(answer.QuestionID), raw).Err(); err != nil {
		return fmt.Errorf("store answer: %w", err)
	}
	return nil
}

// Get returns the stored answer for a question.
func (s *AnswerStore) Get(ctx context.Context, questionID int) (domain.SubmittedAnswer, bool, error) {
	raw, err := s.client.HGet(ctx, AnswersKey, strconv.Itoa(questionID)).Bytes()
	if err == redis.Nil {
		return domain.SubmittedAnswer{}, false, nil
	}
	if err != nil {
		return domain.SubmittedAnswer{}, false, err
	}
	var answer domain.SubmittedAnswer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return domain.SubmittedAnswer{}, false, fmt.Errorf("decode answer: %w", err)
	}
	return answer, true, nil
}
