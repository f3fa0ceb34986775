package memory

import (
	"context"
	"sort"
	"sync"

	"survey-service/internal/domain"
)

// AnswerStore is an in-memory implementation of app.AnswerStore.
// The latest answer per question wins.
type AnswerStore struct {
	mu      sync.RWMutex
	answers map[int]domain.SubmittedAnswer
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{
		answers: make(map[int]domain.SubmittedAnswer),
	}
}

func (s *AnswerStore) SaveAnswer(_ context.Context, answer domain.SubmittedAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[answer.QuestionID] = answer
	return nil
}

func (s *AnswerStore) Get(questionID int) (domain.SubmittedAnswer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[questionID]
	return answer, ok
}

// All returns the stored answers ordered by question ID.
func (s *AnswerStore) All() []domain.SubmittedAnswer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SubmittedAnswer, 0, len(s.answers))
	for _, answer := range s.answers {
		out = append(out, answer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}
