package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"survey-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the question list from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the question list with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	loaded    bool
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := r.cached(r.clock()); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do("questions", func() (interface{}, error) {
		now := r.clock()
		if questions, ok := r.cached(now); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		expiresAt := now.Add(r.ttlWithJitter())
		r.mu.Lock()
		r.questions = questions
		r.loaded = true
		r.expiresAt = expiresAt
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (r *QuestionRepository) cached(now time.Time) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded || !r.expiresAt.After(now) {
		return nil, false
	}
	return cloneQuestions(r.questions), true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader is a simple loader backed by a fixed list (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return cloneQuestions(l.questions), nil
}

// SampleQuestions is the survey served when no database is configured.
func SampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Prompt: "What is your favourite colour?"},
		{ID: 2, Prompt: "What is your favourite food?"},
		{ID: 3, Prompt: "What is your favourite country?"},
		{ID: 4, Prompt: "What is your favourite sport?"},
		{ID: 5, Prompt: "What is your favourite team?"},
	}
}

func cloneQuestions(questions []domain.Question) []domain.Question {
	if questions == nil {
		return nil
	}
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out
}
