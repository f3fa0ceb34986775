package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"survey-service/internal/domain"
	"survey-service/internal/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the question list from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionsKey holds the JSON-encoded, ordered question list.
const QuestionsKey = "survey:questions"

// QuestionRepository caches the question list in Redis and falls back to a loader on cache miss.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := r.cached(ctx); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(QuestionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.cached(ctx); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		if ttl > 0 {
			raw, err := json.Marshal(questions)
			if err == nil {
				err = r.client.Set(ctx, QuestionsKey, raw, ttl).Err()
			}
			if err != nil {
				// serve the loaded list anyway; the next call retries the cache
				log.Warnf("caching questions in redis: %v", err)
			}
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached list so the next call hits the loader.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, QuestionsKey).Err()
}

func (r *QuestionRepository) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, QuestionsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debugf("reading cached questions: %v", err)
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		log.Warnf("discarding malformed cached questions: %v", err)
		return nil, false
	}
	return questions, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
