package redis

import (
	"context"
	"testing"
	"time"

	"survey-service/internal/domain"
	"survey-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(memory.SampleQuestions())}
	repo := NewQuestionRepository(client, loader, time.Minute)

	questions, err := repo.ListQuestions(context.Background())
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(QuestionsKey) {
		t.Fatalf("expected %s to be cached", QuestionsKey)
	}
	if ttl := mr.TTL(QuestionsKey); ttl < time.Minute {
		t.Fatalf("expected ttl of at least a minute, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.ListQuestions(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	for i := range questions {
		if cached[i] != questions[i] {
			t.Fatalf("cached order differs at %d: %+v vs %+v", i, cached[i], questions[i])
		}
	}
}

func TestQuestionRepositoryInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(memory.SampleQuestions())}
	repo := NewQuestionRepository(newClient(mr), loader, time.Minute)

	_, _ = repo.ListQuestions(context.Background())
	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.ListQuestions(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestAnswerStoreWritesHash(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAnswerStore(newClient(mr))
	ctx := context.Background()
	answer := domain.SubmittedAnswer{
		Answer:      domain.Answer{QuestionID: 3, Text: "Norway"},
		SubmittedAt: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
	if err := store.SaveAnswer(ctx, answer); err != nil {
		t.Fatalf("save answer: %v", err)
	}
	if mr.HGet(AnswersKey, "3") == "" {
		t.Fatalf("expected hash field for question 3")
	}

	got, ok, err := store.Get(ctx, 3)
	if err != nil || !ok {
		t.Fatalf("get answer: ok=%v err=%v", ok, err)
	}
	if got.Text != "Norway" || !got.SubmittedAt.Equal(answer.SubmittedAt) {
		t.Fatalf("unexpected answer %+v", got)
	}

	if _, ok, _ := store.Get(ctx, 4); ok {
		t.Fatalf("expected no answer for question 4")
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
