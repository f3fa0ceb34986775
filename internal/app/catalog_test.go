package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/domain"
	"survey-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(now time.Time) (*app.Catalog, *memory.AnswerStore) {
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(memory.SampleQuestions()), time.Minute)
	answers := memory.NewAnswerStore()
	return app.NewCatalogWithClock(repo, answers, func() time.Time { return now }), answers
}

func TestCatalogFetchQuestionsKeepsOrder(t *testing.T) {
	catalog, _ := newCatalog(time.Now())

	questions, err := catalog.FetchQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 5)
	for i, q := range questions {
		assert.Equal(t, i+1, q.ID)
	}
}

func TestCatalogSubmitAnswerStoresAnswer(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	catalog, answers := newCatalog(now)

	require.NoError(t, catalog.SubmitAnswer(context.Background(), 2, "pasta"))

	got, ok := answers.Get(2)
	require.True(t, ok)
	assert.Equal(t, domain.SubmittedAnswer{
		Answer:      domain.Answer{QuestionID: 2, Text: "pasta"},
		SubmittedAt: now,
	}, got)
}

func TestCatalogSubmitAnswerValidation(t *testing.T) {
	catalog, answers := newCatalog(time.Now())

	err := catalog.SubmitAnswer(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, domain.ErrBlankAnswer)

	err = catalog.SubmitAnswer(context.Background(), 99, "anything")
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)

	assert.Empty(t, answers.All())
}

type failingRepository struct{ err error }

func (r failingRepository) ListQuestions(context.Context) ([]domain.Question, error) {
	return nil, r.err
}

func TestCatalogPropagatesRepositoryErrors(t *testing.T) {
	boom := errors.New("db down")
	catalog := app.NewCatalog(failingRepository{err: boom}, memory.NewAnswerStore())

	_, err := catalog.FetchQuestions(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, catalog.SubmitAnswer(context.Background(), 1, "x"), boom)
}

// The catalog drives a session in-process, the same way the take command does with --local.
func TestSessionAgainstCatalog(t *testing.T) {
	catalog, answers := newCatalog(time.Now())
	s := app.NewSurveySession(catalog)
	defer s.Close()

	s.Load()
	s.Wait()
	require.Equal(t, domain.PhaseReady, s.Snapshot().Phase)

	s.UpdateDraft("green")
	s.Submit()
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, domain.NotificationSubmissionSucceeded, snap.Notification)
	assert.Equal(t, "1/5", snap.Question.Score)
	got, ok := answers.Get(1)
	require.True(t, ok)
	assert.Equal(t, "green", got.Text)
}
