package app

import (
	"context"
	"strings"
	"time"

	"survey-service/internal/domain"
)

// QuestionRepository loads the ordered question list (from cache/backing store).
type QuestionRepository interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

// AnswerStore records answers accepted by the catalog.
type AnswerStore interface {
	SaveAnswer(ctx context.Context, answer domain.SubmittedAnswer) error
}

// Catalog contains the question service use cases. It serves the HTTP API and
// doubles as an in-process QuestionService.
type Catalog struct {
	questions QuestionRepository
	answers   AnswerStore
	now       func() time.Time
}

var _ QuestionService = (*Catalog)(nil)

func NewCatalog(questions QuestionRepository, answers AnswerStore) *Catalog {
	return NewCatalogWithClock(questions, answers, time.Now)
}

// NewCatalogWithClock is test-only for deterministic timestamps.
func NewCatalogWithClock(questions QuestionRepository, answers AnswerStore, now func() time.Time) *Catalog {
	return &Catalog{questions: questions, answers: answers, now: now}
}

// FetchQuestions returns every question in survey order.
func (c *Catalog) FetchQuestions(ctx context.Context) ([]domain.Question, error) {
	return c.questions.ListQuestions(ctx)
}

// SubmitAnswer validates and records an answer for a known question.
func (c *Catalog) SubmitAnswer(ctx context.Context, questionID int, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrBlankAnswer
	}

	questions, err := c.questions.ListQuestions(ctx)
	if err != nil {
		return err
	}
	if !containsQuestion(questions, questionID) {
		return domain.ErrQuestionNotFound
	}

	return c.answers.SaveAnswer(ctx, domain.SubmittedAnswer{
		Answer:      domain.Answer{QuestionID: questionID, Text: text},
		SubmittedAt: c.now(),
	})
}

func containsQuestion(questions []domain.Question, id int) bool {
	for _, q := range questions {
		if q.ID == id {
			return true
		}
	}
	return false
}
