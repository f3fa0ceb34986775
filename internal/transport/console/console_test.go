package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/domain"
	"survey-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() (*app.SurveySession, *memory.AnswerStore) {
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(memory.SampleQuestions()), time.Minute)
	answers := memory.NewAnswerStore()
	return app.NewSurveySession(app.NewCatalog(repo, answers), app.WithNotificationDelay(0)), answers
}

func TestRunSubmitsAnswers(t *testing.T) {
	session, answers := newSession()
	defer session.Close()

	in := strings.NewReader(strings.Join([]string{
		":submit",
		"blue",
		":submit",
		":n",
		"pizza",
		":s",
		":p",
		":q",
		"never read",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), session, in, &out))

	text := out.String()
	assert.Contains(t, text, "Question 1/5")
	assert.Contains(t, text, "Please type an answer before submitting.")
	assert.Contains(t, text, "Answer submitted.")
	assert.Contains(t, text, "Questions submitted: 2/5")
	assert.Contains(t, text, "= blue (submitted)")

	assert.Len(t, answers.All(), 2)
	snap := session.Snapshot()
	assert.Equal(t, 0, snap.Question.Index)
	assert.Equal(t, "blue", snap.Question.Draft)
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	session, _ := newSession()
	defer session.Close()

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), session, strings.NewReader("hello\n"), &out))
	assert.Equal(t, "hello", session.Snapshot().Question.Draft)
}

type blockingReader struct{ done chan struct{} }

func (r blockingReader) Read([]byte) (int, error) {
	<-r.done
	return 0, errors.New("closed")
}

func TestRunHonoursContext(t *testing.T) {
	session, _ := newSession()
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	reader := blockingReader{done: make(chan struct{})}
	defer close(reader.done)

	errc := make(chan error, 1)
	go func() { errc <- Run(ctx, session, reader, &bytes.Buffer{}) }()
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRenderPhases(t *testing.T) {
	tests := []struct {
		name     string
		snapshot domain.Snapshot
		want     string
	}{
		{"loading", domain.Snapshot{Phase: domain.PhaseLoading}, "Loading questions..."},
		{"unreachable", domain.Snapshot{Phase: domain.PhaseLoadError, LoadError: domain.LoadErrorUnreachable}, "check your connection"},
		{"server", domain.Snapshot{Phase: domain.PhaseLoadError, LoadError: domain.LoadErrorServer}, "returned an error"},
		{"empty", domain.Snapshot{Phase: domain.PhaseEmpty}, "no questions"},
		{"failed submit", domain.Snapshot{
			Phase:        domain.PhaseReady,
			Notification: domain.NotificationSubmissionFailed,
			Question:     &domain.QuestionView{Prompt: "Why?", Position: "1/1", Score: "0/1", SubmissionEnabled: true},
		}, "Submission failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			Render(&out, tt.snapshot)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}
