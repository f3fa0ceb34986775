package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"survey-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchQuestionsDecodesWireFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/questions", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"question":"What is your favourite colour?"},{"id":2,"question":"What is your favourite food?"}]`))
	}))
	defer server.Close()

	client := NewQuestionClient(server.URL+"/", time.Second)
	questions, err := client.FetchQuestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Question{
		{ID: 1, Prompt: "What is your favourite colour?"},
		{ID: 2, Prompt: "What is your favourite food?"},
	}, questions)
}

func TestSubmitAnswerPostsJSON(t *testing.T) {
	var got domain.Answer
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/question/submit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewQuestionClient(server.URL, time.Second)
	require.NoError(t, client.SubmitAnswer(context.Background(), 3, "blue"))
	assert.Equal(t, domain.Answer{QuestionID: 3, Text: "blue"}, got)
}

func TestNon2xxIsUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewQuestionClient(server.URL, time.Second)
	err := client.SubmitAnswer(context.Background(), 1, "x")
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
	assert.False(t, errors.Is(err, domain.ErrHostUnreachable))

	_, err = client.FetchQuestions(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
}

func TestClosedServerIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewQuestionClient(url, time.Second)
	_, err := client.FetchQuestions(context.Background())
	assert.ErrorIs(t, err, domain.ErrHostUnreachable)
}

func TestMalformedBodyIsGenericError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer server.Close()

	_, err := NewQuestionClient(server.URL, time.Second).FetchQuestions(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrHostUnreachable))
}
