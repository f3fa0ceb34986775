package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"survey-service/internal/domain"
)

// QuestionClient talks to the question service over HTTP:
//
//	GET  {base}/questions        -> [{"id": 1, "question": "..."}]
//	POST {base}/question/submit  <- {"id": 1, "answer": "..."}
type QuestionClient struct {
	baseURL string
	http    *http.Client
}

func NewQuestionClient(baseURL string, timeout time.Duration) *QuestionClient {
	return NewQuestionClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewQuestionClientWithHTTP(baseURL string, client *http.Client) *QuestionClient {
	return &QuestionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
	}
}

func (c *QuestionClient) FetchQuestions(ctx context.Context) ([]domain.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/questions", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError("fetch questions", err)
	}
	defer resp.Body.Close()
	if err := checkStatus("fetch questions", resp); err != nil {
		return nil, err
	}

	questions := []domain.Question{}
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

func (c *QuestionClient) SubmitAnswer(ctx context.Context, questionID int, text string) error {
	body, err := json.Marshal(domain.Answer{QuestionID: questionID, Text: text})
	if err != nil {
		return fmt.Errorf("encode answer: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/question/submit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit answer: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError("submit answer", err)
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return checkStatus("submit answer", resp)
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("%s: %w: %d", op, domain.ErrUnexpectedStatus, resp.StatusCode)
}

// transportError marks failures to reach the host at all (name resolution,
// no route, refused dial) as domain.ErrHostUnreachable.
func transportError(op string, err error) error {
	if isUnreachable(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrHostUnreachable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
