// Package console drives a survey session from a line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"survey-service/internal/app"
	"survey-service/internal/domain"
)

const help = "commands: :next :prev :submit :reload :dismiss :quit (any other line is your answer)"

// Run loads the survey and applies one intent per input line, printing the
// resulting state after each. It returns when in is exhausted, :quit is read
// or ctx is canceled.
func Run(ctx context.Context, session *app.SurveySession, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	fmt.Fprintln(out, help)
	session.Load()
	session.Wait()
	Render(out, session.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if quit := apply(session, line); quit {
				return nil
			}
			session.Wait()
			Render(out, session.Snapshot())
		}
	}
}

func apply(session *app.SurveySession, line string) (quit bool) {
	switch strings.TrimSpace(line) {
	case ":next", ":n":
		session.Next()
	case ":prev", ":p":
		session.Previous()
	case ":submit", ":s":
		session.Submit()
	case ":reload", ":r":
		session.Load()
	case ":dismiss", ":d":
		session.DismissNotification()
	case ":quit", ":q":
		return true
	default:
		session.UpdateDraft(line)
	}
	return false
}

// Render prints a human readable view of snapshot.
func Render(out io.Writer, snapshot domain.Snapshot) {
	switch snapshot.Phase {
	case domain.PhaseLoading:
		fmt.Fprintln(out, "Loading questions...")
	case domain.PhaseLoadError:
		if snapshot.LoadError == domain.LoadErrorUnreachable {
			fmt.Fprintln(out, "Could not reach the question service, check your connection. Type :reload to retry.")
		} else {
			fmt.Fprintln(out, "The question service returned an error. Type :reload to retry.")
		}
	case domain.PhaseEmpty:
		fmt.Fprintln(out, "This survey has no questions. Type :quit to go back.")
	case domain.PhaseReady:
		renderQuestion(out, snapshot.Question)
	}

	if msg := notificationText(snapshot.Notification); msg != "" {
		fmt.Fprintf(out, "! %s\n", msg)
	}
}

func renderQuestion(out io.Writer, q *domain.QuestionView) {
	if q == nil {
		return
	}
	fmt.Fprintf(out, "Question %s    Questions submitted: %s\n", q.Position, q.Score)
	fmt.Fprintln(out, q.Prompt)
	if q.SubmissionEnabled {
		fmt.Fprintf(out, "> %s\n", q.Draft)
	} else {
		fmt.Fprintf(out, "= %s (submitted)\n", q.Draft)
	}

	var nav []string
	if q.PreviousEnabled {
		nav = append(nav, ":prev")
	}
	if q.NextEnabled {
		nav = append(nav, ":next")
	}
	if q.SubmissionEnabled {
		nav = append(nav, ":submit")
	}
	if len(nav) > 0 {
		fmt.Fprintf(out, "[%s]\n", strings.Join(nav, " "))
	}
}

func notificationText(n domain.Notification) string {
	switch n {
	case domain.NotificationBlankAnswer:
		return "Please type an answer before submitting."
	case domain.NotificationSubmissionSucceeded:
		return "Answer submitted."
	case domain.NotificationSubmissionFailed:
		return "Submission failed. Type :submit to try again."
	}
	return ""
}
