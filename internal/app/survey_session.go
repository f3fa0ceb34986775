package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"survey-service/internal/domain"
	"survey-service/internal/log"
	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

// DefaultNotificationDelay is how long a notification stays up when nobody touches the session.
const DefaultNotificationDelay = 3 * time.Second

// QuestionService is the remote collaborator a survey session drives.
type QuestionService interface {
	FetchQuestions(ctx context.Context) ([]domain.Question, error)
	SubmitAnswer(ctx context.Context, questionID int, text string) error
}

// Outcome labels reported to a Recorder.
const (
	OutcomeSuccess     = "success"
	OutcomeEmpty       = "empty"
	OutcomeBlank       = "blank"
	OutcomeUnreachable = "unreachable"
	OutcomeError       = "error"
)

// Recorder observes load and submission outcomes.
type Recorder interface {
	ObserveLoad(outcome string, elapsed time.Duration)
	ObserveSubmission(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLoad(string, time.Duration)       {}
func (nopRecorder) ObserveSubmission(string, time.Duration) {}

// Scheduler runs f once after d. The returned function cancels the run and
// reports whether it was still pending.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Option customises a SurveySession.
type Option func(*SurveySession)

// WithNotificationDelay sets the auto-dismiss delay. Zero or less disables auto-dismiss.
func WithNotificationDelay(d time.Duration) Option {
	return func(s *SurveySession) { s.delay = d }
}

// WithScheduler replaces time.AfterFunc; tests use it to fire timers by hand.
func WithScheduler(schedule Scheduler) Option {
	return func(s *SurveySession) { s.schedule = schedule }
}

func WithRecorder(r Recorder) Option {
	return func(s *SurveySession) { s.recorder = r }
}

// WithID sets the identifier used in log lines.
func WithID(id string) Option {
	return func(s *SurveySession) { s.id = id }
}

type answerSlot struct {
	question domain.Question
	draft    string
	// false while a submission is in flight and after it succeeded
	submissionEnabled bool
}

// SurveySession owns question order, the current position, per-question
// answers and the transient notification of one survey run. Intents never
// block on the question service; results are applied when they arrive and
// are published to subscribers as snapshots.
type SurveySession struct {
	id       string
	service  QuestionService
	delay    time.Duration
	schedule Scheduler
	recorder Recorder
	logger   *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	calls  sync.WaitGroup

	mu           sync.Mutex
	lifecycle    *fsm.FSM
	loadErr      domain.LoadErrorKind
	slots        []*answerSlot
	current      int
	generation   uint64
	cancelLoad   context.CancelFunc
	notification domain.Notification
	// bumped on every notification change; a timer only clears its own sequence
	notificationSeq uint64
	stopTimer       func() bool
	version         uint64
	subscribers     map[chan domain.Snapshot]struct{}
	closed          bool
}

// NewSurveySession creates a session in the loading phase. Call Load to fetch questions.
func NewSurveySession(service QuestionService, opts ...Option) *SurveySession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &SurveySession{
		id:           uuid.NewString(),
		service:      service,
		delay:        DefaultNotificationDelay,
		schedule:     afterFunc,
		recorder:     nopRecorder{},
		ctx:          ctx,
		cancel:       cancel,
		lifecycle:    newLifecycle(),
		notification: domain.NotificationNone,
		subscribers:  make(map[chan domain.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.WithField("session", s.id)
	return s
}

// ID returns the session identifier.
func (s *SurveySession) ID() string {
	return s.id
}

// Load discards all answers and fetches the question list again.
// A load still in flight is canceled and its result ignored.
func (s *SurveySession) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.fire(eventLoad)
	s.loadErr = domain.LoadErrorNone
	s.clearNotificationLocked()
	s.slots = nil
	s.current = 0
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.generation++
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelLoad = cancel
	s.publishLocked()

	s.calls.Add(1)
	go s.fetch(ctx, cancel, s.generation)
}

func (s *SurveySession) fetch(ctx context.Context, cancel context.CancelFunc, generation uint64) {
	defer s.calls.Done()
	defer cancel()

	started := time.Now()
	questions, err := s.service.FetchQuestions(ctx)
	elapsed := time.Since(started)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || generation != s.generation {
		s.logger.Debugf("discarding stale load result (generation %d)", generation)
		return
	}
	s.cancelLoad = nil

	switch {
	case err != nil:
		s.loadErr = ClassifyLoadError(err)
		s.fire(eventLoadFailed)
		s.recorder.ObserveLoad(outcomeOf(err), elapsed)
		s.logger.WithError(err).Warnf("loading questions failed (%s)", s.loadErr)
	case len(questions) == 0:
		s.fire(eventLoadedEmpty)
		s.recorder.ObserveLoad(OutcomeEmpty, elapsed)
		s.logger.Info("survey has no questions")
	default:
		s.slots = make([]*answerSlot, 0, len(questions))
		for _, q := range questions {
			s.slots = append(s.slots, &answerSlot{question: q, submissionEnabled: true})
		}
		s.current = 0
		s.fire(eventLoaded)
		s.recorder.ObserveLoad(OutcomeSuccess, elapsed)
		s.logger.Debugf("loaded %d questions", len(questions))
	}
	s.publishLocked()
}

// Next moves to the following question; it stays put on the last one.
func (s *SurveySession) Next() {
	s.move(1)
}

// Previous moves to the preceding question; it stays put on the first one.
func (s *SurveySession) Previous() {
	s.move(-1)
}

func (s *SurveySession) move(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.readyLocked() {
		return
	}
	s.clearNotificationLocked()
	s.current = clamp(s.current+delta, 0, len(s.slots)-1)
	s.publishLocked()
}

// UpdateDraft replaces the draft of the current question. Accepted answers are
// immutable, so the text is dropped when the slot is locked.
func (s *SurveySession) UpdateDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.readyLocked() {
		return
	}
	s.clearNotificationLocked()
	if slot := s.slots[s.current]; slot.submissionEnabled {
		slot.draft = text
	}
	s.publishLocked()
}

// Submit sends the current draft. Blank drafts are rejected locally; otherwise
// the slot is locked right away and reopened only if the service fails.
func (s *SurveySession) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.readyLocked() {
		return
	}
	s.clearNotificationLocked()

	slot := s.slots[s.current]
	if !slot.submissionEnabled {
		// already accepted or still in flight
		s.publishLocked()
		return
	}
	if strings.TrimSpace(slot.draft) == "" {
		s.setNotificationLocked(domain.NotificationBlankAnswer)
		s.recorder.ObserveSubmission(OutcomeBlank, 0)
		s.publishLocked()
		return
	}

	slot.submissionEnabled = false
	s.publishLocked()

	s.calls.Add(1)
	go s.submit(slot, s.generation, slot.draft)
}

func (s *SurveySession) submit(slot *answerSlot, generation uint64, text string) {
	defer s.calls.Done()

	started := time.Now()
	err := s.service.SubmitAnswer(s.ctx, slot.question.ID, text)
	elapsed := time.Since(started)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || generation != s.generation {
		s.logger.Debugf("discarding stale submission for question %d", slot.question.ID)
		return
	}

	if err != nil {
		slot.submissionEnabled = true
		s.setNotificationLocked(domain.NotificationSubmissionFailed)
		s.recorder.ObserveSubmission(outcomeOf(err), elapsed)
		s.logger.WithError(err).Warnf("submitting answer for question %d failed", slot.question.ID)
	} else {
		s.setNotificationLocked(domain.NotificationSubmissionSucceeded)
		s.recorder.ObserveSubmission(OutcomeSuccess, elapsed)
		s.logger.Debugf("answer for question %d accepted", slot.question.ID)
	}
	s.publishLocked()
}

// DismissNotification clears the current notification.
func (s *SurveySession) DismissNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.clearNotificationLocked()
	s.publishLocked()
}

// Snapshot returns the current view of the session.
func (s *SurveySession) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every mutation,
// starting with the current one. The caller must invoke cancel to avoid leaks.
func (s *SurveySession) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	initial := s.snapshotLocked()
	if s.closed {
		s.mu.Unlock()
		ch <- initial
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Wait blocks until every service call issued so far has settled.
func (s *SurveySession) Wait() {
	s.calls.Wait()
}

// Close cancels outstanding service calls and the notification timer, and
// closes all subscriptions. Results arriving afterwards are dropped.
func (s *SurveySession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTimerLocked()
	s.cancel()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *SurveySession) readyLocked() bool {
	return !s.closed && s.phaseLocked() == domain.PhaseReady && len(s.slots) > 0
}

func (s *SurveySession) cancelTimerLocked() {
	s.notificationSeq++
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

func (s *SurveySession) clearNotificationLocked() {
	s.cancelTimerLocked()
	s.notification = domain.NotificationNone
}

func (s *SurveySession) setNotificationLocked(n domain.Notification) {
	s.cancelTimerLocked()
	s.notification = n
	if s.delay <= 0 {
		return
	}
	seq := s.notificationSeq
	s.stopTimer = s.schedule(s.delay, func() { s.expireNotification(seq) })
}

func (s *SurveySession) expireNotification(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.notificationSeq || s.notification == domain.NotificationNone {
		return
	}
	s.notification = domain.NotificationNone
	s.stopTimer = nil
	s.publishLocked()
}

func (s *SurveySession) publishLocked() {
	s.version++
	snapshot := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// slow subscriber: drop its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (s *SurveySession) snapshotLocked() domain.Snapshot {
	snapshot := domain.Snapshot{
		Version:      s.version,
		Phase:        s.phaseLocked(),
		Notification: s.notification,
	}
	switch snapshot.Phase {
	case domain.PhaseLoadError:
		snapshot.LoadError = s.loadErr
	case domain.PhaseReady:
		snapshot.Question = s.questionViewLocked()
	}
	return snapshot
}

func (s *SurveySession) questionViewLocked() *domain.QuestionView {
	total := len(s.slots)
	if total == 0 {
		return nil
	}
	submitted := 0
	for _, slot := range s.slots {
		if !slot.submissionEnabled {
			submitted++
		}
	}
	slot := s.slots[s.current]
	return &domain.QuestionView{
		QuestionID:        slot.question.ID,
		Prompt:            slot.question.Prompt,
		Draft:             slot.draft,
		SubmissionEnabled: slot.submissionEnabled,
		Index:             s.current,
		Total:             total,
		Submitted:         submitted,
		Score:             fmt.Sprintf("%d/%d", submitted, total),
		Position:          fmt.Sprintf("%d/%d", s.current+1, total),
		NextEnabled:       s.current < total-1,
		PreviousEnabled:   s.current > 0,
	}
}

// ClassifyLoadError maps a question service failure to the category shown to the user.
func ClassifyLoadError(err error) domain.LoadErrorKind {
	if errors.Is(err, domain.ErrHostUnreachable) {
		return domain.LoadErrorUnreachable
	}
	return domain.LoadErrorServer
}

func outcomeOf(err error) string {
	if errors.Is(err, domain.ErrHostUnreachable) {
		return OutcomeUnreachable
	}
	return OutcomeError
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
