package domain

// Phase is the top-level lifecycle stage of a survey session.
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhaseLoadError Phase = "load_error"
	PhaseEmpty     Phase = "empty"
	PhaseReady     Phase = "ready"
)

// LoadErrorKind tells the user why loading failed.
type LoadErrorKind string

const (
	LoadErrorNone LoadErrorKind = ""
	// LoadErrorUnreachable asks the user to check their connection.
	LoadErrorUnreachable LoadErrorKind = "unreachable"
	// LoadErrorServer covers every other service failure.
	LoadErrorServer LoadErrorKind = "server"
)

// Notification is a transient message shown next to the active question.
type Notification string

const (
	NotificationNone                Notification = "none"
	NotificationBlankAnswer         Notification = "blank_answer"
	NotificationSubmissionSucceeded Notification = "submission_succeeded"
	NotificationSubmissionFailed    Notification = "submission_failed"
)

// QuestionView is the derived, read-only view of the active question.
type QuestionView struct {
	QuestionID        int    `json:"questionId"`
	Prompt            string `json:"prompt"`
	Draft             string `json:"draft"`
	SubmissionEnabled bool   `json:"submissionEnabled"`
	Index             int    `json:"index"`
	Total             int    `json:"total"`
	Submitted         int    `json:"submitted"`
	Score             string `json:"score"`
	Position          string `json:"position"`
	NextEnabled       bool   `json:"nextEnabled"`
	PreviousEnabled   bool   `json:"previousEnabled"`
}

// Snapshot is what a survey session publishes after every mutation.
// Question is set only while Phase is PhaseReady.
type Snapshot struct {
	Version      uint64        `json:"version"`
	Phase        Phase         `json:"phase"`
	LoadError    LoadErrorKind `json:"loadError,omitempty"`
	Notification Notification  `json:"notification"`
	Question     *QuestionView `json:"question,omitempty"`
}
