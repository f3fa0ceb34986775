package domain

import "time"

// Question is a single survey prompt. IDs are assigned by the question service.
type Question struct {
	ID     int    `json:"id"`
	Prompt string `json:"question"`
}

// Answer is the payload accepted by the question service for one question.
type Answer struct {
	QuestionID int    `json:"id"`
	Text       string `json:"answer"`
}

// SubmittedAnswer is an answer as recorded by an answer store.
type SubmittedAnswer struct {
	Answer
	SubmittedAt time.Time `json:"submittedAt"`
}
