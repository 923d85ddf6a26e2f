package models

import "time"

// SubmissionStatus tracks a submission through grading.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
	SubmissionStatusLate      SubmissionStatus = "late"
)

// SubjectRef references a subject.
type SubjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Assignment is homework set for a class and subject.
type Assignment struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Class       ClassRef   `json:"class"`
	Subject     SubjectRef `json:"subject"`
	Teacher     *UserRef   `json:"teacher,omitempty"`
	DueDate     time.Time  `json:"dueDate"`
	TotalMarks  float64    `json:"totalMarks"`
	Attachments []string   `json:"attachments,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Submission is one student's answer to an assignment.
type Submission struct {
	ID          string           `json:"id"`
	Assignment  string           `json:"assignment"`
	Student     UserRef          `json:"student"`
	Content     string           `json:"content,omitempty"`
	Attachments []string         `json:"attachments,omitempty"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Grade       *float64         `json:"grade,omitempty"`
	Feedback    string           `json:"feedback,omitempty"`
	Status      SubmissionStatus `json:"status"`
}

// Graded reports whether a grade has been recorded.
func (s Submission) Graded() bool {
	return s.Grade != nil || s.Status == SubmissionStatusGraded
}
