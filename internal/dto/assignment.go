package dto

import "net/url"

// AssignmentFilter narrows the assignments list.
type AssignmentFilter struct {
	ClassID   string `json:"classId,omitempty"`
	SubjectID string `json:"subjectId,omitempty"`
	TeacherID string `json:"teacherId,omitempty"`
}

// Values encodes the filter as query parameters.
func (f AssignmentFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "classId", f.ClassID)
	setString(v, "subjectId", f.SubjectID)
	setString(v, "teacherId", f.TeacherID)
	return v
}

// AssignmentRequest creates or replaces an assignment.
type AssignmentRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description,omitempty"`
	ClassID     string  `json:"classId" validate:"required"`
	SubjectID   string  `json:"subjectId" validate:"required"`
	DueDate     string  `json:"dueDate" validate:"required"`
	TotalMarks  float64 `json:"totalMarks" validate:"gt=0"`
}

// SubmissionRequest submits work for an assignment.
type SubmissionRequest struct {
	Content     string   `json:"content" validate:"required_without=Attachments"`
	Attachments []string `json:"attachments,omitempty"`
}

// GradeRequest grades a submission.
type GradeRequest struct {
	Grade    float64 `json:"grade" validate:"gte=0"`
	Feedback string  `json:"feedback,omitempty"`
}
