package models

import "time"

// Teacher is the teacher profile attached to a user account.
type Teacher struct {
	ID            string     `json:"id"`
	User          UserRef    `json:"user"`
	EmployeeID    string     `json:"employeeId,omitempty"`
	Subjects      []string   `json:"subjects,omitempty"`
	Qualification string     `json:"qualification,omitempty"`
	Classes       []ClassRef `json:"classes,omitempty"`
	JoiningDate   *time.Time `json:"joiningDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
