package models

import "time"

// ClassRef references a class section.
type ClassRef struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Section string `json:"section,omitempty"`
}

// Student is the student profile attached to a user account.
type Student struct {
	ID              string     `json:"id"`
	User            UserRef    `json:"user"`
	AdmissionNumber string     `json:"admissionNumber,omitempty"`
	Class           *ClassRef  `json:"class,omitempty"`
	Parent          *UserRef   `json:"parent,omitempty"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
	Gender          string     `json:"gender,omitempty"`
	Address         string     `json:"address,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
