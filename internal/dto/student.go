package dto

import "net/url"

// StudentFilter narrows the students list.
type StudentFilter struct {
	ClassID string `json:"classId,omitempty"`
	Search  string `json:"search,omitempty"`
	PageQuery
}

// Values encodes the filter as query parameters.
func (f StudentFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "classId", f.ClassID)
	setString(v, "search", f.Search)
	f.PageQuery.apply(v)
	return v
}

// CreateStudentRequest creates a student account and profile.
type CreateStudentRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	Phone           string `json:"phone,omitempty"`
	ClassID         string `json:"classId,omitempty"`
	ParentID        string `json:"parentId,omitempty"`
	AdmissionNumber string `json:"admissionNumber,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Gender          string `json:"gender,omitempty"`
}

// UpdateStudentRequest changes a student profile.
type UpdateStudentRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	ClassID   string `json:"classId,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	Address   string `json:"address,omitempty"`
}
