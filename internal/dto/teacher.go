package dto

import "net/url"

// TeacherFilter narrows the teachers list.
type TeacherFilter struct {
	Subject string `json:"subject,omitempty"`
	Search  string `json:"search,omitempty"`
	PageQuery
}

// Values encodes the filter as query parameters.
func (f TeacherFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "subject", f.Subject)
	setString(v, "search", f.Search)
	f.PageQuery.apply(v)
	return v
}

// CreateTeacherRequest creates a teacher account and profile.
type CreateTeacherRequest struct {
	FirstName     string   `json:"firstName" validate:"required"`
	LastName      string   `json:"lastName"`
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=6"`
	Phone         string   `json:"phone,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	Qualification string   `json:"qualification,omitempty"`
	EmployeeID    string   `json:"employeeId,omitempty"`
}

// UpdateTeacherRequest changes a teacher profile.
type UpdateTeacherRequest struct {
	FirstName     string   `json:"firstName,omitempty"`
	LastName      string   `json:"lastName,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	Qualification string   `json:"qualification,omitempty"`
	ClassIDs      []string `json:"classIds,omitempty"`
}
