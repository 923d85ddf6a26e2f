package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// FormCommon holds the fields every create-user form carries.
type FormCommon struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
}

// UserForm is a create-user form; each role has its own variant. The set of
// variants is closed: only types in this package implement it.
type UserForm interface {
	Role() models.UserRole
	Fields() FormCommon
	isUserForm()
}

// StudentForm creates a student.
type StudentForm struct {
	FormCommon
	ClassID         string `json:"classId,omitempty"`
	ParentID        string `json:"parentId,omitempty"`
	AdmissionNumber string `json:"admissionNumber,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Gender          string `json:"gender,omitempty"`
}

// TeacherForm creates a teacher.
type TeacherForm struct {
	FormCommon
	Subjects      []string `json:"subjects,omitempty"`
	Qualification string   `json:"qualification,omitempty"`
	EmployeeID    string   `json:"employeeId,omitempty"`
}

// ParentForm creates a parent linked to children.
type ParentForm struct {
	FormCommon
	ChildIDs []string `json:"childIds,omitempty"`
}

// AdminForm creates an administrator.
type AdminForm struct {
	FormCommon
}

func (StudentForm) Role() models.UserRole { return models.RoleStudent }
func (TeacherForm) Role() models.UserRole { return models.RoleTeacher }
func (ParentForm) Role() models.UserRole  { return models.RoleParent }
func (AdminForm) Role() models.UserRole   { return models.RoleAdmin }

func (f StudentForm) Fields() FormCommon { return f.FormCommon }
func (f TeacherForm) Fields() FormCommon { return f.FormCommon }
func (f ParentForm) Fields() FormCommon  { return f.FormCommon }
func (f AdminForm) Fields() FormCommon   { return f.FormCommon }

func (StudentForm) isUserForm() {}
func (TeacherForm) isUserForm() {}
func (ParentForm) isUserForm()  {}
func (AdminForm) isUserForm()   {}

// EmptyForm returns a blank form for role.
func EmptyForm(role models.UserRole) (UserForm, error) {
	switch role {
	case models.RoleStudent:
		return StudentForm{}, nil
	case models.RoleTeacher:
		return TeacherForm{}, nil
	case models.RoleParent:
		return ParentForm{}, nil
	case models.RoleAdmin:
		return AdminForm{}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// DecodeUserForm reads the variant selected by the payload's role field.
func DecodeUserForm(raw []byte) (UserForm, error) {
	var head struct {
		Role models.UserRole `json:"role"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Role {
	case models.RoleStudent:
		var f StudentForm
		err := json.Unmarshal(raw, &f)
		return f, err
	case models.RoleTeacher:
		var f TeacherForm
		err := json.Unmarshal(raw, &f)
		return f, err
	case models.RoleParent:
		var f ParentForm
		err := json.Unmarshal(raw, &f)
		return f, err
	case models.RoleAdmin:
		var f AdminForm
		err := json.Unmarshal(raw, &f)
		return f, err
	default:
		return nil, fmt.Errorf("unknown role %q", head.Role)
	}
}

// SplitName splits a display name into first name and the remainder.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
