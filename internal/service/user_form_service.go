package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// ToastKind classifies a user-facing notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a short notification shown after an action.
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}

// Notifier delivers toasts.
type Notifier interface {
	Notify(t Toast)
}

// ToastRecorder is a Notifier that keeps every toast it receives.
type ToastRecorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Notify implements Notifier.
func (r *ToastRecorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns the recorded toasts in order.
func (r *ToastRecorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// FormState holds the create-user form between submissions.
type FormState struct {
	mu   sync.Mutex
	form dto.UserForm
}

// NewFormState starts with form.
func NewFormState(form dto.UserForm) *FormState {
	return &FormState{form: form}
}

// Current returns the form as it stands.
func (f *FormState) Current() dto.UserForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Set replaces the form.
func (f *FormState) Set(form dto.UserForm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.form = form
}

// Reset blanks the form, keeping the selected role.
func (f *FormState) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.form == nil {
		return
	}
	if blank, err := dto.EmptyForm(f.form.Role()); err == nil {
		f.form = blank
	}
}

// CreatedAccount reports the account a form submission created.
type CreatedAccount struct {
	Role  models.UserRole `json:"role"`
	ID    string          `json:"id"`
	Email string          `json:"email"`
}

type accountCreator interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error)
}

type studentCreator interface {
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
}

type teacherCreator interface {
	Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error)
}

// UserFormService submits create-user forms to the endpoint matching the
// selected role.
type UserFormService struct {
	users     accountCreator
	students  studentCreator
	teachers  teacherCreator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserFormService constructs a UserFormService.
func NewUserFormService(users accountCreator, students studentCreator, teachers teacherCreator, validate *validator.Validate, logger *zap.Logger) *UserFormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserFormService{users: users, students: students, teachers: teachers, validator: validate, logger: logger}
}

// Submit validates and sends the form held by state. On success the form is
// reset and a success toast is sent; on failure the form is kept and an
// error toast carries the server's message.
func (s *UserFormService) Submit(ctx context.Context, state *FormState, notifier Notifier) (*CreatedAccount, error) {
	form := state.Current()
	if form == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "form is empty")
	}
	account, err := s.create(ctx, form)
	if err != nil {
		notifier.Notify(Toast{Kind: ToastError, Message: appErrors.Message(err)})
		s.logger.Warn("create user failed", zap.String("role", string(form.Role())), zap.Error(err))
		return nil, err
	}
	state.Reset()
	notifier.Notify(Toast{Kind: ToastSuccess, Message: fmt.Sprintf("%s created successfully", roleLabel(account.Role))})
	return account, nil
}

func (s *UserFormService) create(ctx context.Context, form dto.UserForm) (*CreatedAccount, error) {
	common := form.Fields()
	if err := s.validator.Struct(common); err != nil {
		return nil, invalid(err, "invalid user form")
	}
	first, last := dto.SplitName(common.Name)
	if first == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}

	switch f := form.(type) {
	case dto.StudentForm:
		st, err := s.students.Create(ctx, dto.CreateStudentRequest{
			FirstName:       first,
			LastName:        last,
			Email:           common.Email,
			Password:        common.Password,
			Phone:           common.Phone,
			ClassID:         f.ClassID,
			ParentID:        f.ParentID,
			AdmissionNumber: f.AdmissionNumber,
			DateOfBirth:     f.DateOfBirth,
			Gender:          f.Gender,
		})
		if err != nil {
			return nil, err
		}
		return &CreatedAccount{Role: models.RoleStudent, ID: st.ID, Email: common.Email}, nil
	case dto.TeacherForm:
		t, err := s.teachers.Create(ctx, dto.CreateTeacherRequest{
			FirstName:     first,
			LastName:      last,
			Email:         common.Email,
			Password:      common.Password,
			Phone:         common.Phone,
			Subjects:      f.Subjects,
			Qualification: f.Qualification,
			EmployeeID:    f.EmployeeID,
		})
		if err != nil {
			return nil, err
		}
		return &CreatedAccount{Role: models.RoleTeacher, ID: t.ID, Email: common.Email}, nil
	case dto.ParentForm:
		return s.account(ctx, models.RoleParent, first, last, common, f.ChildIDs)
	case dto.AdminForm:
		return s.account(ctx, models.RoleAdmin, first, last, common, nil)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported form %T", form))
	}
}

func (s *UserFormService) account(ctx context.Context, role models.UserRole, first, last string, common dto.FormCommon, children []string) (*CreatedAccount, error) {
	u, err := s.users.Create(ctx, dto.CreateUserRequest{
		FirstName: first,
		LastName:  last,
		Email:     common.Email,
		Password:  common.Password,
		Phone:     common.Phone,
		Role:      role,
		ChildIDs:  children,
	})
	if err != nil {
		return nil, err
	}
	return &CreatedAccount{Role: role, ID: u.ID, Email: common.Email}, nil
}

func roleLabel(role models.UserRole) string {
	switch role {
	case models.RoleStudent:
		return "Student"
	case models.RoleTeacher:
		return "Teacher"
	case models.RoleParent:
		return "Parent"
	default:
		return "Admin"
	}
}
