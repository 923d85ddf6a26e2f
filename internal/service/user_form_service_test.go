package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

func janeStudentForm() dto.StudentForm {
	return dto.StudentForm{FormCommon: dto.FormCommon{Name: "Jane Doe", Email: "jane@example.com", Password: "secret1"}}
}

func TestSubmitStudentFormCreatesStudentAndResets(t *testing.T) {
	students := &mockStudentCreator{}
	svc := NewUserFormService(&mockUserRepo{}, students, &mockTeacherCreator{}, nil, nil)
	state := NewFormState(janeStudentForm())
	toasts := &ToastRecorder{}

	account, err := svc.Submit(context.Background(), state, toasts)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, account.Role)
	require.Len(t, students.requests, 1)
	assert.Equal(t, "Jane", students.requests[0].FirstName)
	assert.Equal(t, "Doe", students.requests[0].LastName)
	assert.Equal(t, "jane@example.com", students.requests[0].Email)

	assert.Equal(t, dto.StudentForm{}, state.Current())
	require.Len(t, toasts.Toasts(), 1)
	assert.Equal(t, ToastSuccess, toasts.Toasts()[0].Kind)
}

func TestSubmitConflictKeepsFormAndShowsServerMessage(t *testing.T) {
	students := &mockStudentCreator{err: appErrors.FromStatus(http.StatusConflict, "Email already exists")}
	svc := NewUserFormService(&mockUserRepo{}, students, &mockTeacherCreator{}, nil, nil)
	form := janeStudentForm()
	state := NewFormState(form)
	toasts := &ToastRecorder{}

	_, err := svc.Submit(context.Background(), state, toasts)
	require.Error(t, err)
	assert.True(t, appErrors.HasStatus(err, http.StatusConflict))
	assert.Equal(t, form, state.Current())
	require.Len(t, toasts.Toasts(), 1)
	assert.Equal(t, Toast{Kind: ToastError, Message: "Email already exists"}, toasts.Toasts()[0])
}

func TestSubmitRoutesFormsByRole(t *testing.T) {
	users := &mockUserRepo{}
	teachers := &mockTeacherCreator{}
	svc := NewUserFormService(users, &mockStudentCreator{}, teachers, nil, nil)
	common := dto.FormCommon{Name: "Sam", Email: "sam@example.com", Password: "secret1"}

	_, err := svc.Submit(context.Background(), NewFormState(dto.TeacherForm{FormCommon: common, Subjects: []string{"math"}}), &ToastRecorder{})
	require.NoError(t, err)
	require.Len(t, teachers.requests, 1)
	assert.Equal(t, []string{"math"}, teachers.requests[0].Subjects)
	assert.Equal(t, "", teachers.requests[0].LastName)

	_, err = svc.Submit(context.Background(), NewFormState(dto.ParentForm{FormCommon: common, ChildIDs: []string{"s1"}}), &ToastRecorder{})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), NewFormState(dto.AdminForm{FormCommon: common}), &ToastRecorder{})
	require.NoError(t, err)

	require.Len(t, users.created, 2)
	assert.Equal(t, models.RoleParent, users.created[0].Role)
	assert.Equal(t, []string{"s1"}, users.created[0].ChildIDs)
	assert.Equal(t, models.RoleAdmin, users.created[1].Role)
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	students := &mockStudentCreator{}
	svc := NewUserFormService(&mockUserRepo{}, students, &mockTeacherCreator{}, nil, nil)
	form := dto.StudentForm{FormCommon: dto.FormCommon{Name: "Jane", Email: "not-an-email", Password: "123"}}
	state := NewFormState(form)
	toasts := &ToastRecorder{}

	_, err := svc.Submit(context.Background(), state, toasts)
	require.Error(t, err)
	assert.True(t, appErrors.HasStatus(err, http.StatusBadRequest))
	assert.Empty(t, students.requests)
	assert.Equal(t, form, state.Current())
	assert.Equal(t, ToastError, toasts.Toasts()[0].Kind)
}

func TestSubmitRejectsBlankName(t *testing.T) {
	students := &mockStudentCreator{}
	svc := NewUserFormService(&mockUserRepo{}, students, &mockTeacherCreator{}, nil, nil)
	form := dto.StudentForm{FormCommon: dto.FormCommon{Name: "   ", Email: "jane@example.com", Password: "secret1"}}
	state := NewFormState(form)
	toasts := &ToastRecorder{}

	_, err := svc.Submit(context.Background(), state, toasts)
	require.Error(t, err)
	assert.True(t, appErrors.HasStatus(err, http.StatusBadRequest))
	assert.Equal(t, "name is required", appErrors.Message(err))
	assert.Empty(t, students.requests)
	assert.Equal(t, form, state.Current())
	require.Len(t, toasts.Toasts(), 1)
	assert.Equal(t, Toast{Kind: ToastError, Message: "name is required"}, toasts.Toasts()[0])
}
