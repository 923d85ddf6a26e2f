package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type stubUsers struct {
	page models.Page[models.User]
	err  error
}

func (s stubUsers) List(context.Context, dto.UserFilter) (models.Page[models.User], error) {
	return s.page, s.err
}

type stubNotices struct {
	byRole map[models.UserRole][]models.Notice
}

func (s stubNotices) VisibleTo(_ context.Context, role models.UserRole, _ int) ([]models.Notice, error) {
	return s.byRole[role], nil
}

type stubAssignments struct {
	assignments []models.Assignment
	submissions map[string][]models.Submission
	byStudent   map[string][]models.Submission
}

func (s stubAssignments) List(_ context.Context, filter dto.AssignmentFilter) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.Teacher != nil && a.Teacher.ID == filter.TeacherID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s stubAssignments) Submissions(_ context.Context, id string) ([]models.Submission, error) {
	return s.submissions[id], nil
}

func (s stubAssignments) StudentSubmissions(_ context.Context, studentID string) ([]models.Submission, error) {
	return s.byStudent[studentID], nil
}

type stubMessages struct{ unread int }

func (s stubMessages) UnreadCount(context.Context) (int, error) { return s.unread, nil }

type stubLibrary struct{ borrows []models.BorrowRecord }

func (s stubLibrary) Borrows(context.Context, dto.BorrowFilter) ([]models.BorrowRecord, error) {
	return s.borrows, nil
}

type stubStudents struct{ children map[string][]models.Student }

func (s stubStudents) ByParent(_ context.Context, parentID string) ([]models.Student, error) {
	return s.children[parentID], nil
}

func TestPartitionByRolePlacesEveryUserOnce(t *testing.T) {
	users := []models.User{
		{ID: "1", Role: models.RoleStudent},
		{ID: "2", Role: models.RoleTeacher},
		{ID: "3", Role: models.RoleStudent},
		{ID: "4", Role: models.RoleParent},
		{ID: "5", Role: models.RoleAdmin},
		{ID: "6", Role: "librarian"},
	}
	buckets := PartitionByRole(users)

	assert.Len(t, buckets.Students, 2)
	assert.Len(t, buckets.Teachers, 1)
	assert.Len(t, buckets.Parents, 1)
	assert.Len(t, buckets.Admins, 1)
	assert.Len(t, buckets.Unassigned, 1)
	assert.Equal(t, len(users), buckets.Total())

	seen := map[string]int{}
	for _, bucket := range [][]models.User{buckets.Students, buckets.Teachers, buckets.Parents, buckets.Admins, buckets.Unassigned} {
		for _, u := range bucket {
			seen[u.ID]++
		}
	}
	for _, u := range users {
		assert.Equal(t, 1, seen[u.ID], "user %s", u.ID)
	}
	for _, u := range buckets.Students {
		assert.Equal(t, models.RoleStudent, u.Role)
	}
}

func TestPartitionByRoleEmpty(t *testing.T) {
	buckets := PartitionByRole(nil)
	assert.NotNil(t, buckets.Students)
	assert.Equal(t, 0, buckets.Total())
}

func TestAdminDashboard(t *testing.T) {
	fees := &mockFeeRepo{summary: &models.FeeSummary{TotalAmount: 500, CollectedAmount: 200}}
	svc := NewDashboardService(DashboardServiceParams{
		Users: stubUsers{page: models.Page[models.User]{
			Items:      []models.User{{ID: "1", Role: models.RoleStudent}, {ID: "2", Role: models.RoleAdmin}},
			Pagination: models.Pagination{Total: 40},
		}},
		Fees:    NewFeeService(fees, newTestOps(), nil, nil),
		Notices: stubNotices{byRole: map[models.UserRole][]models.Notice{models.RoleAdmin: {{ID: "n1"}, {ID: "n2"}}}},
	})

	dash, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, dash.Fetched)
	assert.Equal(t, 40, dash.Total)
	assert.Equal(t, dash.Fetched, dash.Buckets.Total())
	assert.Equal(t, 500.0, dash.FeeSummary.TotalAmount)
	assert.Equal(t, 2, dash.ActiveNotices)
}

func TestAdminDashboardPropagatesErrors(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{
		Users:   stubUsers{err: errors.New("down")},
		Fees:    NewFeeService(&mockFeeRepo{}, newTestOps(), nil, nil),
		Notices: stubNotices{},
	})
	_, err := svc.Admin(context.Background())
	assert.Error(t, err)
}

func TestTeacherDashboardCountsUngraded(t *testing.T) {
	grade := 80.0
	teacher := &models.User{ID: "t1", Role: models.RoleTeacher}
	svc := NewDashboardService(DashboardServiceParams{
		Assignments: stubAssignments{
			assignments: []models.Assignment{
				{ID: "a1", Teacher: &models.UserRef{ID: "t1"}},
				{ID: "a2", Teacher: &models.UserRef{ID: "other"}},
			},
			submissions: map[string][]models.Submission{
				"a1": {{ID: "s1", Grade: &grade}, {ID: "s2"}, {ID: "s3", Status: models.SubmissionStatusGraded}, {ID: "s4"}},
			},
		},
		Notices:  stubNotices{byRole: map[models.UserRole][]models.Notice{models.RoleTeacher: {{ID: "n1"}}}},
		Messages: stubMessages{unread: 3},
	})

	dash, err := svc.Teacher(context.Background(), teacher)
	require.NoError(t, err)
	require.Len(t, dash.Assignments, 1)
	assert.Equal(t, 4, dash.Assignments[0].Submissions)
	assert.Equal(t, 2, dash.Assignments[0].Ungraded)
	assert.Len(t, dash.Notices, 1)
	assert.Equal(t, 3, dash.Unread)
}

func TestStudentDashboardKeepsOutstandingFeesAndOpenLoans(t *testing.T) {
	student := &models.User{ID: "u1", Role: models.RoleStudent}
	fees := &mockFeeRepo{byStudent: map[string][]models.Fee{"u1": {
		{ID: "f1", Amount: 200, PaidAmount: 50, Status: models.FeeStatusPartial},
		{ID: "f2", Amount: 100, PaidAmount: 100, Status: models.FeeStatusPaid},
	}}}
	svc := NewDashboardService(DashboardServiceParams{
		Fees:        NewFeeService(fees, newTestOps(), nil, nil),
		Assignments: stubAssignments{byStudent: map[string][]models.Submission{"u1": {{ID: "s1"}}}},
		Library: stubLibrary{borrows: []models.BorrowRecord{
			{ID: "b1", Status: models.BorrowStatusBorrowed},
			{ID: "b2", Status: models.BorrowStatusReturned},
		}},
		Notices: stubNotices{byRole: map[models.UserRole][]models.Notice{models.RoleStudent: {{ID: "n1"}}}},
	})

	dash, err := svc.Student(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, dash.Fees, 1)
	assert.Equal(t, "f1", dash.Fees[0].Fee.ID)
	assert.Equal(t, 150.0, dash.Fees[0].Outstanding)
	assert.Equal(t, 25.0, dash.Fees[0].Progress)
	require.Len(t, dash.Borrows, 1)
	assert.Equal(t, "b1", dash.Borrows[0].ID)
	assert.Len(t, dash.Submissions, 1)
	assert.Len(t, dash.Notices, 1)
}

func TestParentDashboardListsChildrenFees(t *testing.T) {
	parent := &models.User{ID: "p1", Role: models.RoleParent}
	fees := &mockFeeRepo{byStudent: map[string][]models.Fee{
		"c1": {{ID: "f1", Amount: 100, PaidAmount: 75, Status: models.FeeStatusPartial}},
	}}
	svc := NewDashboardService(DashboardServiceParams{
		Fees: NewFeeService(fees, newTestOps(), nil, nil),
		Students: stubStudents{children: map[string][]models.Student{"p1": {
			{ID: "st1", User: models.UserRef{ID: "c1"}},
			{ID: "st2", User: models.UserRef{ID: "c2"}},
		}}},
		Notices: stubNotices{},
	})

	dash, err := svc.Parent(context.Background(), parent)
	require.NoError(t, err)
	require.Len(t, dash.Children, 2)
	require.Len(t, dash.Children[0].Fees, 1)
	assert.Equal(t, 75.0, dash.Children[0].Fees[0].Progress)
	assert.Empty(t, dash.Children[1].Fees)
}

func TestDashboardRequiresMatchingRole(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{})

	_, err := svc.Teacher(context.Background(), nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Parent(context.Background(), &models.User{ID: "x", Role: models.RoleStudent})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
