package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type dashboardUsers interface {
	List(ctx context.Context, filter dto.UserFilter) (models.Page[models.User], error)
}

type dashboardFees interface {
	Summary(ctx context.Context, filter dto.FeeFilter) (*models.FeeSummary, error)
	ByStudent(ctx context.Context, studentID string) ([]models.Fee, error)
}

type dashboardNotices interface {
	VisibleTo(ctx context.Context, role models.UserRole, pageSize int) ([]models.Notice, error)
}

type dashboardAssignments interface {
	List(ctx context.Context, filter dto.AssignmentFilter) ([]models.Assignment, error)
	Submissions(ctx context.Context, id string) ([]models.Submission, error)
	StudentSubmissions(ctx context.Context, studentID string) ([]models.Submission, error)
}

type dashboardMessages interface {
	UnreadCount(ctx context.Context) (int, error)
}

type dashboardLibrary interface {
	Borrows(ctx context.Context, filter dto.BorrowFilter) ([]models.BorrowRecord, error)
}

type dashboardStudents interface {
	ByParent(ctx context.Context, parentID string) ([]models.Student, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Users       dashboardUsers
	Fees        dashboardFees
	Notices     dashboardNotices
	Assignments dashboardAssignments
	Messages    dashboardMessages
	Library     dashboardLibrary
	Students    dashboardStudents
	PageSize    int
	Logger      *zap.Logger
}

// DashboardService composes the per-role dashboards.
type DashboardService struct {
	users       dashboardUsers
	fees        dashboardFees
	notices     dashboardNotices
	assignments dashboardAssignments
	messages    dashboardMessages
	library     dashboardLibrary
	students    dashboardStudents
	pageSize    int
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &DashboardService{
		users:       params.Users,
		fees:        params.Fees,
		notices:     params.Notices,
		assignments: params.Assignments,
		messages:    params.Messages,
		library:     params.Library,
		students:    params.Students,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// RoleBuckets partitions users by role. Users with a role outside the known
// set land in Unassigned.
type RoleBuckets struct {
	Students   []models.User `json:"students"`
	Teachers   []models.User `json:"teachers"`
	Parents    []models.User `json:"parents"`
	Admins     []models.User `json:"admins"`
	Unassigned []models.User `json:"unassigned,omitempty"`
}

// Total counts every bucketed user.
func (b RoleBuckets) Total() int {
	return len(b.Students) + len(b.Teachers) + len(b.Parents) + len(b.Admins) + len(b.Unassigned)
}

// PartitionByRole places every user in exactly one bucket.
func PartitionByRole(users []models.User) RoleBuckets {
	buckets := RoleBuckets{
		Students: []models.User{},
		Teachers: []models.User{},
		Parents:  []models.User{},
		Admins:   []models.User{},
	}
	for _, u := range users {
		switch u.Role {
		case models.RoleStudent:
			buckets.Students = append(buckets.Students, u)
		case models.RoleTeacher:
			buckets.Teachers = append(buckets.Teachers, u)
		case models.RoleParent:
			buckets.Parents = append(buckets.Parents, u)
		case models.RoleAdmin:
			buckets.Admins = append(buckets.Admins, u)
		default:
			buckets.Unassigned = append(buckets.Unassigned, u)
		}
	}
	return buckets
}

// AdminDashboard is the overview for administrators.
type AdminDashboard struct {
	Buckets       RoleBuckets        `json:"buckets"`
	Fetched       int                `json:"fetched"`
	Total         int                `json:"total"`
	FeeSummary    *models.FeeSummary `json:"feeSummary,omitempty"`
	ActiveNotices int                `json:"activeNotices"`
}

// AssignmentProgress counts ungraded work for one assignment.
type AssignmentProgress struct {
	Assignment  models.Assignment `json:"assignment"`
	Submissions int               `json:"submissions"`
	Ungraded    int               `json:"ungraded"`
}

// TeacherDashboard is the overview for teachers.
type TeacherDashboard struct {
	Assignments []AssignmentProgress `json:"assignments"`
	Notices     []models.Notice      `json:"notices"`
	Unread      int                  `json:"unreadMessages"`
}

// FeeProgress pairs an outstanding fee with its payment progress.
type FeeProgress struct {
	Fee         models.Fee `json:"fee"`
	Outstanding float64    `json:"outstanding"`
	Progress    float64    `json:"progress"`
}

// StudentDashboard is the overview for students.
type StudentDashboard struct {
	Submissions []models.Submission   `json:"submissions"`
	Fees        []FeeProgress         `json:"fees"`
	Borrows     []models.BorrowRecord `json:"borrows"`
	Notices     []models.Notice       `json:"notices"`
}

// ChildOverview is one child on the parent dashboard.
type ChildOverview struct {
	Student models.Student `json:"student"`
	Fees    []FeeProgress  `json:"fees"`
}

// ParentDashboard is the overview for parents.
type ParentDashboard struct {
	Children []ChildOverview `json:"children"`
	Notices  []models.Notice `json:"notices"`
}

// Admin builds the administrator dashboard.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	var (
		page    models.Page[models.User]
		summary *models.FeeSummary
		notices []models.Notice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page, err = s.users.List(gctx, dto.UserFilter{PageQuery: dto.PageQuery{Limit: s.pageSize}})
		return err
	})
	g.Go(func() (err error) {
		summary, err = s.fees.Summary(gctx, dto.FeeFilter{})
		return err
	})
	g.Go(func() (err error) {
		notices, err = s.notices.VisibleTo(gctx, models.RoleAdmin, s.pageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	buckets := PartitionByRole(page.Items)
	if n := len(buckets.Unassigned); n > 0 {
		s.logger.Warn("users with unknown role", zap.Int("count", n))
	}
	total := page.Pagination.Total
	if total < len(page.Items) {
		total = len(page.Items)
	}
	return &AdminDashboard{
		Buckets:       buckets,
		Fetched:       len(page.Items),
		Total:         total,
		FeeSummary:    summary,
		ActiveNotices: len(notices),
	}, nil
}

// Teacher builds the dashboard for the given teacher account.
func (s *DashboardService) Teacher(ctx context.Context, user *models.User) (*TeacherDashboard, error) {
	if err := requireRole(user, models.RoleTeacher); err != nil {
		return nil, err
	}
	var (
		assignments []models.Assignment
		notices     []models.Notice
		unread      int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		assignments, err = s.assignments.List(gctx, dto.AssignmentFilter{TeacherID: user.ID})
		return err
	})
	g.Go(func() (err error) {
		notices, err = s.notices.VisibleTo(gctx, models.RoleTeacher, s.pageSize)
		return err
	})
	g.Go(func() (err error) {
		unread, err = s.messages.UnreadCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	progress := make([]AssignmentProgress, len(assignments))
	g, gctx = errgroup.WithContext(ctx)
	for i := range assignments {
		i := i
		g.Go(func() error {
			subs, err := s.assignments.Submissions(gctx, assignments[i].ID)
			if err != nil {
				return err
			}
			p := AssignmentProgress{Assignment: assignments[i], Submissions: len(subs)}
			for _, sub := range subs {
				if !sub.Graded() {
					p.Ungraded++
				}
			}
			progress[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &TeacherDashboard{Assignments: progress, Notices: notices, Unread: unread}, nil
}

// Student builds the dashboard for the given student account.
func (s *DashboardService) Student(ctx context.Context, user *models.User) (*StudentDashboard, error) {
	if err := requireRole(user, models.RoleStudent); err != nil {
		return nil, err
	}
	var (
		submissions []models.Submission
		fees        []models.Fee
		borrows     []models.BorrowRecord
		notices     []models.Notice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		submissions, err = s.assignments.StudentSubmissions(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		fees, err = s.fees.ByStudent(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		borrows, err = s.library.Borrows(gctx, dto.BorrowFilter{BorrowerID: user.ID})
		return err
	})
	g.Go(func() (err error) {
		notices, err = s.notices.VisibleTo(gctx, models.RoleStudent, s.pageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	current := make([]models.BorrowRecord, 0, len(borrows))
	for _, b := range borrows {
		if b.Open() {
			current = append(current, b)
		}
	}
	return &StudentDashboard{
		Submissions: submissions,
		Fees:        outstanding(fees),
		Borrows:     current,
		Notices:     notices,
	}, nil
}

// Parent builds the dashboard for the given parent account.
func (s *DashboardService) Parent(ctx context.Context, user *models.User) (*ParentDashboard, error) {
	if err := requireRole(user, models.RoleParent); err != nil {
		return nil, err
	}
	var (
		children []models.Student
		notices  []models.Notice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		children, err = s.students.ByParent(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		notices, err = s.notices.VisibleTo(gctx, models.RoleParent, s.pageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := make([]ChildOverview, len(children))
	g, gctx = errgroup.WithContext(ctx)
	for i := range children {
		i := i
		g.Go(func() error {
			fees, err := s.fees.ByStudent(gctx, children[i].User.ID)
			if err != nil {
				return err
			}
			overview[i] = ChildOverview{Student: children[i], Fees: outstanding(fees)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ParentDashboard{Children: overview, Notices: notices}, nil
}

func outstanding(fees []models.Fee) []FeeProgress {
	out := make([]FeeProgress, 0, len(fees))
	for _, f := range fees {
		if f.Settled() {
			continue
		}
		out = append(out, FeeProgress{Fee: f, Outstanding: f.Outstanding(), Progress: f.Progress()})
	}
	return out
}

func requireRole(user *models.User, role models.UserRole) error {
	if user == nil {
		return appErrors.ErrUnauthorized
	}
	if user.Role != role {
		return appErrors.Clone(appErrors.ErrForbidden, "dashboard requires role "+string(role))
	}
	return nil
}
