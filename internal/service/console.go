package service

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
)

type consoleSession interface {
	sessionStore
	OnClear(fn func())
}

// ConsoleDeps groups everything the console needs.
type ConsoleDeps struct {
	Auth        authRepository
	Users       userRepository
	Students    studentRepository
	Teachers    teacherRepository
	Fees        feeRepository
	Library     libraryRepository
	Assignments assignmentRepository
	Notices     noticeRepository
	Messages    messageRepository
	Roles       roleRepository
	Settings    settingsRepository

	Session        consoleSession
	Cache          *cache.QueryCache
	Backups        backupStorage
	Validator      *validator.Validate
	Logger         *zap.Logger
	PageSize       int
	SearchDebounce time.Duration
}

// Console groups the services behind one handle.
type Console struct {
	State       *UserState
	Ops         *Operations
	Auth        *AuthService
	Users       *UserService
	Students    *StudentService
	Teachers    *TeacherService
	Fees        *FeeService
	Library     *LibraryService
	Assignments *AssignmentService
	Notices     *NoticeService
	Messages    *MessageService
	Roles       *RoleService
	Settings    *SettingsService
	Dashboard   *DashboardService
	Forms       *UserFormService

	searchDelay time.Duration
	logger      *zap.Logger
}

// NewConsole wires the services. Clearing the session, whether by logout
// or by a 401 from the backend, clears the user state and empties the cache.
func NewConsole(deps ConsoleDeps) *Console {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := deps.Validator
	if validate == nil {
		validate = validator.New()
	}
	qc := deps.Cache
	if qc == nil {
		qc = cache.NewQueryCache(cache.QueryConfig{Logger: logger})
	}

	ops := NewOperations(qc, logger.Named("operations"))
	state := NewUserState()
	c := &Console{
		State:       state,
		Ops:         ops,
		Auth:        NewAuthService(deps.Auth, deps.Session, state, ops, validate, logger.Named("auth")),
		Users:       NewUserService(deps.Users, ops, validate, logger.Named("users")),
		Students:    NewStudentService(deps.Students, ops, validate, logger.Named("students")),
		Teachers:    NewTeacherService(deps.Teachers, ops, validate, logger.Named("teachers")),
		Fees:        NewFeeService(deps.Fees, ops, validate, logger.Named("fees")),
		Library:     NewLibraryService(deps.Library, ops, validate, logger.Named("library")),
		Assignments: NewAssignmentService(deps.Assignments, ops, validate, logger.Named("assignments")),
		Notices:     NewNoticeService(deps.Notices, ops, validate, logger.Named("notices")),
		Messages:    NewMessageService(deps.Messages, ops, validate, logger.Named("messages")),
		Roles:       NewRoleService(deps.Roles, ops, validate, logger.Named("roles")),
		Settings:    NewSettingsService(deps.Settings, deps.Backups, ops, logger.Named("settings")),
		searchDelay: deps.SearchDebounce,
		logger:      logger,
	}
	c.Dashboard = NewDashboardService(DashboardServiceParams{
		Users:       c.Users,
		Fees:        c.Fees,
		Notices:     c.Notices,
		Assignments: c.Assignments,
		Messages:    c.Messages,
		Library:     c.Library,
		Students:    c.Students,
		PageSize:    deps.PageSize,
		Logger:      logger.Named("dashboard"),
	})
	c.Forms = NewUserFormService(c.Users, c.Students, c.Teachers, validate, logger.Named("forms"))

	if deps.Session != nil {
		deps.Session.OnClear(func() {
			state.Clear()
			qc.Reset()
			logger.Info("session cleared")
		})
	}
	return c
}

// NewUserSearch starts a debounced users search delivering to fn.
func (c *Console) NewUserSearch(base dto.UserFilter, fn func(SearchResult)) *UserSearch {
	return NewUserSearch(c.Users, c.searchDelay, base, fn, c.logger.Named("search"))
}

// NewSearchBox starts a debounced users search whose settled result is read
// back with Latest.
func (c *Console) NewSearchBox(base dto.UserFilter) *SearchBox {
	return NewSearchBox(c.Users, c.searchDelay, base, c.logger.Named("search"))
}

// Graph returns the read and write tag tables.
func (c *Console) Graph() Graph {
	return InvalidationGraph()
}
