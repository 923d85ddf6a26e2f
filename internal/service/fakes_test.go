package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
)

// inlineScheduler runs refetch tasks on their own goroutine.
type inlineScheduler struct {
	mu   sync.Mutex
	keys []string
}

func (s *inlineScheduler) Schedule(key string, task func(context.Context)) error {
	s.mu.Lock()
	s.keys = append(s.keys, key)
	s.mu.Unlock()
	go task(context.Background())
	return nil
}

func newTestOps() *Operations {
	return NewOperations(cache.NewQueryCache(cache.QueryConfig{Scheduler: &inlineScheduler{}}), nil)
}

type mockFeeRepo struct {
	mu        sync.Mutex
	fees      []models.Fee
	listCalls int32
	byStudent map[string][]models.Fee
	summary   *models.FeeSummary
	createErr error
}

func (m *mockFeeRepo) List(context.Context, dto.FeeFilter) (models.Page[models.Fee], error) {
	atomic.AddInt32(&m.listCalls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]models.Fee(nil), m.fees...)
	return models.Page[models.Fee]{Items: items, Pagination: models.Pagination{CurrentPage: 1, Total: len(items), TotalPages: 1}}, nil
}

func (m *mockFeeRepo) FindByID(_ context.Context, id string) (*models.Fee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.fees {
		if f.ID == id {
			f := f
			return &f, nil
		}
	}
	return nil, nil
}

func (m *mockFeeRepo) Payments(context.Context, string) ([]models.Payment, error) { return nil, nil }

func (m *mockFeeRepo) ListByStudent(_ context.Context, studentID string) ([]models.Fee, error) {
	return m.byStudent[studentID], nil
}

func (m *mockFeeRepo) Summary(context.Context, dto.FeeFilter) (*models.FeeSummary, error) {
	return m.summary, nil
}

func (m *mockFeeRepo) Create(_ context.Context, req dto.CreateFeeRequest) (*models.Fee, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fee := models.Fee{ID: fmt.Sprintf("f%d", len(m.fees)+1), Student: models.UserRef{ID: req.StudentID}, FeeType: req.FeeType, Amount: req.Amount, Status: models.FeeStatusPending}
	m.fees = append(m.fees, fee)
	return &fee, nil
}

func (m *mockFeeRepo) Update(_ context.Context, id string, _ dto.UpdateFeeRequest) (*models.Fee, error) {
	return &models.Fee{ID: id}, nil
}

func (m *mockFeeRepo) Delete(context.Context, string) error { return nil }

func (m *mockFeeRepo) Pay(_ context.Context, id string, req dto.PaymentRequest) (*models.PaymentResult, error) {
	return &models.PaymentResult{Fee: models.Fee{ID: id, Amount: 100, PaidAmount: req.Amount}, Payment: models.Payment{ID: "p1", Amount: req.Amount}}, nil
}

type mockUserRepo struct {
	mu        sync.Mutex
	users     []models.User
	searches  []string
	created   []dto.CreateUserRequest
	createErr error
}

func (m *mockUserRepo) List(ctx context.Context, filter dto.UserFilter) (models.Page[models.User], error) {
	if err := ctx.Err(); err != nil {
		return models.Page[models.User]{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, filter.Search)
	items := append([]models.User(nil), m.users...)
	return models.Page[models.User]{Items: items, Pagination: models.Pagination{CurrentPage: 1, Total: len(items), TotalPages: 1}}, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (m *mockUserRepo) Stats(context.Context) (*models.UserStats, error) {
	return &models.UserStats{}, nil
}

func (m *mockUserRepo) Create(_ context.Context, req dto.CreateUserRequest) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, req)
	return &models.User{ID: "u-new", FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Role: req.Role}, nil
}

func (m *mockUserRepo) Update(_ context.Context, id string, _ dto.UpdateUserRequest) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (m *mockUserRepo) Activate(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, IsActive: true}, nil
}

func (m *mockUserRepo) Deactivate(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (m *mockUserRepo) Import(context.Context, dto.Attachment) (*models.ImportResult, error) {
	return &models.ImportResult{Created: 1}, nil
}

func (m *mockUserRepo) Searches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searches...)
}

type mockStudentCreator struct {
	requests []dto.CreateStudentRequest
	err      error
}

func (m *mockStudentCreator) Create(_ context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &models.Student{ID: "s1", User: models.UserRef{FirstName: req.FirstName, LastName: req.LastName}}, nil
}

type mockTeacherCreator struct {
	requests []dto.CreateTeacherRequest
}

func (m *mockTeacherCreator) Create(_ context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	m.requests = append(m.requests, req)
	return &models.Teacher{ID: "t1"}, nil
}
