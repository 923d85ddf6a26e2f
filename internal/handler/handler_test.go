package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/middleware"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/service"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func newContext(method, target string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, body)
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, rec
}

type fakeFees struct {
	feeService
	page    models.Page[models.Fee]
	filter  dto.FeeFilter
	created []dto.CreateFeeRequest
	err     error
}

func (f *fakeFees) List(_ context.Context, filter dto.FeeFilter) (models.Page[models.Fee], error) {
	f.filter = filter
	return f.page, f.err
}

func (f *fakeFees) Create(_ context.Context, req dto.CreateFeeRequest) (*models.Fee, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &models.Fee{ID: "f1", Amount: req.Amount}, nil
}

func TestFeeListParsesFilterAndReturnsPagination(t *testing.T) {
	fees := &fakeFees{page: models.Page[models.Fee]{
		Items:      []models.Fee{{ID: "f1"}, {ID: "f2"}},
		Pagination: models.Pagination{CurrentPage: 2, Total: 12, TotalPages: 3},
	}}
	c, rec := newContext(http.MethodGet, "/fees?status=overdue&page=2&limit=5&studentId=s1", nil)

	NewFeeHandler(fees).List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.FeeStatus("overdue"), fees.filter.Status)
	assert.Equal(t, "s1", fees.filter.StudentID)
	assert.Equal(t, dto.PageQuery{Page: 2, Limit: 5}, fees.filter.PageQuery)

	env := decode(t, rec)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 12, env.Pagination.Total)
	var items []models.Fee
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
}

func TestFeeCreateRejectsMalformedBody(t *testing.T) {
	fees := &fakeFees{}
	c, rec := newContext(http.MethodPost, "/fees", strings.NewReader("{"))

	NewFeeHandler(fees).Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fees.created)
}

func TestUnreachableBackendAnswersBadGateway(t *testing.T) {
	fees := &fakeFees{err: appErrors.Clone(appErrors.ErrRequestFailed, "connection refused")}
	c, rec := newContext(http.MethodGet, "/fees", nil)

	NewFeeHandler(fees).List(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrRequestFailed.Code, env.Error.Code)
}

func TestRejectedEnvelopeAnswersBadGateway(t *testing.T) {
	_, rejected := transport.Decode[models.Fee](transport.Enveloped, []byte(`{"success":false,"message":"Fee already paid"}`))
	require.Error(t, rejected)
	fees := &fakeFees{err: rejected}
	c, rec := newContext(http.MethodGet, "/fees", nil)

	NewFeeHandler(fees).List(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Fee already paid", env.Error.Message)
}

func TestErrorWithSuccessStatusNeverAnswers2xx(t *testing.T) {
	odd := appErrors.Clone(appErrors.ErrRequestFailed, "odd")
	odd.Status = http.StatusOK
	fees := &fakeFees{err: odd}
	c, rec := newContext(http.MethodGet, "/fees", nil)

	NewFeeHandler(fees).List(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestBackendUnauthorizedPointsAtLogin(t *testing.T) {
	fees := &fakeFees{err: appErrors.FromStatus(http.StatusUnauthorized, "Token expired")}
	c, rec := newContext(http.MethodGet, "/fees", nil)

	NewFeeHandler(fees).List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

type fakeDashboards struct {
	called string
}

func (f *fakeDashboards) Admin(context.Context) (*service.AdminDashboard, error) {
	f.called = "admin"
	return &service.AdminDashboard{Total: 3}, nil
}

func (f *fakeDashboards) Teacher(context.Context, *models.User) (*service.TeacherDashboard, error) {
	f.called = "teacher"
	return &service.TeacherDashboard{}, nil
}

func (f *fakeDashboards) Student(context.Context, *models.User) (*service.StudentDashboard, error) {
	f.called = "student"
	return &service.StudentDashboard{}, nil
}

func (f *fakeDashboards) Parent(context.Context, *models.User) (*service.ParentDashboard, error) {
	f.called = "parent"
	return &service.ParentDashboard{}, nil
}

func TestDashboardMineDispatchesByRole(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleTeacher, models.RoleStudent, models.RoleParent} {
		dashboards := &fakeDashboards{}
		c, rec := newContext(http.MethodGet, "/dashboard", nil)
		c.Set(middleware.ContextUserKey, &models.User{ID: "u1", Role: role})

		NewDashboardHandler(dashboards).Mine(c)

		assert.Equal(t, http.StatusOK, rec.Code, string(role))
		assert.Equal(t, string(role), dashboards.called)
	}
}

func TestDashboardMineRejectsUnknownRole(t *testing.T) {
	dashboards := &fakeDashboards{}
	c, rec := newContext(http.MethodGet, "/dashboard", nil)
	c.Set(middleware.ContextUserKey, &models.User{ID: "u1", Role: "librarian"})

	NewDashboardHandler(dashboards).Mine(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, dashboards.called)
}

type fakeForms struct {
	forms []dto.UserForm
	err   error
}

func (f *fakeForms) Submit(_ context.Context, state *service.FormState, notifier service.Notifier) (*service.CreatedAccount, error) {
	form := state.Current()
	f.forms = append(f.forms, form)
	if f.err != nil {
		notifier.Notify(service.Toast{Kind: service.ToastError, Message: appErrors.Message(f.err)})
		return nil, f.err
	}
	state.Reset()
	notifier.Notify(service.Toast{Kind: service.ToastSuccess, Message: "Student created successfully"})
	return &service.CreatedAccount{Role: form.Role(), ID: "s1", Email: form.Fields().Email}, nil
}

const studentFormBody = `{"role":"student","name":"Jane Doe","email":"jane@example.com","password":"secret1"}`

func TestUserCreateDecodesFormByRole(t *testing.T) {
	forms := &fakeForms{}
	c, rec := newContext(http.MethodPost, "/users", strings.NewReader(studentFormBody))

	NewUserHandler(nil, forms, nil).Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, forms.forms, 1)
	student, ok := forms.forms[0].(dto.StudentForm)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", student.Name)

	env := decode(t, rec)
	form := env.Meta["form"].(map[string]interface{})
	assert.Equal(t, "", form["email"], "form is reset")
	toasts := env.Meta["toasts"].([]interface{})
	require.Len(t, toasts, 1)
	assert.Equal(t, "success", toasts[0].(map[string]interface{})["kind"])
}

func TestUserCreateConflictKeepsFormAndToast(t *testing.T) {
	forms := &fakeForms{err: appErrors.FromStatus(http.StatusConflict, "Email already exists")}
	c, rec := newContext(http.MethodPost, "/users", strings.NewReader(studentFormBody))

	NewUserHandler(nil, forms, nil).Create(c)

	require.Equal(t, http.StatusConflict, rec.Code)
	env := decode(t, rec)
	toasts := env.Meta["toasts"].([]interface{})
	require.Len(t, toasts, 1)
	assert.Equal(t, "Email already exists", toasts[0].(map[string]interface{})["message"])
	assert.Equal(t, "jane@example.com", env.Meta["form"].(map[string]interface{})["email"])
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	forms := &fakeForms{}
	c, rec := newContext(http.MethodPost, "/users", strings.NewReader(`{"role":"janitor","name":"x"}`))

	NewUserHandler(nil, forms, nil).Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, forms.forms)
}

type fakeLibrary struct {
	libraryService
	returned dto.ReturnRequest
	body     string
}

func (f *fakeLibrary) Return(_ context.Context, id string, req dto.ReturnRequest) (*models.BorrowRecord, error) {
	f.returned = req
	if req.Attachment != nil {
		raw, _ := io.ReadAll(req.Attachment.Content)
		f.body = string(raw)
	}
	return &models.BorrowRecord{ID: id, Status: models.BorrowStatusReturned}, nil
}

func TestReturnAcceptsMultipartAttachment(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("condition", "damaged"))
	part, err := w.CreateFormFile("attachment", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	library := &fakeLibrary{}
	c, rec := newContext(http.MethodPost, "/library/borrows/b1/return", nil)
	c.Request = httptest.NewRequest(http.MethodPost, "/library/borrows/b1/return", &buf)
	c.Request.Header.Set("Content-Type", w.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	NewLibraryHandler(library).Return(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "damaged", library.returned.Condition)
	require.NotNil(t, library.returned.Attachment)
	assert.Equal(t, "photo.jpg", library.returned.Attachment.Filename)
	assert.Equal(t, "jpeg", library.body)
}

func TestReturnAcceptsJSON(t *testing.T) {
	library := &fakeLibrary{}
	c, rec := newContext(http.MethodPost, "/library/borrows/b1/return", strings.NewReader(`{"condition":"good"}`))
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	NewLibraryHandler(library).Return(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good", library.returned.Condition)
	assert.Nil(t, library.returned.Attachment)
}

type fakeSearch struct {
	typed  []string
	latest *service.SearchResult
}

func (f *fakeSearch) Search(context.Context, string) (models.Page[models.User], error) {
	return models.Page[models.User]{}, nil
}

func (f *fakeSearch) Type(_ context.Context, term string) { f.typed = append(f.typed, term) }

func (f *fakeSearch) Latest() (service.SearchResult, bool) {
	if f.latest == nil {
		return service.SearchResult{}, false
	}
	return *f.latest, true
}

func TestKeystrokeFeedsDebouncedSearch(t *testing.T) {
	search := &fakeSearch{}
	c, rec := newContext(http.MethodPost, "/users/search/keystroke", strings.NewReader(`{"term":"ja"}`))

	NewUserHandler(nil, nil, search).Keystroke(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"ja"}, search.typed)
}

func TestLatestSearchBeforeAnySettled(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/users/search/latest", nil)

	NewUserHandler(nil, nil, &fakeSearch{}).Latest(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLatestSearchReturnsSettledPage(t *testing.T) {
	search := &fakeSearch{latest: &service.SearchResult{
		Term: "jane",
		Page: models.Page[models.User]{Items: []models.User{{ID: "u1"}}, Pagination: models.Pagination{CurrentPage: 1, Total: 1, TotalPages: 1}},
	}}
	c, rec := newContext(http.MethodGet, "/users/search/latest", nil)

	NewUserHandler(nil, nil, search).Latest(c)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "jane", env.Meta["term"])
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Total)
}
