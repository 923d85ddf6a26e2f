package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]interface{}
	form   map[string]string
	files  map[string]string
}

// newBackend starts a fake backend replying with reply for every request.
func newBackend(t *testing.T, status int, reply string) (*transport.Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			rec.form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				rec.form[k] = v[0]
			}
			rec.files = map[string]string{}
			for k, headers := range r.MultipartForm.File {
				f, err := headers[0].Open()
				require.NoError(t, err)
				raw, _ := io.ReadAll(f)
				_ = f.Close()
				rec.files[k] = headers[0].Filename + "=" + string(raw)
			}
		} else if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				require.NoError(t, json.Unmarshal(raw, &rec.body))
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	client, err := transport.New(transport.Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	return client, rec
}

func TestUserRepositoryListDecodesPage(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `{"success":true,"data":{"items":[{"id":"u1","role":"teacher"}],"pagination":{"currentPage":1,"total":1,"totalPages":1}}}`)
	repo := NewUserRepository(client)

	page, err := repo.List(context.Background(), dto.UserFilter{Role: models.RoleTeacher, PageQuery: dto.PageQuery{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.RoleTeacher, page.Items[0].Role)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, "/api/users", rec.path)
	assert.Equal(t, "limit=10&page=1&role=teacher", rec.query)
}

func TestUserRepositoryDeactivate(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `{"success":true,"data":{"id":"u 1","isActive":false}}`)
	repo := NewUserRepository(client)

	user, err := repo.Deactivate(context.Background(), "u 1")
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/users/u 1/deactivate", rec.path)
}

func TestStudentRepositoryCreateSendsDerivedPayload(t *testing.T) {
	client, rec := newBackend(t, http.StatusCreated, `{"success":true,"data":{"id":"s1","user":{"id":"u1","firstName":"Jane"}}}`)
	repo := NewStudentRepository(client)

	student, err := repo.Create(context.Background(), dto.CreateStudentRequest{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", student.ID)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/students", rec.path)
	assert.Equal(t, "Jane", rec.body["firstName"])
	assert.Equal(t, "Doe", rec.body["lastName"])
}

func TestStudentRepositoryConflictSurfacesMessage(t *testing.T) {
	client, _ := newBackend(t, http.StatusConflict, `{"success":false,"message":"Email already exists"}`)
	repo := NewStudentRepository(client)

	_, err := repo.Create(context.Background(), dto.CreateStudentRequest{FirstName: "Jane"})
	require.Error(t, err)
	assert.True(t, appErrors.HasStatus(err, http.StatusConflict))
	assert.Equal(t, "Email already exists", appErrors.Message(err))
}

func TestFeeRepositoryPay(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `{"success":true,"data":{"fee":{"id":"f1","amount":100,"paidAmount":40,"status":"partial"},"payment":{"id":"p1","amount":40}}}`)
	repo := NewFeeRepository(client)

	res, err := repo.Pay(context.Background(), "f1", dto.PaymentRequest{Amount: 40, Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPartial, res.Fee.Status)
	assert.Equal(t, 40.0, res.Fee.Progress())
	assert.Equal(t, "/api/fees/f1/payments", rec.path)
	assert.Equal(t, "cash", rec.body["method"])
}

func TestFeeRepositoryDeleteToleratesEmptyBody(t *testing.T) {
	client, rec := newBackend(t, http.StatusNoContent, ``)
	repo := NewFeeRepository(client)

	require.NoError(t, repo.Delete(context.Background(), "f1"))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/fees/f1", rec.path)
}

func TestLibraryRepositoryReadsBarePayload(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `[{"id":"b1","title":"Dune","availableCopies":2}]`)
	repo := NewLibraryRepository(client)

	available := true
	books, err := repo.Books(context.Background(), dto.BookFilter{Available: &available})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.True(t, books[0].Available())
	assert.Equal(t, "available=true", rec.query)
}

func TestLibraryRepositoryReturnSendsMultipart(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `{"id":"br1","status":"returned"}`)
	repo := NewLibraryRepository(client)

	record, err := repo.Return(context.Background(), "br1", dto.ReturnRequest{
		Condition:  "good",
		Attachment: &dto.Attachment{Filename: "receipt.txt", Content: strings.NewReader("ok")},
	})
	require.NoError(t, err)
	assert.False(t, record.Open())
	assert.Equal(t, "/api/library/borrows/br1/return", rec.path)
	assert.Equal(t, "good", rec.form["condition"])
	assert.Equal(t, "receipt.txt=ok", rec.files["attachment"])
}

func TestAssignmentRepositoryGrade(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `{"id":"sub1","grade":88,"status":"graded"}`)
	repo := NewAssignmentRepository(client)

	sub, err := repo.Grade(context.Background(), "sub1", dto.GradeRequest{Grade: 88, Feedback: "good"})
	require.NoError(t, err)
	assert.True(t, sub.Graded())
	assert.Equal(t, "/api/assignments/submissions/sub1/grade", rec.path)
}

func TestMessageRepositoryUnreadCount(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `{"success":true,"data":{"count":3}}`)
	repo := NewMessageRepository(client)

	n, err := repo.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "/api/messages/unread-count", rec.path)
}

func TestSettingsRepositoryUpdateOmitsNilSections(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `{"success":true,"data":{"fees":{"currency":"IDR"}}}`)
	repo := NewSettingsRepository(client)

	settings, err := repo.Update(context.Background(), dto.SettingsPatch{Fees: &models.FeeSettings{Currency: "IDR"}})
	require.NoError(t, err)
	assert.Equal(t, "IDR", settings.Fees.Currency)
	assert.Contains(t, rec.body, "fees")
	assert.NotContains(t, rec.body, "school")
}

func TestSettingsRepositoryDownloadReturnsRawBytes(t *testing.T) {
	client, rec := newBackend(t, http.StatusOK, `PK-archive`)
	repo := NewSettingsRepository(client)

	raw, err := repo.DownloadBackup(context.Background(), "bk1")
	require.NoError(t, err)
	assert.Equal(t, "PK-archive", string(raw))
	assert.Equal(t, "/api/settings/backups/bk1/download", rec.path)
}

func TestModuleShapes(t *testing.T) {
	assert.Equal(t, transport.Bare, (&LibraryRepository{}).Shape())
	assert.Equal(t, transport.Bare, (&AssignmentRepository{}).Shape())
	for _, shape := range []transport.Shape{
		(&AuthRepository{}).Shape(),
		(&UserRepository{}).Shape(),
		(&StudentRepository{}).Shape(),
		(&TeacherRepository{}).Shape(),
		(&FeeRepository{}).Shape(),
		(&NoticeRepository{}).Shape(),
		(&MessageRepository{}).Shape(),
		(&RoleRepository{}).Shape(),
		(&SettingsRepository{}).Shape(),
	} {
		assert.Equal(t, transport.Enveloped, shape)
	}
}
