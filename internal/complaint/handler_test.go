package complaint

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campus_care_backend/internal/classifier"
	"campus_care_backend/internal/common"
	"campus_care_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockComplaintService struct {
	mock.Mock
}

func (m *mockComplaintService) Create(ctx context.Context, actor common.Actor, in CreateInput) (*Complaint, error) {
	args := m.Called(ctx, actor, in)
	c, _ := args.Get(0).(*Complaint)
	return c, args.Error(1)
}

func (m *mockComplaintService) Predict(ctx context.Context, image []byte, note string) (*classifier.Prediction, error) {
	args := m.Called(ctx, image, note)
	p, _ := args.Get(0).(*classifier.Prediction)
	return p, args.Error(1)
}

func (m *mockComplaintService) Transition(ctx context.Context, id uuid.UUID, actor common.Actor, status string, adminNotes *string) (*Complaint, error) {
	args := m.Called(ctx, id, actor, status, adminNotes)
	c, _ := args.Get(0).(*Complaint)
	return c, args.Error(1)
}

func (m *mockComplaintService) UpdateFields(ctx context.Context, id uuid.UUID, actor common.Actor, req UpdateFieldsRequest) (*Complaint, error) {
	args := m.Called(ctx, id, actor, req)
	c, _ := args.Get(0).(*Complaint)
	return c, args.Error(1)
}

func (m *mockComplaintService) Get(ctx context.Context, id uuid.UUID, actor common.Actor) (*Complaint, error) {
	args := m.Called(ctx, id, actor)
	c, _ := args.Get(0).(*Complaint)
	return c, args.Error(1)
}

func (m *mockComplaintService) ListForUser(ctx context.Context, userID uuid.UUID) ([]Complaint, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).([]Complaint)
	return c, args.Error(1)
}

func (m *mockComplaintService) ListAll(ctx context.Context, filter AdminFilter, page, pageSize int) ([]Complaint, *common.Pagination, error) {
	args := m.Called(ctx, filter, page, pageSize)
	c, _ := args.Get(0).([]Complaint)
	p, _ := args.Get(1).(*common.Pagination)
	return c, p, args.Error(2)
}

func (m *mockComplaintService) ListForDepartment(ctx context.Context, actor common.Actor, filter DepartmentFilter) (*DepartmentView, error) {
	args := m.Called(ctx, actor, filter)
	v, _ := args.Get(0).(*DepartmentView)
	return v, args.Error(1)
}

func (m *mockComplaintService) EscalationCandidates(ctx context.Context, olderThan time.Duration, limit int) ([]Complaint, error) {
	args := m.Called(ctx, olderThan, limit)
	c, _ := args.Get(0).([]Complaint)
	return c, args.Error(1)
}

type testCaller struct {
	id         uuid.UUID
	role       string
	department string
}

func newComplaintRouter(t *testing.T, svc Service, caller testCaller) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set(common.UserIDKey, caller.id)
		c.Set(common.UserRoleKey, caller.role)
		c.Set(common.UserDepartmentKey, caller.department)
		c.Next()
	}
	noLimit := func(c *gin.Context) { c.Next() }
	h := NewHandler(svc, &config.Config{MaxImageSizeMB: 5}, zap.NewNop())
	h.RegisterRoutes(r.Group("/api/v1"), fakeAuth, noLimit)
	return r
}

func multipartComplaint(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestHandler_CreateComplaint_Duplicate(t *testing.T) {
	svc := new(mockComplaintService)
	caller := testCaller{id: uuid.New(), role: common.RoleStudent}
	router := newComplaintRouter(t, svc, caller)
	matchID := "c-42"

	svc.On("Create", mock.Anything, common.Actor{UserID: caller.id, Role: common.RoleStudent}, CreateInput{
		Image:    pngImage,
		Location: "Block A",
		Note:     "broken",
	}).Return(nil, &DuplicateComplaintError{Match: classifier.DuplicateMatch{
		IsDuplicate:        true,
		SimilarityScore:    0.93,
		SimilarComplaintID: &matchID,
	}}).Once()

	body, contentType := multipartComplaint(t, map[string]string{"location": "Block A", "note": "broken"}, pngImage)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Duplicate struct {
			IsDuplicate        bool    `json:"is_duplicate"`
			SimilarityScore    float64 `json:"similarity_score"`
			SimilarComplaintID string  `json:"similar_complaint_id"`
		} `json:"duplicate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, CodeDuplicateComplaint, resp.Code)
	assert.Equal(t, "This appears to be a duplicate complaint", resp.Message)
	assert.True(t, resp.Duplicate.IsDuplicate)
	assert.Equal(t, "c-42", resp.Duplicate.SimilarComplaintID)
	svc.AssertExpectations(t)
}

func TestHandler_CreateComplaint_Created(t *testing.T) {
	svc := new(mockComplaintService)
	caller := testCaller{id: uuid.New(), role: common.RoleStudent}
	router := newComplaintRouter(t, svc, caller)

	created := &Complaint{Location: "Library"}
	created.ID = uuid.New()
	svc.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(in CreateInput) bool {
		return in.Location == "Library" && in.Category == "Projector" && bytes.Equal(in.Image, pngImage)
	})).Return(created, nil).Once()

	body, contentType := multipartComplaint(t, map[string]string{"location": "Library", "category": "Projector", "priority": "High"}, pngImage)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID.String())
}

func TestHandler_CreateComplaint_MissingFields(t *testing.T) {
	svc := new(mockComplaintService)
	router := newComplaintRouter(t, svc, testCaller{id: uuid.New(), role: common.RoleStudent})

	body, contentType := multipartComplaint(t, map[string]string{"note": "no location"}, pngImage)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType = multipartComplaint(t, map[string]string{"location": "Block C"}, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/complaints", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_RoleGates(t *testing.T) {
	svc := new(mockComplaintService)
	router := newComplaintRouter(t, svc, testCaller{id: uuid.New(), role: common.RoleStudent})

	for _, path := range []string{"/api/v1/admin/complaints", "/api/v1/supervisor/complaints"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestHandler_SupervisorStatusDropsNotes(t *testing.T) {
	svc := new(mockComplaintService)
	caller := testCaller{id: uuid.New(), role: common.RoleSupervisor, department: "Electrical"}
	router := newComplaintRouter(t, svc, caller)
	id := uuid.New()

	svc.On("Transition", mock.Anything, id, common.Actor{UserID: caller.id, Role: common.RoleSupervisor, Department: "Electrical"}, "Resolved", (*string)(nil)).
		Return(&Complaint{}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/supervisor/complaints/"+id.String()+"/status",
		strings.NewReader(`{"status":"Resolved","adminNotes":"should be ignored"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandler_AdminStatusPassesNotes(t *testing.T) {
	svc := new(mockComplaintService)
	router := newComplaintRouter(t, svc, testCaller{id: uuid.New(), role: common.RoleAdmin})
	id := uuid.New()
	notes := "Parts ordered"

	svc.On("Transition", mock.Anything, id, mock.Anything, "In-Progress", &notes).Return(&Complaint{}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/complaints/"+id.String()+"/status",
		strings.NewReader(`{"status":"In-Progress","adminNotes":"Parts ordered"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandler_InvalidComplaintID(t *testing.T) {
	svc := new(mockComplaintService)
	router := newComplaintRouter(t, svc, testCaller{id: uuid.New(), role: common.RoleAdmin})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/complaints/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetComplaint_Forbidden(t *testing.T) {
	svc := new(mockComplaintService)
	router := newComplaintRouter(t, svc, testCaller{id: uuid.New(), role: common.RoleStudent})
	id := uuid.New()
	svc.On("Get", mock.Anything, id, mock.Anything).Return(nil, common.ErrForbidden.WithDetails("Access denied")).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/complaints/"+id.String(), nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
