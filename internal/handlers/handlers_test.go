package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todoList/internal/auth"
	"todoList/internal/handlers"
	"todoList/internal/handlers/dto"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"
	"todoList/internal/repository/photo"
	"todoList/internal/service"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskService is a service mock for the HTTP layer.
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(ctx context.Context, userEmail string, draft task.Draft, locator service.Locator) (*task.Task, error) {
	args := m.Called(ctx, userEmail, draft, locator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) EditTask(ctx context.Context, userEmail, id string, draft task.Draft) (*task.Task, error) {
	args := m.Called(ctx, userEmail, id, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, userEmail, id string) (*task.Task, error) {
	args := m.Called(ctx, userEmail, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, userEmail, id string) error {
	return m.Called(ctx, userEmail, id).Error(0)
}

func (m *MockTaskService) ToggleTask(ctx context.Context, userEmail, id string) (*task.Task, error) {
	args := m.Called(ctx, userEmail, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) ListTasks(ctx context.Context, userEmail string, filter task.Filter) []*task.Task {
	return m.Called(ctx, userEmail, filter).Get(0).([]*task.Task)
}

func (m *MockTaskService) Stats(ctx context.Context, userEmail string) task.Stats {
	return m.Called(ctx, userEmail).Get(0).(task.Stats)
}

func (m *MockTaskService) ReplaceTasks(ctx context.Context, userEmail string, tasks []*task.Task) ([]*task.Task, error) {
	args := m.Called(ctx, userEmail, tasks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) OpenPhoto(ctx context.Context, userEmail, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, userEmail, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ handlers.TaskService = (*MockTaskService)(nil)

const testUser = "a@x.com"

type testEnv struct {
	handler http.Handler
	service *MockTaskService
	auth    *auth.Authenticator
	fs      afero.Fs
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fs := afero.NewMemMapFs()
	staging, err := photo.NewStaging(fs, "/staging")
	require.NoError(t, err)

	a, err := auth.New("1234", []auth.User{{Email: testUser, Name: "Test User"}})
	require.NoError(t, err)
	session, err := a.Login(testUser, "1234")
	require.NoError(t, err)

	svc := new(MockTaskService)
	h := handlers.Routes(handlers.RouterConfig{AllowedOrigins: []string{"*"}},
		handlers.NewTaskHandler(svc, staging, nil),
		handlers.NewAuthHandler(a),
		a,
	)
	return &testEnv{handler: h, service: svc, auth: a, fs: fs, token: session.Token}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if e.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, taskJSON string, photoData []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if taskJSON != "" {
		require.NoError(t, mw.WriteField("task", taskJSON))
	}
	if photoData != nil {
		fw, err := mw.CreateFormFile("photo", "camera.jpg")
		require.NoError(t, err)
		_, err = fw.Write(photoData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func sampleTask() *task.Task {
	return task.New("t1", testUser, "Comprar leche", 1700000000000,
		task.WithPhotoURI("file:///photos/t1.jpg"),
		task.WithLocation(&task.Location{Latitude: -33.45, Longitude: -70.66}),
	)
}

func TestAuthMiddlewareGuardsTasks(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"unknown token", "Bearer not-a-session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			env.handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "UNAUTHORIZED", decodeBody(t, rr)["error"])
		})
	}
	env.service.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"success", `{"email":"b@x.com","password":"1234"}`, http.StatusOK, ""},
		{"wrong password", `{"email":"b@x.com","password":"0000"}`, http.StatusUnauthorized, service.CodeInvalidCredentials},
		{"missing email", `{"email":" ","password":"1234"}`, http.StatusBadRequest, service.CodeValidation},
		{"missing password", `{"email":"b@x.com","password":""}`, http.StatusBadRequest, service.CodeValidation},
		{"invalid json", `{"email":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := env.do(t, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeBody(t, rr)
			if tt.wantStatus == http.StatusOK {
				assert.NotEmpty(t, body["token"])
				assert.Equal(t, "b@x.com", body["email"])
				return
			}
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error"])
			}
		})
	}
}

func TestLogoutEndsSession(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, ok := env.auth.Resolve(env.token)
	assert.False(t, ok)

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUsersIsPublic(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var users []auth.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	assert.Equal(t, []auth.User{{Email: testUser, Name: "Test User"}}, users)
}

func TestListTasks(t *testing.T) {
	env := newTestEnv(t)
	env.service.On("ListTasks", mock.Anything, testUser, task.FilterPending).Return([]*task.Task{sampleTask()})

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/tasks?filter=pending", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []dto.TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "/tasks/t1/photo", got[0].PhotoURL)
	assert.Equal(t, "file:///photos/t1.jpg", *got[0].PhotoURI)
	env.service.AssertExpectations(t)
}

func TestListTasksEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	env.service.On("ListTasks", mock.Anything, testUser, task.FilterAll).Return([]*task.Task{})

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListTasksBadFilter(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/tasks?filter=archived", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env.service.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.service.On("Stats", mock.Anything, testUser).Return(task.Stats{Total: 3, Completed: 1, Pending: 2})

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/tasks/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total":3,"completed":1,"pending":2}`, rr.Body.String())
}

func TestCreateTaskJSON(t *testing.T) {
	env := newTestEnv(t)
	created := task.New("new", testUser, "Comprar leche", 1)
	env.service.On("CreateTask", mock.Anything, testUser, mock.MatchedBy(func(d task.Draft) bool {
		return d.Title == "Comprar leche" &&
			d.Comments == "2 litros" &&
			d.Photo.Kind == "" &&
			d.Location == nil
	}), mock.Anything).Return(created, nil)

	rr := env.do(t, jsonRequest(http.MethodPost, "/tasks", dto.TaskRequest{Title: "Comprar leche", Comments: "2 litros"}))

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "new", body["id"])
	assert.Nil(t, body["photoUri"])
	assert.Nil(t, body["location"])
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	env.service.AssertExpectations(t)
}

func TestCreateTaskUsesDeviceLocation(t *testing.T) {
	env := newTestEnv(t)
	var seen *task.Location
	env.service.On("CreateTask", mock.Anything, testUser, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			seen = args.Get(3).(service.Locator).CurrentLocation(context.Background())
		}).
		Return(task.New("new", testUser, "x", 1), nil)

	req := jsonRequest(http.MethodPost, "/tasks", dto.TaskRequest{Title: "x"})
	req.Header.Set("X-Device-Location", "-33.45,-70.66")
	rr := env.do(t, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, seen)
	assert.Equal(t, -33.45, seen.Latitude)
	assert.Equal(t, -70.66, seen.Longitude)
}

func TestCreateTaskMultipart(t *testing.T) {
	env := newTestEnv(t)
	var staged []byte
	env.service.On("CreateTask", mock.Anything, testUser, mock.MatchedBy(func(d task.Draft) bool {
		return d.Title == "Foto" &&
			d.Photo.Kind == task.PhotoReplaced &&
			strings.HasPrefix(d.Photo.SourceURI, "file:///staging/upload-")
	}), mock.Anything).
		Run(func(args mock.Arguments) {
			d := args.Get(2).(task.Draft)
			staged, _ = afero.ReadFile(env.fs, photo.LocalPath(d.Photo.SourceURI))
		}).
		Return(task.New("new", testUser, "Foto", 1, task.WithPhotoURI("file:///photos/new.jpg")), nil)

	rr := env.do(t, multipartRequest(t, http.MethodPost, "/tasks", `{"title":"Foto"}`, []byte("jpeg-bytes")))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, []byte("jpeg-bytes"), staged)
	assert.Equal(t, "/tasks/new/photo", decodeBody(t, rr)["photoUrl"])

	left, err := afero.ReadDir(env.fs, "/staging")
	require.NoError(t, err)
	assert.Empty(t, left, "staged upload is removed after the request")
}

func TestCreateTaskErrors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "validation",
			serviceErr: service.NewValidationError("title", "title is required"),
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": service.CodeValidation},
		},
		{
			name:       "unexpected",
			serviceErr: errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "something went wrong, please try again"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.service.On("CreateTask", mock.Anything, testUser, mock.Anything, mock.Anything).Return(nil, tt.serviceErr)

			rr := env.do(t, jsonRequest(http.MethodPost, "/tasks", dto.TaskRequest{Title: ""}))

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeBody(t, rr)
			for k, v := range tt.wantBody {
				assert.Equal(t, v, body[k])
			}
			assert.NotContains(t, rr.Body.String(), "disk on fire")
		})
	}
}

func TestCreateTaskValidationDetails(t *testing.T) {
	env := newTestEnv(t)
	env.service.On("CreateTask", mock.Anything, testUser, mock.Anything, mock.Anything).
		Return(nil, service.NewValidationError("title", "title is required"))

	rr := env.do(t, jsonRequest(http.MethodPost, "/tasks", dto.TaskRequest{}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	details, ok := decodeBody(t, rr)["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "title", details["field"])
}

func TestCreateTaskRejectsBadBodies(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := env.do(t, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rr = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, multipartRequest(t, http.MethodPost, "/tasks", `{not json`, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	env.service.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEditTaskPhotoActions(t *testing.T) {
	tests := []struct {
		name     string
		request  func(t *testing.T) *http.Request
		wantKind task.PhotoChangeKind
	}{
		{
			name: "keep by default",
			request: func(t *testing.T) *http.Request {
				return jsonRequest(http.MethodPut, "/tasks/t1", dto.TaskRequest{Title: "x"})
			},
			wantKind: task.PhotoUnchanged,
		},
		{
			name: "explicit keep",
			request: func(t *testing.T) *http.Request {
				return jsonRequest(http.MethodPut, "/tasks/t1", dto.TaskRequest{Title: "x", Photo: "keep"})
			},
			wantKind: task.PhotoUnchanged,
		},
		{
			name: "remove",
			request: func(t *testing.T) *http.Request {
				return jsonRequest(http.MethodPut, "/tasks/t1", dto.TaskRequest{Title: "x", Photo: "REMOVE"})
			},
			wantKind: task.PhotoRemoved,
		},
		{
			name: "upload replaces",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, http.MethodPut, "/tasks/t1", `{"title":"x","photo":"remove"}`, []byte("new"))
			},
			wantKind: task.PhotoReplaced,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.service.On("EditTask", mock.Anything, testUser, "t1", mock.MatchedBy(func(d task.Draft) bool {
				return d.Title == "x" && d.Photo.Kind == tt.wantKind
			})).Return(task.New("t1", testUser, "x", 1), nil)

			rr := env.do(t, tt.request(t))

			assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			env.service.AssertExpectations(t)
		})
	}
}

func TestEditTaskUnknownPhotoAction(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, jsonRequest(http.MethodPut, "/tasks/t1", dto.TaskRequest{Title: "x", Photo: "rotate"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env.service.AssertNotCalled(t, "EditTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEditTaskPassesLocation(t *testing.T) {
	env := newTestEnv(t)
	env.service.On("EditTask", mock.Anything, testUser, "t1", mock.MatchedBy(func(d task.Draft) bool {
		return d.Location != nil && d.Location.Latitude == 1.5 && d.Location.Address == "Plaza"
	})).Return(task.New("t1", testUser, "x", 1), nil)

	rr := env.do(t, jsonRequest(http.MethodPut, "/tasks/t1", dto.TaskRequest{
		Title:    "x",
		Location: &dto.LocationRequest{Latitude: 1.5, Longitude: 2.5, Address: "Plaza"},
	}))

	assert.Equal(t, http.StatusOK, rr.Code)
	env.service.AssertExpectations(t)
}

func TestGetTask(t *testing.T) {
	env := newTestEnv(t)
	env.service.On("GetTask", mock.Anything, testUser, "t1").Return(sampleTask(), nil)
	env.service.On("GetTask", mock.Anything, testUser, "missing").Return(nil, service.NewNotFound("task", "missing"))

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/tasks/t1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Comprar leche", body["title"])
	assert.Equal(t, testUser, body["userEmail"])

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/tasks/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, service.CodeNotFound, decodeBody(t, rr)["error"])
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	env.service.On("DeleteTask", mock.Anything, testUser, "t1").Return(nil)

	rr := env.do(t, httptest.NewRequest(http.MethodDelete, "/tasks/t1", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	env.service.AssertExpectations(t)
}

func TestToggleTask(t *testing.T) {
	env := newTestEnv(t)
	toggled := task.New("t1", testUser, "x", 1)
	toggled.Completed = true
	env.service.On("ToggleTask", mock.Anything, testUser, "t1").Return(toggled, nil)

	rr := env.do(t, httptest.NewRequest(http.MethodPost, "/tasks/t1/toggle", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["completed"])
}

func TestReplaceTasks(t *testing.T) {
	t.Run("saved tasks are echoed", func(t *testing.T) {
		env := newTestEnv(t)
		env.service.On("ReplaceTasks", mock.Anything, testUser, mock.MatchedBy(func(tasks []*task.Task) bool {
			return len(tasks) == 1 && tasks[0].Title == "a"
		})).Return([]*task.Task{task.New("1", testUser, "a", 1)}, nil)

		req := httptest.NewRequest(http.MethodPut, "/tasks", strings.NewReader(`[{"id":"1","title":"a"}]`))
		req.Header.Set("Content-Type", "application/json")
		rr := env.do(t, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got []dto.TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("id collision is a conflict", func(t *testing.T) {
		env := newTestEnv(t)
		env.service.On("ReplaceTasks", mock.Anything, testUser, mock.Anything).
			Return(nil, fmt.Errorf("replacing tasks: %w", repo.WrapError("save_tasks", repo.ErrAlreadyExists)))

		rr := env.do(t, jsonRequest(http.MethodPut, "/tasks", []any{map[string]string{"id": "1", "title": "a"}}))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("empty array clears", func(t *testing.T) {
		env := newTestEnv(t)
		env.service.On("ReplaceTasks", mock.Anything, testUser, []*task.Task{}).Return([]*task.Task{}, nil)

		req := httptest.NewRequest(http.MethodPut, "/tasks", strings.NewReader(`[]`))
		req.Header.Set("Content-Type", "application/json")
		rr := env.do(t, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
		env.service.AssertExpectations(t)
	})

	t.Run("null body is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		req := httptest.NewRequest(http.MethodPut, "/tasks", strings.NewReader(`null`))
		req.Header.Set("Content-Type", "application/json")
		rr := env.do(t, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env.service.AssertNotCalled(t, "ReplaceTasks", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("json only", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, multipartRequest(t, http.MethodPut, "/tasks", `[]`, nil))
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})
}

func TestGetPhoto(t *testing.T) {
	env := newTestEnv(t)
	env.service.On("OpenPhoto", mock.Anything, testUser, "t1").Return(io.NopCloser(strings.NewReader("jpeg")), nil)
	env.service.On("OpenPhoto", mock.Anything, testUser, "t2").Return(nil, service.NewNotFound("photo", "t2"))

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/tasks/t1/photo", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg", rr.Body.String())

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/tasks/t2/photo", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.token = ""
			env.service.On("HealthCheck", mock.Anything).Return(tt.err)

			rr := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, decodeBody(t, rr)["status"])
		})
	}
}
