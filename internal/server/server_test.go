package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-web/internal/config"
	"github.com/Tomlord1122/todo-web/internal/database"
	"github.com/Tomlord1122/todo-web/internal/database/dbtest"
	"github.com/Tomlord1122/todo-web/internal/domain"
	"github.com/Tomlord1122/todo-web/internal/repository"
	"github.com/Tomlord1122/todo-web/internal/service"
)

type testApp struct {
	handler http.Handler
	tasks   service.TaskService
	db      database.Service
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Port:           8080,
			AllowedOrigins: []string{"https://*", "http://*"},
		},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := dbtest.New(t)
	tasks := service.NewTaskService(repository.NewGormTaskRepository(db.GetDB()))
	srv, err := NewServer(testConfig(), tasks, db, zap.NewNop())
	require.NoError(t, err)

	return &testApp{handler: srv.Handler, tasks: tasks, db: db}
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) post(path string, data url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) list(t *testing.T) []domain.Task {
	t.Helper()
	tasks, err := a.tasks.ListTasks(context.Background())
	require.NoError(t, err)
	return tasks
}

func assertRedirectsToList(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/todo/", w.Header().Get("Location"))
}

func taskPath(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10) + "/"
}

func TestHome(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `href="/todo/"`)
}

func TestAddTaskCreatesAndRedirects(t *testing.T) {
	app := newTestApp(t)

	w := app.post("/add/", url.Values{"task": {"Test task"}})
	assertRedirectsToList(t, w)

	tasks := app.list(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Test task", tasks[0].Task)
	assert.False(t, tasks[0].Completed)
	assert.False(t, tasks[0].CreatedAt.IsZero())
}

func TestAddTaskGetRendersEmptyForm(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/add/")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `name="task"`)
	assert.Contains(t, body, `action="/add/"`)
	assert.NotContains(t, body, "errorlist")
}

func TestAddTaskRejectsBlank(t *testing.T) {
	app := newTestApp(t)

	for _, raw := range []string{"", "   "} {
		w := app.post("/add/", url.Values{"task": {raw}})
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "This field is required.")
		assert.Contains(t, body, `value="`+raw+`"`)
	}

	w := app.post("/add/", url.Values{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	assert.Empty(t, app.list(t))
}

func TestTodoListShowsTasks(t *testing.T) {
	app := newTestApp(t)
	assertRedirectsToList(t, app.post("/add/", url.Values{"task": {"Test task"}}))

	w := app.get("/todo/")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Test task")
	assert.Contains(t, body, `action="/todo/"`)
	assert.NotContains(t, body, "Nothing to do yet.")
}

func TestTodoListEmpty(t *testing.T) {
	w := newTestApp(t).get("/todo/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nothing to do yet.")
}

func TestTodoListEscapesDescriptions(t *testing.T) {
	app := newTestApp(t)
	app.post("/add/", url.Values{"task": {"<script>alert(1)</script>"}})

	body := app.get("/todo/").Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestTodoListPostCreates(t *testing.T) {
	app := newTestApp(t)

	w := app.post("/todo/", url.Values{"task": {"Buy milk"}})
	assertRedirectsToList(t, w)

	tasks := app.list(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Task)
}

func TestTodoListPostInvalidRendersList(t *testing.T) {
	app := newTestApp(t)
	app.post("/add/", url.Values{"task": {"Existing"}})

	w := app.post("/todo/", url.Values{"task": {"  "}})
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "Existing")
	assert.Len(t, app.list(t), 1)
}

func TestRemoveTask(t *testing.T) {
	app := newTestApp(t)
	app.post("/add/", url.Values{"task": {"Test task"}})
	app.post("/add/", url.Values{"task": {"Other task"}})
	tasks := app.list(t)
	require.Len(t, tasks, 2)

	w := app.post(taskPath("/remove_todo_item/", tasks[0].ID), nil)
	assertRedirectsToList(t, w)

	remaining := app.list(t)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Other task", remaining[0].Task)
}

func TestRemoveMissingTaskIsNoop(t *testing.T) {
	app := newTestApp(t)
	app.post("/add/", url.Values{"task": {"Test task"}})

	w := app.post("/remove_todo_item/9999/", nil)
	assertRedirectsToList(t, w)
	assert.Len(t, app.list(t), 1)
}

func TestUpdateTaskTogglesCompleted(t *testing.T) {
	app := newTestApp(t)
	app.post("/add/", url.Values{"task": {"Buy milk"}})
	task := app.list(t)[0]
	path := taskPath("/update_todo_item/", task.ID)

	assertRedirectsToList(t, app.post(path, url.Values{"completed": {"on"}}))
	fetched, err := app.tasks.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Completed)
	assert.True(t, task.CreatedAt.Equal(fetched.CreatedAt))

	assertRedirectsToList(t, app.post(path, url.Values{}))
	fetched, err = app.tasks.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Completed)

	assertRedirectsToList(t, app.post(path, url.Values{"completed": {"yes"}}))
	fetched, err = app.tasks.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Completed)
}

func TestUpdateMissingTaskIsNotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.post("/update_todo_item/9999/", url.Values{"completed": {"on"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

func TestNonNumericIDDoesNotRoute(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusNotFound, app.post("/update_todo_item/abc/", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.post("/remove_todo_item/abc/", nil).Code)
}

func TestMutatingRoutesRequirePost(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusMethodNotAllowed, app.get("/remove_todo_item/1/").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, app.get("/update_todo_item/1/").Code)
}

func TestExampleScenario(t *testing.T) {
	app := newTestApp(t)

	assertRedirectsToList(t, app.post("/add/", url.Values{"task": {"Buy milk"}}))
	tasks := app.list(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Task)
	assert.False(t, tasks[0].Completed)

	w := app.get("/todo/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Buy milk")

	w = app.post(taskPath("/update_todo_item/", tasks[0].ID), url.Values{"completed": {"on"}})
	assertRedirectsToList(t, w)

	fetched, err := app.tasks.GetTask(context.Background(), tasks[0].ID)
	require.NoError(t, err)
	assert.True(t, fetched.Completed)
	assert.Contains(t, app.get("/todo/").Body.String(), "checked")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var stats map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "up", stats["status"])

	require.NoError(t, app.db.Close())
	assert.Equal(t, http.StatusServiceUnavailable, app.get("/health").Code)
}

func TestStaticAssets(t *testing.T) {
	w := newTestApp(t).get("/static/style.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".errorlist")
}

func TestRequestIDHeader(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given-id")
	w = httptest.NewRecorder()
	app.handler.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Header().Get("X-Request-ID"))
}

type failingTasks struct {
	service.TaskService
}

func (failingTasks) ListTasks(context.Context) ([]domain.Task, error) {
	return nil, domain.WrapError(domain.ErrCodeInternal, "failed to list tasks", errors.New("db gone"))
}

func (failingTasks) CreateTask(context.Context, string) (*domain.Task, error) {
	return nil, domain.WrapError(domain.ErrCodeInternal, "failed to create task", errors.New("db gone"))
}

func TestPersistenceErrorsAreServerErrors(t *testing.T) {
	srv, err := NewServer(testConfig(), failingTasks{}, dbtest.New(t), zap.NewNop())
	require.NoError(t, err)
	app := &testApp{handler: srv.Handler}

	assert.Equal(t, http.StatusInternalServerError, app.get("/todo/").Code)
	assert.Equal(t, http.StatusInternalServerError, app.post("/add/", url.Values{"task": {"x"}}).Code)
}
