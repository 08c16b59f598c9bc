package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-web/internal/domain"
	"github.com/Tomlord1122/todo-web/internal/form"
	"github.com/Tomlord1122/todo-web/internal/logger"
)

const (
	listPath = "/todo/"
	addPath  = "/add/"
)

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageHome, pageData{})
}

// todoListHandler lists tasks. A POST goes through the same create path as
// /add/ and redirects back here on success.
func (s *Server) todoListHandler(w http.ResponseWriter, r *http.Request) {
	f := form.Empty()
	if r.Method == http.MethodPost {
		var done bool
		if f, done = s.createTask(w, r); done {
			return
		}
	}

	tasks, err := s.taskService.ListTasks(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, pageTodoList, pageData{Action: listPath, Form: f, Tasks: tasks})
}

func (s *Server) addTaskHandler(w http.ResponseWriter, r *http.Request) {
	f := form.Empty()
	if r.Method == http.MethodPost {
		var done bool
		if f, done = s.createTask(w, r); done {
			return
		}
	}
	s.render(w, r, http.StatusOK, pageTodoForm, pageData{Action: addPath, Form: f})
}

// createTask validates the submitted form and stores the task. done reports
// that a response has already been written; otherwise the returned form
// carries the validation errors to re-render.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) (f form.TaskForm, done bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form submission", http.StatusBadRequest)
		return f, true
	}

	f = form.FromValues(r.PostForm)
	if !f.Valid() {
		return f, false
	}

	task, err := s.taskService.CreateTask(r.Context(), f.Cleaned)
	if err != nil {
		s.serverError(w, r, err)
		return f, true
	}

	logger.WithRequestID(r.Context(), s.logger).Debug("task created", zap.Uint("task_id", task.ID))
	http.Redirect(w, r, listPath, http.StatusFound)
	return f, true
}

// removeTaskHandler always redirects to the list, whether or not the task existed.
func (s *Server) removeTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		http.Redirect(w, r, listPath, http.StatusFound)
		return
	}

	if err := s.taskService.DeleteTask(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, listPath, http.StatusFound)
}

// updateTaskHandler sets completed from the checkbox: "on" means done, any
// other value or no value means not done.
func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form submission", http.StatusBadRequest)
		return
	}
	completed := r.PostForm.Get("completed") == "on"

	if _, err := s.taskService.SetCompleted(r.Context(), id, completed); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, listPath, http.StatusFound)
}

func taskID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
