package server

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-web/internal/config"
	"github.com/Tomlord1122/todo-web/internal/database"
	"github.com/Tomlord1122/todo-web/internal/service"
)

type Server struct {
	cfg         *config.Config
	taskService service.TaskService
	db          database.Service
	logger      *zap.Logger
	templates   map[string]*template.Template
}

func NewServer(cfg *config.Config, taskService service.TaskService, dbService database.Service, log *zap.Logger) (*http.Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	appServer := &Server{
		cfg:         cfg,
		taskService: taskService,
		db:          dbService,
		logger:      log,
		templates:   templates,
	}

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		ErrorLog:     zap.NewStdLog(log.Named("http")),
	}

	return server, nil
}
