// GET    /api/v1/health      # Состояние сервиса и базы (публичный)
// GET    /api/v1/tasks       # Список задач, ?since= для дельты (auth)
// POST   /api/v1/tasks       # Создать задачу (auth)
// PATCH  /api/v1/tasks/{id}  # Частично обновить задачу (auth)
// DELETE /api/v1/tasks/{id}  # Удалить задачу (auth)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"gophtasks/internal/app/server/api/http/health"
	"gophtasks/internal/app/server/api/http/middleware"
	"gophtasks/internal/app/server/api/http/middleware/auth"
	"gophtasks/internal/app/server/api/http/middleware/logger"
	taskAPI "gophtasks/internal/app/server/api/http/task"
	"gophtasks/internal/app/server/config"
	"gophtasks/internal/domain/task"
	"gophtasks/internal/infrastructure/storage/postgres"
)

const (
	title   = "GophTasks API"
	version = "1.0.0"
)

type Handlers struct {
	Health *health.Handler
	Task   *taskAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *chi.Mux {
	repo := postgres.NewTaskRepository(storage.Pool(), log)
	return newRouter(repo, storage, cfg.Auth.TokenHash, log)
}

func newRouter(repo task.Repository, db health.Pinger, tokenHash string, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig(title, version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(API, repo, db, tokenHash, log)
	h.Health.SetupRoutes(API)
	h.Task.SetupRoutes(API)

	return mux
}

func handlers(api huma.API, repo task.Repository, db health.Pinger, tokenHash string, log *slog.Logger) *Handlers {
	authMW := auth.New(tokenHash, log)
	if !authMW.Enabled() {
		log.Warn("API_TOKEN_HASH is empty, task endpoints are not protected")
	}
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer(loggerMW.Middleware())

	healthHandler := health.NewHandler(db, log, middlewares.GetAllAndClear())

	taskService := task.NewService(repo, log)
	middlewares.Add(authMW.Middleware(api))
	taskHandler := taskAPI.NewHandler(taskService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Task:   taskHandler,
	}
}
