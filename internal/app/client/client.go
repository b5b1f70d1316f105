package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"gophtasks/internal/app/client/config"
	"gophtasks/internal/domain/sync"
	"gophtasks/internal/domain/task"
	"gophtasks/internal/infrastructure/storage/memory"
	"gophtasks/internal/infrastructure/storage/sqlite"
)

// debounce — пауза после последнего локального изменения перед автосинхронизацией.
const debounce = 2 * time.Second

// Remote — сервер задач вместе с проверкой доступности и авторизацией.
type Remote interface {
	sync.Remote
	HealthCheck(ctx context.Context) error
	SetToken(token string)
}

type App struct {
	config   *config.Config
	log      *slog.Logger
	store    task.Store
	tasks    *task.LocalService
	sync     sync.Servicer
	remote   Remote
	guard    syncGuard
	debounce time.Duration
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	// Инициализируем локальное хранилище (используем SQLite)
	var store task.Store
	sqliteStorage, err := sqlite.New(cfg.DataPath, log)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		store = memory.New()
	} else {
		store = sqliteStorage
	}

	app, err := newApp(ctx, cfg, log, store, NewHTTPClient(cfg, log))
	if err != nil {
		store.Close()
		return nil, err
	}

	// Загружаем токен если он есть
	if token, err := app.GetToken(); err == nil && token != "" {
		app.remote.SetToken(token)
		log.Debug("Токен загружен из файла")
	}

	return app, nil
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, store task.Store, remote Remote) (*App, error) {
	tasks, err := task.NewLocalService(ctx, store, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации задач: %w", err)
	}

	return &App{
		config:   cfg,
		log:      log,
		store:    store,
		tasks:    tasks,
		sync:     sync.NewService(store, remote, log, sync.WithPullPolicy(sync.PullPolicy(cfg.PullPolicy))),
		remote:   remote,
		debounce: debounce,
	}, nil
}

// Tasks возвращает операции над локальными задачами.
func (a *App) Tasks() *task.LocalService {
	return a.tasks
}

// Run запускает фоновую синхронизацию по таймеру и после локальных изменений.
// Возвращается после отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("Клиент запущен",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"interval", a.config.Interval(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.syncOnTick(ctx)
	})
	g.Go(func() error {
		return a.syncOnChange(ctx)
	})

	err := g.Wait()
	a.log.Info("Синхронизация остановлена")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) syncOnTick(ctx context.Context) error {
	ticker := time.NewTicker(a.config.Interval())
	defer ticker.Stop()

	a.autoSync(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.autoSync(ctx)
		}
	}
}

// syncOnChange запускает синхронизацию, когда локальные изменения затихли на debounce.
func (a *App) syncOnChange(ctx context.Context) error {
	changes, unsubscribe := a.store.Subscribe()
	defer unsubscribe()

	// Первая проверка подхватывает изменения, сделанные до подписки.
	timer := time.NewTimer(a.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			timer.Reset(a.debounce)
		case <-timer.C:
			if a.hasLocalChanges(ctx) {
				a.autoSync(ctx)
			}
		}
	}
}

// hasLocalChanges не учитывает sync_error: такие задачи ждут таймера или ручного повтора.
func (a *App) hasLocalChanges(ctx context.Context) bool {
	counts, err := a.tasks.PendingCounts(ctx)
	if err != nil {
		a.log.Error("Ошибка подсчёта изменений", "error", err)
		return false
	}
	return counts.PendingCreation+counts.PendingUpdate+counts.PendingDelete > 0
}

func (a *App) autoSync(ctx context.Context) {
	_, err := a.Sync(ctx, nil)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		a.log.Debug("Синхронизация уже выполняется, пропускаем")
	case ctx.Err() != nil:
	default:
		a.log.Error("Ошибка синхронизации", "error", err)
	}
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return a.remote.HealthCheck(ctx)
}

// GetToken возвращает сохраненный токен
func (a *App) GetToken() (string, error) {
	tokenBytes, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("токен не найден. Выполните вход: gophtasks login")
		}
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}
	return strings.TrimSpace(string(tokenBytes)), nil
}

// SaveToken сохраняет токен доступа к серверу
func (a *App) SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("токен не может быть пустым")
	}
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}

	a.remote.SetToken(token)
	return nil
}

// ClearToken удаляет токен
func (a *App) ClearToken() error {
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	a.remote.SetToken("")
	return nil
}

func (a *App) Close() error {
	return a.store.Close()
}
