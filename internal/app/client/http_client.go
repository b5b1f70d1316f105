package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/exp/slog"

	"gophtasks/internal/app/client/config"
	"gophtasks/internal/domain/sync"
	"gophtasks/internal/domain/task"
)

const tasksPath = "/api/v1/tasks"

// httpClient — REST-клиент сервера задач. Реализует sync.Remote.
type httpClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	log       *slog.Logger
	baseURL   string
	userAgent string

	mu    gosync.RWMutex
	token string
}

var _ sync.Remote = (*httpClient)(nil)

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	log = log.With("component", "http_client")

	client := &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "task-server",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.BreakerFails
		},
		IsSuccessful: isServerHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &httpClient{
		client:    client,
		breaker:   breaker,
		log:       log,
		baseURL:   cfg.BaseURL(),
		userAgent: "GophTasks-Client/1.0",
	}
}

// isServerHealthy не считает отказом ответы 4xx и отмену запроса.
func isServerHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var remoteErr *sync.RemoteError
	return errors.As(err, &remoteErr) && remoteErr.Rejected()
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func (h *httpClient) bearer() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	if _, err := h.do(ctx, http.MethodGet, "/api/v1/health", nil); err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	return nil
}

func (h *httpClient) Fetch(ctx context.Context, since *time.Time) ([]task.Remote, error) {
	path := tasksPath
	if since != nil {
		path += "?" + url.Values{"since": {since.UTC().Format(time.RFC3339Nano)}}.Encode()
	}

	body, err := h.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Tasks []task.Remote `json:"tasks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	return resp.Tasks, nil
}

func (h *httpClient) Insert(ctx context.Context, p task.Payload) (int64, error) {
	body, err := h.do(ctx, http.MethodPost, tasksPath, p)
	if err != nil {
		return 0, err
	}

	var resp task.CreateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	if resp.ID <= 0 {
		return 0, fmt.Errorf("сервер вернул некорректный id: %d", resp.ID)
	}
	return resp.ID, nil
}

func (h *httpClient) Update(ctx context.Context, id int64, p task.Payload) error {
	_, err := h.do(ctx, http.MethodPatch, taskPath(id), task.UpdateRequestFrom(p))
	return err
}

func (h *httpClient) Delete(ctx context.Context, id int64) error {
	_, err := h.do(ctx, http.MethodDelete, taskPath(id), nil)
	return err
}

func taskPath(id int64) string {
	return tasksPath + "/" + strconv.FormatInt(id, 10)
}

// do выполняет запрос через circuit breaker и возвращает тело успешного ответа.
func (h *httpClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	body, err := h.breaker.Execute(func() ([]byte, error) {
		resp, err := h.doRequest(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}
		return h.parseResponse(resp)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("сервер временно недоступен: %w", err)
	}
	return body, err
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := h.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
		"request_id", requestID,
	)

	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

// errorBody покрывает ответ об ошибке huma и простой {"error": "..."}.
type errorBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Error  string `json:"error"`
	Errors []struct {
		Message  string `json:"message"`
		Location string `json:"location"`
	} `json:"errors"`
}

func (e errorBody) message() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = e.Title
	}
	if len(e.Errors) > 0 {
		first := e.Errors[0]
		detail := first.Message
		if first.Location != "" {
			detail = first.Location + ": " + detail
		}
		if msg == "" {
			return detail
		}
		return msg + ": " + detail
	}
	return msg
}

func (h *httpClient) parseResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		remoteErr := &sync.RemoteError{Status: resp.StatusCode}
		var errResp errorBody
		if err := json.Unmarshal(body, &errResp); err == nil {
			remoteErr.Message = errResp.message()
		}
		return nil, remoteErr
	}

	return body, nil
}
