package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Auth проверяет Bearer-токен по bcrypt-хешу из конфигурации.
type Auth struct {
	hash []byte
	log  *slog.Logger

	mu       sync.RWMutex
	accepted string
}

func New(tokenHash string, log *slog.Logger) *Auth {
	return &Auth{
		hash: []byte(tokenHash),
		log:  log.With("component", "auth_middleware"),
	}
}

// Enabled сообщает, задан ли токен доступа.
func (a *Auth) Enabled() bool {
	return len(a.hash) > 0
}

// HashToken возвращает bcrypt-хеш для переменной API_TOKEN_HASH.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !a.Enabled() {
			next(ctx)
			return
		}

		token, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer ")
		if !ok || token == "" {
			a.log.Warn("missing bearer token", "path", ctx.URL().Path)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !a.valid(token) {
			a.log.Warn("invalid bearer token", "path", ctx.URL().Path)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(ctx)
	}
}

// valid кеширует последний принятый токен: bcrypt слишком медленный для каждого запроса.
func (a *Auth) valid(token string) bool {
	a.mu.RLock()
	cached := a.accepted
	a.mu.RUnlock()
	if cached != "" && subtle.ConstantTimeCompare([]byte(cached), []byte(token)) == 1 {
		return true
	}

	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(token)); err != nil {
		return false
	}

	a.mu.Lock()
	a.accepted = token
	a.mu.Unlock()
	return true
}
