package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"product-catalog/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Manager ties a Store to the session cookie.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
	logger     zerolog.Logger
}

// NewManager creates a session manager.
func NewManager(store Store, cfg config.SessionConfig, logger zerolog.Logger) *Manager {
	return &Manager{
		store:      store,
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		logger:     logger.With().Str("component", "session").Logger(),
	}
}

// NewRedisClient creates a Redis client from configuration and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Flash stores flash for the next request, issuing a session cookie when the client has none.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	id := m.sessionID(r)
	if id == "" {
		id = uuid.NewString()
	}

	if err := m.store.Save(r.Context(), id, flash, m.ttl); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Consume returns the pending flash for the request's session and clears it.
// A missing cookie or store failure yields an empty Flash.
func (m *Manager) Consume(r *http.Request) Flash {
	id := m.sessionID(r)
	if id == "" {
		return Flash{}
	}

	flash, err := m.store.Take(r.Context(), id)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to read flash")
		return Flash{}
	}
	if flash == nil {
		return Flash{}
	}
	return *flash
}

// Ping checks the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *Manager) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}
