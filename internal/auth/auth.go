package auth

import (
	"context"
	"errors"
	"sync"

	"cashier-terminal/internal/gameapi"

	"github.com/rs/zerolog/log"
)

var ErrMissingIdentity = errors.New("missing_identity")

type Backend interface {
	Login(ctx context.Context, username, password string) (gameapi.LoginResult, error)
	Verify(ctx context.Context) (gameapi.User, error)
	Logout(ctx context.Context) error
	SetToken(token string)
}

type TokenStore interface {
	Token(ctx context.Context) string
	SaveToken(ctx context.Context, token string) error
}

type Credentials struct {
	Username string
	Password string
}

// Session is the authenticated cashier. A zero CashierID means signed out.
type Session struct {
	Token      string
	CashierID  string
	SessionID  string
	Username   string
	FullName   string
	DisplayURL string
}

func (s Session) Valid() bool { return s.Token != "" && s.CashierID != "" }

type Manager struct {
	backend Backend
	store   TokenStore
	creds   Credentials

	mu      sync.RWMutex
	current Session
}

func NewManager(backend Backend, store TokenStore, creds Credentials) *Manager {
	return &Manager{backend: backend, store: store, creds: creds}
}

// Bootstrap resumes the persisted token if the server still accepts it and
// otherwise signs in with the configured credentials.
func (m *Manager) Bootstrap(ctx context.Context) (Session, error) {
	if token := m.store.Token(ctx); token != "" {
		m.backend.SetToken(token)
		user, err := m.backend.Verify(ctx)
		if err == nil && user.ID != "" {
			log.Info().Str("cashier_id", user.ID.String()).Msg("session_resumed")
			return m.set(sessionFrom(token, user)), nil
		}
		log.Warn().Err(err).Msg("stored_token_rejected")
		m.backend.SetToken("")
		if errors.Is(err, gameapi.ErrUnauthorized) || errors.Is(err, gameapi.ErrForbidden) {
			if err := m.store.SaveToken(ctx, ""); err != nil {
				log.Warn().Err(err).Msg("token_clear_failed")
			}
		}
	}
	return m.Login(ctx)
}

func (m *Manager) Login(ctx context.Context) (Session, error) {
	if m.creds.Username == "" || m.creds.Password == "" {
		return Session{}, ErrMissingIdentity
	}
	res, err := m.backend.Login(ctx, m.creds.Username, m.creds.Password)
	if err != nil {
		return Session{}, err
	}
	if res.Token == "" || res.User.ID == "" {
		return Session{}, ErrMissingIdentity
	}
	m.backend.SetToken(res.Token)
	if err := m.store.SaveToken(ctx, res.Token); err != nil {
		log.Warn().Err(err).Msg("token_persist_failed")
	}
	log.Info().Str("cashier_id", res.User.ID.String()).Str("username", res.User.Username).Msg("cashier_logged_in")
	return m.set(sessionFrom(res.Token, res.User)), nil
}

// Logout always clears local state, even when the server call fails.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.backend.Logout(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("logout_request_failed")
	}
	m.backend.SetToken("")
	if serr := m.store.SaveToken(ctx, ""); serr != nil {
		log.Warn().Err(serr).Msg("token_clear_failed")
	}
	m.set(Session{})
	return err
}

func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) set(s Session) Session {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s
}

func sessionFrom(token string, u gameapi.User) Session {
	return Session{
		Token:      token,
		CashierID:  u.ID.String(),
		SessionID:  u.SessionID,
		Username:   u.Username,
		FullName:   u.FullName,
		DisplayURL: u.DisplayURL,
	}
}
