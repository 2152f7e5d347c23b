package store

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

type authClient interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
}

// AuthStore tracks the authenticated identity of one session and mirrors
// the auth blob plus token pair into durable session storage.
type AuthStore struct {
	mu        sync.RWMutex
	client    authClient
	sessionID string
	storage   session.Storage
	logger    *zap.Logger

	state   models.AuthState
	loading bool
	errMsg  string
}

// NewAuthStore constructs an AuthStore, seeding the auth blob from durable
// storage once.
func NewAuthStore(ctx context.Context, client authClient, sessionID string, storage session.Storage, logger *zap.Logger) *AuthStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthStore{client: client, sessionID: sessionID, storage: storage, logger: logger}

	if storage != nil {
		if raw, err := storage.Get(ctx, sessionID, models.SessionKeyAuthState); err == nil {
			var state models.AuthState
			if err := json.Unmarshal(raw, &state); err != nil {
				logger.Warn("discarding unreadable auth state", zap.Error(err))
			} else {
				s.state = state
			}
		}
	}
	return s
}

// State returns the current auth blob.
func (s *AuthStore) State() models.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether an auth call is in flight.
func (s *AuthStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the recorded error message, empty when clear.
func (s *AuthStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// SetError records an error message.
func (s *AuthStore) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// ClearError clears the recorded error.
func (s *AuthStore) ClearError() {
	s.SetError("")
}

func (s *AuthStore) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Login authenticates against the upstream and persists the resulting
// identity and tokens.
func (s *AuthStore) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	result, err := s.client.Login(ctx, req)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}
	s.apply(ctx, result.User, result.Tokens)
	return result, nil
}

// Register creates an account upstream and persists the initial identity.
func (s *AuthStore) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	result, err := s.client.Register(ctx, req)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}
	s.apply(ctx, result.User, result.Tokens)
	return result, nil
}

// Refresh exchanges the refresh token for a new pair, keeping the stored
// identity.
func (s *AuthStore) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	tokens, err := s.client.Refresh(ctx, refreshToken)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}

	s.mu.Lock()
	user := s.state.User
	s.mu.Unlock()
	if user != nil {
		s.apply(ctx, *user, *tokens)
	} else {
		s.persistTokens(ctx, *tokens)
	}
	return tokens, nil
}

// Logout drops the in-memory identity and its durable mirrors.
func (s *AuthStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state = models.AuthState{}
	s.errMsg = ""
	s.mu.Unlock()

	if s.storage == nil {
		return
	}
	for _, key := range []string{models.SessionKeyAuthState, models.SessionKeyAccessToken, models.SessionKeyRefreshToken} {
		if err := s.storage.Delete(ctx, s.sessionID, key); err != nil {
			s.logger.Warn("failed to clear session key", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *AuthStore) apply(ctx context.Context, user models.User, tokens models.AuthTokens) {
	s.mu.Lock()
	s.state = models.AuthState{User: &user, Token: tokens.AccessToken, IsAuth: true}
	s.errMsg = ""
	state := s.state
	s.mu.Unlock()

	if s.storage == nil {
		return
	}
	if raw, err := json.Marshal(state); err == nil {
		if err := s.storage.Set(ctx, s.sessionID, models.SessionKeyAuthState, raw); err != nil {
			s.logger.Warn("failed to persist auth state", zap.Error(err))
		}
	}
	s.persistTokens(ctx, tokens)
}

func (s *AuthStore) persistTokens(ctx context.Context, tokens models.AuthTokens) {
	if s.storage == nil {
		return
	}
	pairs := map[string]string{
		models.SessionKeyAccessToken:  tokens.AccessToken,
		models.SessionKeyRefreshToken: tokens.RefreshToken,
	}
	for key, value := range pairs {
		if err := s.storage.Set(ctx, s.sessionID, key, []byte(value)); err != nil {
			s.logger.Warn("failed to persist token", zap.String("key", key), zap.Error(err))
		}
	}
}
