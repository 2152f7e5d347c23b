// Package store implements the session-scoped entity state containers.
// Each store wraps the upstream client for one entity, holds the fetched
// collection plus a loading/error status pair, and applies confirmed
// mutations to its in-memory state. Collections are shared within a
// session; concurrent lists are last-write-wins by design.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

type kelasClient interface {
	ListKelas(ctx context.Context, token string, page int) (*remote.KelasPage, error)
	GetKelas(ctx context.Context, token, slug string) (*models.Kelas, error)
	CreateKelas(ctx context.Context, token string, payload remote.KelasPayload) (*models.Kelas, error)
	UpdateKelas(ctx context.Context, token, slug string, payload remote.KelasPayload) (*models.Kelas, error)
	DeleteKelas(ctx context.Context, token, slug string) error
}

// KelasStore holds the caller's classes. The selected kelas lives in the
// session Selection so it reaches durable storage.
type KelasStore struct {
	mu        sync.RWMutex
	client    kelasClient
	selection *session.Selection
	logger    *zap.Logger

	items   []models.Kelas
	count   int
	loading bool
	errMsg  string
}

// NewKelasStore constructs a KelasStore bound to one session.
func NewKelasStore(client kelasClient, selection *session.Selection, logger *zap.Logger) *KelasStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KelasStore{client: client, selection: selection, logger: logger}
}

// Items returns a copy of the current collection in response order.
func (s *KelasStore) Items() []models.Kelas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Kelas, len(s.items))
	copy(out, s.items)
	return out
}

// Count returns the upstream total from the last successful list.
func (s *KelasStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Loading reports whether a list call is in flight.
func (s *KelasStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the recorded error message, empty when clear.
func (s *KelasStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// SetLoading flips the loading flag. Exposed for orchestrators bridging
// multi-step sequences.
func (s *KelasStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// SetError records an error message.
func (s *KelasStore) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// ClearError clears the recorded error.
func (s *KelasStore) ClearError() {
	s.SetError("")
}

// Selected returns the selected kelas, or nil.
func (s *KelasStore) Selected() *models.Kelas {
	if s.selection == nil {
		return nil
	}
	return s.selection.Kelas()
}

// Select replaces the selected kelas, mirroring it into durable storage.
func (s *KelasStore) Select(ctx context.Context, kelas *models.Kelas) error {
	if s.selection == nil {
		return nil
	}
	return s.selection.SetKelas(ctx, kelas)
}

// List replaces the collection with one upstream page. On failure the
// previous collection stays untouched and the error is both recorded and
// returned; a 401 surfaces as ErrAuthRequired for the caller to prompt
// re-login.
func (s *KelasStore) List(ctx context.Context, token string, page int) ([]models.Kelas, error) {
	s.SetLoading(true)
	defer s.SetLoading(false)

	result, err := s.client.ListKelas(ctx, token, page)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}

	s.mu.Lock()
	s.items = result.Results
	s.count = result.Count
	s.errMsg = ""
	s.mu.Unlock()
	return s.Items(), nil
}

// GetBySlug resolves a class by slug and makes it the selection. A 404
// keeps its distinct not-found message.
func (s *KelasStore) GetBySlug(ctx context.Context, token, slug string) (*models.Kelas, error) {
	s.SetLoading(true)
	defer s.SetLoading(false)

	kelas, err := s.client.GetKelas(ctx, token, slug)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}
	if err := s.Select(ctx, kelas); err != nil {
		s.logger.Warn("failed to persist selected kelas", zap.Error(err))
	}
	s.ClearError()
	return kelas, nil
}

// Add creates a class upstream and appends it once confirmed. The entity
// never appears before the upstream acknowledges it; failures propagate so
// the caller's form can stay open.
func (s *KelasStore) Add(ctx context.Context, token string, payload remote.KelasPayload) (*models.Kelas, error) {
	created, err := s.client.CreateKelas(ctx, token, payload)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}
	s.mu.Lock()
	s.items = append(s.items, *created)
	s.errMsg = ""
	s.mu.Unlock()
	return created, nil
}

// Edit updates a class upstream and replaces the matching entity in place.
// When the edited class is the selection, the selection and its durable
// mirror refresh in the same operation.
func (s *KelasStore) Edit(ctx context.Context, token, slug string, payload remote.KelasPayload) (*models.Kelas, error) {
	updated, err := s.client.UpdateKelas(ctx, token, slug, payload)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == updated.ID {
			s.items[i] = *updated
			break
		}
	}
	s.errMsg = ""
	s.mu.Unlock()

	if selected := s.Selected(); selected != nil && selected.ID == updated.ID {
		if err := s.Select(ctx, updated); err != nil {
			s.logger.Warn("failed to refresh selected kelas", zap.Error(err))
		}
	}
	return updated, nil
}

// Delete removes a class upstream and from the collection, clearing the
// selection when it pointed at the deleted class.
func (s *KelasStore) Delete(ctx context.Context, token, slug string) error {
	if err := s.client.DeleteKelas(ctx, token, slug); err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return err
	}

	s.mu.Lock()
	filtered := s.items[:0]
	for _, item := range s.items {
		if item.Slug != slug {
			filtered = append(filtered, item)
		}
	}
	s.items = filtered
	s.errMsg = ""
	s.mu.Unlock()

	if selected := s.Selected(); selected != nil && selected.Slug == slug {
		if err := s.Select(ctx, nil); err != nil {
			s.logger.Warn("failed to clear selected kelas", zap.Error(err))
		}
	}
	return nil
}
