package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

type aktivitasClient interface {
	ListAktivitas(ctx context.Context, token, slug string) ([]models.Aktivitas, error)
	CreateAktivitas(ctx context.Context, token string, payload remote.AktivitasPayload) (*models.Aktivitas, error)
	DeleteAktivitas(ctx context.Context, token string, id int64) error
}

// AktivitasStore holds the activities of the currently viewed class.
type AktivitasStore struct {
	mu     sync.RWMutex
	client aktivitasClient
	logger *zap.Logger

	items    []models.Aktivitas
	selected *models.Aktivitas
	loading  bool
	errMsg   string
}

// NewAktivitasStore constructs an AktivitasStore.
func NewAktivitasStore(client aktivitasClient, logger *zap.Logger) *AktivitasStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AktivitasStore{client: client, logger: logger}
}

// Items returns a copy of the collection in response order.
func (s *AktivitasStore) Items() []models.Aktivitas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Aktivitas, len(s.items))
	copy(out, s.items)
	return out
}

// Loading reports whether a list call is in flight.
func (s *AktivitasStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the recorded error message, empty when clear.
func (s *AktivitasStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Selected returns the selected activity, or nil.
func (s *AktivitasStore) Selected() *models.Aktivitas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Select replaces the selected activity.
func (s *AktivitasStore) Select(a *models.Aktivitas) {
	s.mu.Lock()
	s.selected = a
	s.mu.Unlock()
}

// SetLoading flips the loading flag.
func (s *AktivitasStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// SetError records an error message.
func (s *AktivitasStore) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// ClearError clears the recorded error.
func (s *AktivitasStore) ClearError() {
	s.SetError("")
}

// List replaces the collection with the activities of one class. Failures
// leave the previous collection untouched.
func (s *AktivitasStore) List(ctx context.Context, token, slug string) ([]models.Aktivitas, error) {
	s.SetLoading(true)
	defer s.SetLoading(false)

	items, err := s.client.ListAktivitas(ctx, token, slug)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}

	s.mu.Lock()
	s.items = items
	s.errMsg = ""
	s.mu.Unlock()
	return s.Items(), nil
}

// Add logs an activity upstream and appends it once confirmed.
func (s *AktivitasStore) Add(ctx context.Context, token string, payload remote.AktivitasPayload) (*models.Aktivitas, error) {
	created, err := s.client.CreateAktivitas(ctx, token, payload)
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

// Delete removes an activity upstream and from the collection, clearing
// the selection when it pointed at the removed activity.
func (s *AktivitasStore) Delete(ctx context.Context, token string, id int64) error {
	if err := s.client.DeleteAktivitas(ctx, token, id); err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return err
	}

	s.mu.Lock()
	filtered := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	s.items = filtered
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}
