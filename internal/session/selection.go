package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

// Selection holds the two cross-cutting selection slots of one session.
// The selected kelas is mirrored into durable storage on every set; the
// selected santri lives in memory only. Setting one slot never clears the
// other, even when they no longer belong together; callers own that
// consistency.
type Selection struct {
	sessionID string
	storage   Storage
	logger    *zap.Logger

	mu     sync.RWMutex
	kelas  *models.Kelas
	santri *models.Santri
}

// NewSelection builds a selection container, seeding the kelas slot from
// durable storage exactly once. Later external changes to storage are not
// observed.
func NewSelection(ctx context.Context, sessionID string, storage Storage, logger *zap.Logger) *Selection {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Selection{sessionID: sessionID, storage: storage, logger: logger}

	if storage != nil {
		raw, err := storage.Get(ctx, sessionID, models.SessionKeySelectedKelas)
		switch {
		case err == nil:
			var kelas models.Kelas
			if err := json.Unmarshal(raw, &kelas); err != nil {
				logger.Warn("discarding unreadable selected kelas", zap.Error(err))
			} else {
				s.kelas = &kelas
			}
		case appErrors.Is(err, appErrors.ErrNotFound):
		default:
			logger.Warn("failed to seed selected kelas", zap.Error(err))
		}
	}
	return s
}

// Kelas returns the selected kelas, or nil.
func (s *Selection) Kelas() *models.Kelas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kelas
}

// SetKelas replaces the selected kelas and synchronises durable storage in
// the same operation.
func (s *Selection) SetKelas(ctx context.Context, kelas *models.Kelas) error {
	s.mu.Lock()
	s.kelas = kelas
	s.mu.Unlock()
	if s.storage == nil {
		return nil
	}
	if kelas == nil {
		return s.storage.Delete(ctx, s.sessionID, models.SessionKeySelectedKelas)
	}
	raw, err := json.Marshal(kelas)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode selected kelas")
	}
	return s.storage.Set(ctx, s.sessionID, models.SessionKeySelectedKelas, raw)
}

// ClearKelas empties the kelas slot and its durable mirror.
func (s *Selection) ClearKelas(ctx context.Context) error {
	return s.SetKelas(ctx, nil)
}

// Santri returns the selected santri, or nil.
func (s *Selection) Santri() *models.Santri {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.santri
}

// SetSantri replaces the selected santri. Ephemeral only.
func (s *Selection) SetSantri(santri *models.Santri) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.santri = santri
}

// ClearSantri empties the santri slot.
func (s *Selection) ClearSantri() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.santri = nil
}
