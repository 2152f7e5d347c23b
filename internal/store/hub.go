package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
)

// Set groups the stores and selection of one browser session.
type Set struct {
	Selection *session.Selection
	Kelas     *KelasStore
	Aktivitas *AktivitasStore
	Santri    *SantriStore
	Auth      *AuthStore

	lastAccess time.Time
}

// Hub hands out session-scoped store sets, creating them on first use.
// Sets are shared between concurrent requests of the same session, which
// is what makes the documented last-write-wins behavior observable.
type Hub struct {
	mu      sync.Mutex
	client  *remote.Client
	storage session.Storage
	logger  *zap.Logger
	sets    map[string]*Set
}

// NewHub constructs a Hub.
func NewHub(client *remote.Client, storage session.Storage, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		client:  client,
		storage: storage,
		logger:  logger,
		sets:    make(map[string]*Set),
	}
}

// For returns the store set of the session, creating and seeding it when
// absent.
func (h *Hub) For(ctx context.Context, sessionID string) *Set {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.sets[sessionID]; ok {
		set.lastAccess = time.Now()
		return set
	}

	selection := session.NewSelection(ctx, sessionID, h.storage, h.logger)
	set := &Set{
		Selection:  selection,
		Kelas:      NewKelasStore(h.client, selection, h.logger),
		Aktivitas:  NewAktivitasStore(h.client, h.logger),
		Santri:     NewSantriStore(h.client, selection, h.logger),
		Auth:       NewAuthStore(ctx, h.client, sessionID, h.storage, h.logger),
		lastAccess: time.Now(),
	}
	h.sets[sessionID] = set
	return set
}

// Sweep drops in-memory sets idle longer than maxIdle. Durable session
// state is untouched; a swept session re-seeds from storage on its next
// request.
func (h *Hub) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for id, set := range h.sets {
		if set.lastAccess.Before(cutoff) {
			delete(h.sets, id)
			removed++
		}
	}
	return removed
}
