package store

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

type santriClient interface {
	ListSantri(ctx context.Context, token string, kelasID int64) ([]models.Santri, error)
	CreateSantri(ctx context.Context, token string, payload remote.SantriPayload) (*models.Santri, error)
	DeleteSantri(ctx context.Context, token string, id int64) error
	ListKartu(ctx context.Context, token string, santriID int64) ([]models.Kartu, error)
	CreateKartu(ctx context.Context, token string, payload remote.KartuPayload) (*models.Kartu, error)
	DeleteKartu(ctx context.Context, token string, id int64) error
}

// SantriStore holds the students of the currently viewed class together
// with their progress cards. Cards for all fetched students live commingled
// in one collection; reads filter by santri ID instead of maintaining
// per-student copies.
type SantriStore struct {
	mu        sync.RWMutex
	client    santriClient
	selection *session.Selection
	logger    *zap.Logger

	santri  []models.Santri
	kartu   []models.Kartu
	loading bool
	errMsg  string
}

// NewSantriStore constructs a SantriStore bound to one session.
func NewSantriStore(client santriClient, selection *session.Selection, logger *zap.Logger) *SantriStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SantriStore{client: client, selection: selection, logger: logger}
}

// Santri returns a copy of the student collection in response order.
func (s *SantriStore) Santri() []models.Santri {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Santri, len(s.santri))
	copy(out, s.santri)
	return out
}

// Kartu returns a copy of the full commingled card collection.
func (s *SantriStore) Kartu() []models.Kartu {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Kartu, len(s.kartu))
	copy(out, s.kartu)
	return out
}

// CardsFor returns the cards belonging to one student, preserving the
// collection's current order. This is a derived view over the commingled
// collection, never a separately maintained copy.
func (s *SantriStore) CardsFor(santriID int64) []models.Kartu {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Kartu
	for _, card := range s.kartu {
		if card.IDSantri == santriID {
			out = append(out, card)
		}
	}
	return out
}

// LatestCardFor returns the newest card of one student, or nil.
func (s *SantriStore) LatestCardFor(santriID int64) *models.Kartu {
	cards := s.CardsFor(santriID)
	if len(cards) == 0 {
		return nil
	}
	latest := cards[0]
	for _, card := range cards[1:] {
		if card.Tanggal.After(latest.Tanggal) {
			latest = card
		}
	}
	return &latest
}

// Loading reports whether a list call is in flight.
func (s *SantriStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the recorded error message, empty when clear.
func (s *SantriStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// SetLoading flips the loading flag.
func (s *SantriStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// SetError records an error message.
func (s *SantriStore) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// ClearError clears the recorded error.
func (s *SantriStore) ClearError() {
	s.SetError("")
}

// Selected returns the selected santri, or nil.
func (s *SantriStore) Selected() *models.Santri {
	if s.selection == nil {
		return nil
	}
	return s.selection.Santri()
}

// Select replaces the selected santri. The slot is ephemeral; nothing is
// persisted.
func (s *SantriStore) Select(santri *models.Santri) {
	if s.selection != nil {
		s.selection.SetSantri(santri)
	}
}

// ListSantri replaces the student collection with one class's roster.
// Failures leave the previous collection untouched.
func (s *SantriStore) ListSantri(ctx context.Context, token string, kelasID int64) ([]models.Santri, error) {
	s.SetLoading(true)
	defer s.SetLoading(false)

	items, err := s.client.ListSantri(ctx, token, kelasID)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}

	s.mu.Lock()
	s.santri = items
	s.errMsg = ""
	s.mu.Unlock()
	return s.Santri(), nil
}

// AddSantri enrols a student upstream and appends once confirmed.
func (s *SantriStore) AddSantri(ctx context.Context, token string, payload remote.SantriPayload) (*models.Santri, error) {
	created, err := s.client.CreateSantri(ctx, token, payload)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}
	s.mu.Lock()
	s.santri = append(s.santri, *created)
	s.errMsg = ""
	s.mu.Unlock()
	return created, nil
}

// DeleteSantri removes a student upstream, drops them and their cards from
// the collections, and clears the santri selection when it pointed at the
// removed student. Deleting any other student leaves the selection alone.
func (s *SantriStore) DeleteSantri(ctx context.Context, token string, id int64) error {
	if err := s.client.DeleteSantri(ctx, token, id); err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return err
	}

	s.mu.Lock()
	santri := s.santri[:0]
	for _, item := range s.santri {
		if item.ID != id {
			santri = append(santri, item)
		}
	}
	s.santri = santri

	kartu := s.kartu[:0]
	for _, card := range s.kartu {
		if card.IDSantri != id {
			kartu = append(kartu, card)
		}
	}
	s.kartu = kartu
	s.errMsg = ""
	s.mu.Unlock()

	if selected := s.Selected(); selected != nil && selected.ID == id {
		s.Select(nil)
	}
	return nil
}

// ListKartu fetches all cards of one student and merges them into the
// commingled collection, replacing that student's previous cards. The
// merged collection is stored newest first.
func (s *SantriStore) ListKartu(ctx context.Context, token string, santriID int64) ([]models.Kartu, error) {
	s.SetLoading(true)
	defer s.SetLoading(false)

	cards, err := s.client.ListKartu(ctx, token, santriID)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}

	s.mu.Lock()
	merged := make([]models.Kartu, 0, len(s.kartu)+len(cards))
	for _, card := range s.kartu {
		if card.IDSantri != santriID {
			merged = append(merged, card)
		}
	}
	merged = append(merged, cards...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Tanggal.After(merged[j].Tanggal)
	})
	s.kartu = merged
	s.errMsg = ""
	s.mu.Unlock()
	return s.CardsFor(santriID), nil
}

// AddKartu records a card upstream and appends once confirmed.
func (s *SantriStore) AddKartu(ctx context.Context, token string, payload remote.KartuPayload) (*models.Kartu, error) {
	created, err := s.client.CreateKartu(ctx, token, payload)
	if err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return nil, err
	}
	s.mu.Lock()
	s.kartu = append(s.kartu, *created)
	s.errMsg = ""
	s.mu.Unlock()
	return created, nil
}

// DeleteKartu removes a card upstream and from the collection.
func (s *SantriStore) DeleteKartu(ctx context.Context, token string, id int64) error {
	if err := s.client.DeleteKartu(ctx, token, id); err != nil {
		s.SetError(appErrors.FromError(err).Message)
		return err
	}
	s.mu.Lock()
	filtered := s.kartu[:0]
	for _, card := range s.kartu {
		if card.ID != id {
			filtered = append(filtered, card)
		}
	}
	s.kartu = filtered
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

// SortKartuByDate re-sorts the in-memory card collection without a network
// call. The sort is stable and spans the whole commingled collection, so
// per-santri filtering is unaffected.
func (s *SantriStore) SortKartuByDate(order models.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.kartu, func(i, j int) bool {
		if order == models.SortAsc {
			return s.kartu[i].Tanggal.Before(s.kartu[j].Tanggal)
		}
		return s.kartu[i].Tanggal.After(s.kartu[j].Tanggal)
	})
}
