package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

type mockSantriClient struct {
	santri    []models.Santri
	kartu     map[int64][]models.Kartu
	listErr   error
	kartuErrs map[int64]error
}

func (m *mockSantriClient) ListSantri(context.Context, string, int64) ([]models.Santri, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Santri{}, m.santri...), nil
}

func (m *mockSantriClient) CreateSantri(_ context.Context, _ string, payload remote.SantriPayload) (*models.Santri, error) {
	created := models.Santri{ID: int64(len(m.santri) + 1), IDKelas: payload.IDKelas, Nama: payload.Nama}
	m.santri = append(m.santri, created)
	return &created, nil
}

func (m *mockSantriClient) DeleteSantri(context.Context, string, int64) error { return nil }

func (m *mockSantriClient) ListKartu(_ context.Context, _ string, santriID int64) ([]models.Kartu, error) {
	if err, ok := m.kartuErrs[santriID]; ok {
		return nil, err
	}
	return append([]models.Kartu{}, m.kartu[santriID]...), nil
}

func (m *mockSantriClient) CreateKartu(_ context.Context, _ string, payload remote.KartuPayload) (*models.Kartu, error) {
	created := models.Kartu{ID: 99, IDSantri: payload.IDSantri, Bab: payload.Bab, Halaman: payload.Halaman}
	return &created, nil
}

func (m *mockSantriClient) DeleteKartu(context.Context, string, int64) error { return nil }

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func newSantriFixture(client *mockSantriClient) (*SantriStore, *session.Selection) {
	selection := session.NewSelection(context.Background(), "sess", session.NewMemoryStorage(), nil)
	return NewSantriStore(client, selection, nil), selection
}

func TestDeleteSelectedSantriClearsSelection(t *testing.T) {
	client := &mockSantriClient{santri: []models.Santri{{ID: 1, Nama: "Aisyah"}, {ID: 2, Nama: "Budi"}}}
	s, selection := newSantriFixture(client)
	_, err := s.ListSantri(context.Background(), "tok", 5)
	require.NoError(t, err)

	selection.SetSantri(&models.Santri{ID: 1, Nama: "Aisyah"})
	require.NoError(t, s.DeleteSantri(context.Background(), "tok", 1))
	assert.Nil(t, selection.Santri())

	// Deleting any other santri leaves the selection unchanged.
	selection.SetSantri(&models.Santri{ID: 2, Nama: "Budi"})
	require.NoError(t, s.DeleteSantri(context.Background(), "tok", 7))
	require.NotNil(t, selection.Santri())
	assert.Equal(t, int64(2), selection.Santri().ID)
}

func TestListKartuMergesCommingledCollection(t *testing.T) {
	client := &mockSantriClient{kartu: map[int64][]models.Kartu{
		1: {{ID: 10, IDSantri: 1, Tanggal: day(1)}, {ID: 11, IDSantri: 1, Tanggal: day(3)}},
		2: {{ID: 20, IDSantri: 2, Tanggal: day(2)}},
	}}
	s, _ := newSantriFixture(client)

	_, err := s.ListKartu(context.Background(), "tok", 1)
	require.NoError(t, err)
	_, err = s.ListKartu(context.Background(), "tok", 2)
	require.NoError(t, err)

	// Cards of both students coexist in one collection, newest first.
	all := s.Kartu()
	require.Len(t, all, 3)
	assert.Equal(t, int64(11), all[0].ID)

	// Refetching one student replaces only that student's cards.
	client.kartu[1] = []models.Kartu{{ID: 12, IDSantri: 1, Tanggal: day(5)}}
	_, err = s.ListKartu(context.Background(), "tok", 1)
	require.NoError(t, err)
	all = s.Kartu()
	require.Len(t, all, 2)
	assert.Equal(t, int64(12), all[0].ID)
	assert.Equal(t, int64(20), all[1].ID)
}

func TestCardsForFiltersBySantri(t *testing.T) {
	client := &mockSantriClient{kartu: map[int64][]models.Kartu{
		1: {{ID: 10, IDSantri: 1, Tanggal: day(1)}},
		2: {{ID: 20, IDSantri: 2, Tanggal: day(2)}, {ID: 21, IDSantri: 2, Tanggal: day(4)}},
	}}
	s, _ := newSantriFixture(client)
	_, err := s.ListKartu(context.Background(), "tok", 1)
	require.NoError(t, err)
	_, err = s.ListKartu(context.Background(), "tok", 2)
	require.NoError(t, err)

	cards := s.CardsFor(2)
	require.Len(t, cards, 2)
	for _, card := range cards {
		assert.Equal(t, int64(2), card.IDSantri)
	}

	latest := s.LatestCardFor(2)
	require.NotNil(t, latest)
	assert.Equal(t, int64(21), latest.ID)
	assert.Nil(t, s.LatestCardFor(42))
}

func TestSortKartuByDateDoubleReversal(t *testing.T) {
	client := &mockSantriClient{kartu: map[int64][]models.Kartu{
		1: {
			{ID: 10, IDSantri: 1, Tanggal: day(2)},
			{ID: 11, IDSantri: 1, Tanggal: day(4)},
			{ID: 12, IDSantri: 1, Tanggal: day(1)},
		},
	}}
	s, _ := newSantriFixture(client)
	_, err := s.ListKartu(context.Background(), "tok", 1)
	require.NoError(t, err)

	original := s.Kartu()

	s.SortKartuByDate(models.SortAsc)
	asc := s.Kartu()
	assert.Equal(t, int64(12), asc[0].ID)

	// With distinct dates, asc followed by desc restores the stored order.
	s.SortKartuByDate(models.SortDesc)
	assert.Equal(t, original, s.Kartu())
}

func TestListKartuFailureKeepsPreviousCards(t *testing.T) {
	client := &mockSantriClient{
		kartu:     map[int64][]models.Kartu{1: {{ID: 10, IDSantri: 1, Tanggal: day(1)}}},
		kartuErrs: map[int64]error{},
	}
	s, _ := newSantriFixture(client)
	_, err := s.ListKartu(context.Background(), "tok", 1)
	require.NoError(t, err)

	client.kartuErrs[1] = appErrors.Clone(appErrors.ErrUpstream, "kartu fetch failed")
	_, err = s.ListKartu(context.Background(), "tok", 1)
	require.Error(t, err)
	assert.Len(t, s.Kartu(), 1)
	assert.Equal(t, "kartu fetch failed", s.Err())
}
