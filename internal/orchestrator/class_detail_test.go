package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

type fakeUpstream struct {
	kelas       *models.Kelas
	kelasErr    error
	aktivitas   []models.Aktivitas
	aktErr      error
	aktPanic    bool
	santri      []models.Santri
	santriErr   error
	kartu       map[int64][]models.Kartu
	kartuErrs   map[int64]error
	kartuPanics map[int64]bool
}

func (f *fakeUpstream) ListKelas(context.Context, string, int) (*remote.KelasPage, error) {
	return &remote.KelasPage{}, nil
}

func (f *fakeUpstream) GetKelas(context.Context, string, string) (*models.Kelas, error) {
	if f.kelasErr != nil {
		return nil, f.kelasErr
	}
	return f.kelas, nil
}

func (f *fakeUpstream) CreateKelas(context.Context, string, remote.KelasPayload) (*models.Kelas, error) {
	return nil, nil
}

func (f *fakeUpstream) UpdateKelas(context.Context, string, string, remote.KelasPayload) (*models.Kelas, error) {
	return nil, nil
}

func (f *fakeUpstream) DeleteKelas(context.Context, string, string) error { return nil }

func (f *fakeUpstream) ListAktivitas(context.Context, string, string) ([]models.Aktivitas, error) {
	if f.aktPanic {
		panic("aktivitas mapper bug")
	}
	if f.aktErr != nil {
		return nil, f.aktErr
	}
	return f.aktivitas, nil
}

func (f *fakeUpstream) CreateAktivitas(context.Context, string, remote.AktivitasPayload) (*models.Aktivitas, error) {
	return nil, nil
}

func (f *fakeUpstream) DeleteAktivitas(context.Context, string, int64) error { return nil }

func (f *fakeUpstream) ListSantri(context.Context, string, int64) ([]models.Santri, error) {
	if f.santriErr != nil {
		return nil, f.santriErr
	}
	return f.santri, nil
}

func (f *fakeUpstream) CreateSantri(context.Context, string, remote.SantriPayload) (*models.Santri, error) {
	return nil, nil
}

func (f *fakeUpstream) DeleteSantri(context.Context, string, int64) error { return nil }

func (f *fakeUpstream) ListKartu(_ context.Context, _ string, santriID int64) ([]models.Kartu, error) {
	if f.kartuPanics[santriID] {
		panic("kartu mapper bug")
	}
	if err, ok := f.kartuErrs[santriID]; ok {
		return nil, err
	}
	return f.kartu[santriID], nil
}

func (f *fakeUpstream) CreateKartu(context.Context, string, remote.KartuPayload) (*models.Kartu, error) {
	return nil, nil
}

func (f *fakeUpstream) DeleteKartu(context.Context, string, int64) error { return nil }

func newLoader(f *fakeUpstream) (*ClassDetailLoader, *session.Selection) {
	selection := session.NewSelection(context.Background(), "sess", session.NewMemoryStorage(), nil)
	set := &store.Set{
		Selection: selection,
		Kelas:     store.NewKelasStore(f, selection, nil),
		Aktivitas: store.NewAktivitasStore(f, nil),
		Santri:    store.NewSantriStore(f, selection, nil),
	}
	return NewClassDetailLoader(set, nil), selection
}

func kartuAt(id, santriID int64, d int) models.Kartu {
	return models.Kartu{ID: id, IDSantri: santriID, Tanggal: time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)}
}

func TestLoadPartialKartuFailureStillReachesReady(t *testing.T) {
	f := &fakeUpstream{
		kelas: &models.Kelas{ID: 1, Nama: "Kelas Iqro'", Slug: "alhuda-iqro"},
		santri: []models.Santri{
			{ID: 1, IDKelas: 1, Nama: "Aisyah"},
			{ID: 2, IDKelas: 1, Nama: "Budi"},
			{ID: 3, IDKelas: 1, Nama: "Citra"},
		},
		kartu: map[int64][]models.Kartu{
			1: {kartuAt(10, 1, 1)},
			3: {kartuAt(30, 3, 2), kartuAt(31, 3, 3)},
		},
		kartuErrs: map[int64]error{2: appErrors.Clone(appErrors.ErrUpstream, "kartu fetch failed")},
	}
	loader, _ := newLoader(f)

	detail, phases, err := loader.Load(context.Background(), "tok", "alhuda-iqro")
	require.NoError(t, err)
	require.NotNil(t, detail)

	// The route reaches ready despite one failing card fetch.
	assert.Equal(t, PhaseChildrenReady, phases[len(phases)-1])
	assert.True(t, detail.Degraded)
	require.Len(t, detail.Santri, 3)
	assert.Len(t, detail.Santri[0].Kartu, 1)
	assert.Empty(t, detail.Santri[1].Kartu)
	assert.Len(t, detail.Santri[2].Kartu, 2)

	require.Len(t, detail.Outcomes, 3)
	assert.True(t, detail.Outcomes[0].OK)
	assert.False(t, detail.Outcomes[1].OK)
	assert.Equal(t, "kartu fetch failed", detail.Outcomes[1].Error)
	assert.True(t, detail.Outcomes[2].OK)
}

func TestLoadClassResolutionFailureIsFatal(t *testing.T) {
	f := &fakeUpstream{kelasErr: appErrors.Clone(appErrors.ErrNotFound, "kelas not found")}
	loader, _ := newLoader(f)

	detail, phases, err := loader.Load(context.Background(), "tok", "missing")
	require.Error(t, err)
	assert.Nil(t, detail)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, PhaseClassError, phases[len(phases)-1])
}

func TestLoadZeroSantriCompletesImmediately(t *testing.T) {
	f := &fakeUpstream{
		kelas:     &models.Kelas{ID: 1, Slug: "kosong"},
		aktivitas: []models.Aktivitas{{ID: 5, Kelas: 1, Nama: "Setoran"}},
	}
	loader, _ := newLoader(f)

	detail, phases, err := loader.Load(context.Background(), "tok", "kosong")
	require.NoError(t, err)
	assert.Equal(t, PhaseChildrenReady, phases[len(phases)-1])
	assert.False(t, detail.Degraded)
	assert.Empty(t, detail.Santri)
	assert.Empty(t, detail.Outcomes)
	assert.Len(t, detail.Aktivitas, 1)
}

func TestLoadSkipsResolutionWhenSelectionMatches(t *testing.T) {
	f := &fakeUpstream{
		kelasErr: appErrors.Clone(appErrors.ErrUpstream, "unreachable"),
	}
	loader, selection := newLoader(f)
	require.NoError(t, selection.SetKelas(context.Background(), &models.Kelas{ID: 1, Slug: "alhuda-iqro"}))

	// The lookup would fail, but the matching selection bypasses it.
	detail, phases, err := loader.Load(context.Background(), "tok", "alhuda-iqro")
	require.NoError(t, err)
	assert.NotContains(t, phases, PhaseResolvingClass)
	assert.Equal(t, int64(1), detail.Kelas.ID)
}

func TestLoadAktivitasFailureDegradesWithoutBlockingSantri(t *testing.T) {
	f := &fakeUpstream{
		kelas:  &models.Kelas{ID: 1, Slug: "a"},
		aktErr: appErrors.Clone(appErrors.ErrUpstream, "kegiatan unavailable"),
		santri: []models.Santri{{ID: 1, IDKelas: 1, Nama: "Aisyah"}},
		kartu:  map[int64][]models.Kartu{1: {kartuAt(10, 1, 1)}},
	}
	loader, _ := newLoader(f)

	detail, phases, err := loader.Load(context.Background(), "tok", "a")
	require.NoError(t, err)
	assert.Equal(t, PhaseChildrenReady, phases[len(phases)-1])
	assert.True(t, detail.Degraded)
	assert.Empty(t, detail.Aktivitas)
	require.Len(t, detail.Santri, 1)
	assert.Len(t, detail.Santri[0].Kartu, 1)
}

func TestLoadSantriFailureDegradesToEmptyRoster(t *testing.T) {
	f := &fakeUpstream{
		kelas:     &models.Kelas{ID: 1, Slug: "a"},
		santriErr: appErrors.Clone(appErrors.ErrUpstream, "santri unavailable"),
	}
	loader, _ := newLoader(f)

	detail, _, err := loader.Load(context.Background(), "tok", "a")
	require.NoError(t, err)
	assert.True(t, detail.Degraded)
	assert.Empty(t, detail.Santri)
}

func TestLoadKartuPanicDegradesSingleOutcome(t *testing.T) {
	f := &fakeUpstream{
		kelas: &models.Kelas{ID: 1, Slug: "a"},
		santri: []models.Santri{
			{ID: 1, IDKelas: 1, Nama: "Aisyah"},
			{ID: 2, IDKelas: 1, Nama: "Budi"},
		},
		kartu:       map[int64][]models.Kartu{1: {kartuAt(10, 1, 1)}},
		kartuPanics: map[int64]bool{2: true},
	}
	loader, _ := newLoader(f)

	detail, phases, err := loader.Load(context.Background(), "tok", "a")
	require.NoError(t, err)
	assert.Equal(t, PhaseChildrenReady, phases[len(phases)-1])
	assert.True(t, detail.Degraded)

	require.Len(t, detail.Outcomes, 2)
	assert.True(t, detail.Outcomes[0].OK)
	assert.False(t, detail.Outcomes[1].OK)
	assert.Equal(t, "kartu load failed", detail.Outcomes[1].Error)
	require.Len(t, detail.Santri, 2)
	assert.Len(t, detail.Santri[0].Kartu, 1)
	assert.Empty(t, detail.Santri[1].Kartu)
}

func TestLoadAktivitasPanicStillReachesReady(t *testing.T) {
	f := &fakeUpstream{
		kelas:    &models.Kelas{ID: 1, Slug: "a"},
		aktPanic: true,
		santri:   []models.Santri{{ID: 1, IDKelas: 1, Nama: "Aisyah"}},
		kartu:    map[int64][]models.Kartu{1: {kartuAt(10, 1, 1)}},
	}
	loader, _ := newLoader(f)

	detail, phases, err := loader.Load(context.Background(), "tok", "a")
	require.NoError(t, err)
	assert.Equal(t, PhaseChildrenReady, phases[len(phases)-1])
	assert.True(t, detail.Degraded)
	assert.Empty(t, detail.Aktivitas)
	require.Len(t, detail.Santri, 1)
	assert.Len(t, detail.Santri[0].Kartu, 1)
}
