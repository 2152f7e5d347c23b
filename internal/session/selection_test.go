package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
)

func TestSetKelasWritesThroughToStorage(t *testing.T) {
	storage := NewMemoryStorage()
	sel := NewSelection(context.Background(), "sess-1", storage, nil)

	kelas := &models.Kelas{ID: 1, Nama: "Kelas Iqro'", Slug: "alhuda-iqro"}
	require.NoError(t, sel.SetKelas(context.Background(), kelas))

	raw, err := storage.Get(context.Background(), "sess-1", models.SessionKeySelectedKelas)
	require.NoError(t, err)
	var stored models.Kelas
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "alhuda-iqro", stored.Slug)
}

func TestNewSelectionSeedsFromStorageOnce(t *testing.T) {
	storage := NewMemoryStorage()
	raw, _ := json.Marshal(models.Kelas{ID: 2, Slug: "tahfidz"})
	require.NoError(t, storage.Set(context.Background(), "sess-1", models.SessionKeySelectedKelas, raw))

	sel := NewSelection(context.Background(), "sess-1", storage, nil)
	require.NotNil(t, sel.Kelas())
	assert.Equal(t, "tahfidz", sel.Kelas().Slug)

	// Mutating storage after initialization is not observed.
	other, _ := json.Marshal(models.Kelas{ID: 3, Slug: "iqro-3"})
	require.NoError(t, storage.Set(context.Background(), "sess-1", models.SessionKeySelectedKelas, other))
	assert.Equal(t, "tahfidz", sel.Kelas().Slug)
}

func TestClearKelasRemovesDurableMirror(t *testing.T) {
	storage := NewMemoryStorage()
	sel := NewSelection(context.Background(), "sess-1", storage, nil)
	require.NoError(t, sel.SetKelas(context.Background(), &models.Kelas{ID: 1, Slug: "a"}))

	require.NoError(t, sel.ClearKelas(context.Background()))
	assert.Nil(t, sel.Kelas())
	_, err := storage.Get(context.Background(), "sess-1", models.SessionKeySelectedKelas)
	require.Error(t, err)
}

func TestSantriSelectionIsEphemeralAndIndependent(t *testing.T) {
	storage := NewMemoryStorage()
	sel := NewSelection(context.Background(), "sess-1", storage, nil)

	require.NoError(t, sel.SetKelas(context.Background(), &models.Kelas{ID: 1, Slug: "a"}))
	sel.SetSantri(&models.Santri{ID: 9, IDKelas: 2, Nama: "Fulan"})

	// A santri from a different kelas does not clear the kelas slot.
	assert.Equal(t, "a", sel.Kelas().Slug)
	assert.Equal(t, int64(9), sel.Santri().ID)

	// Nothing santri-related reaches durable storage.
	_, err := storage.Get(context.Background(), "sess-1", "selectedSantri")
	require.Error(t, err)

	sel.ClearSantri()
	assert.Nil(t, sel.Santri())
	assert.NotNil(t, sel.Kelas())
}

func TestSeedDiscardsCorruptPayload(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(context.Background(), "sess-1", models.SessionKeySelectedKelas, []byte("{not json")))

	sel := NewSelection(context.Background(), "sess-1", storage, nil)
	assert.Nil(t, sel.Kelas())
}

func TestSelectionConcurrentAccess(t *testing.T) {
	// Requests of one session share a Selection; reads and writes from
	// parallel goroutines must stay race-free under -race.
	sel := NewSelection(context.Background(), "sess-1", NewMemoryStorage(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			kelas := &models.Kelas{ID: int64(i), Slug: "kelas"}
			require.NoError(t, sel.SetKelas(context.Background(), kelas))
			sel.SetSantri(&models.Santri{ID: int64(i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = sel.Kelas()
			_ = sel.Santri()
		}()
	}
	wg.Wait()

	require.NotNil(t, sel.Kelas())
	assert.Equal(t, "kelas", sel.Kelas().Slug)
}
