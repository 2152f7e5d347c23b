package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/jobs"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

func newAktivitasFixture(t *testing.T) (*AktivitasHandler, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := remote.NewClient(config.UpstreamConfig{BaseURL: server.URL, Timeout: time.Second}, nil, nil)
	hub := store.NewHub(client, session.NewMemoryStorage(), nil)
	cacheSvc := service.NewCacheService(nil, nil, 0, nil, false)
	detail := service.NewDetailService(hub, cacheSvc, 0, jobs.QueueConfig{}, nil)
	return NewAktivitasHandler(hub, client, detail), mux
}

func getRequest(t *testing.T, target string, params gin.Params) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = params
	return w, c
}

func TestAktivitasHandlerGetFetchesSingleActivity(t *testing.T) {
	h, mux := newAktivitasFixture(t)
	mux.HandleFunc("/kelas/kegiatan/7/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(models.Aktivitas{ID: 7, Kelas: 1, Nama: "Setoran Juz 30"})
	})

	w, c := getRequest(t, "/aktivitas/7", gin.Params{{Key: "id", Value: "7"}})
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var aktivitas models.Aktivitas
	require.NoError(t, json.Unmarshal(data, &aktivitas))
	assert.Equal(t, int64(7), aktivitas.ID)
	assert.Equal(t, "Setoran Juz 30", aktivitas.Nama)
}

func TestAktivitasHandlerGetUnknownID(t *testing.T) {
	h, mux := newAktivitasFixture(t)
	mux.HandleFunc("/kelas/kegiatan/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	w, c := getRequest(t, "/aktivitas/99", gin.Params{{Key: "id", Value: "99"}})
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAktivitasHandlerGetRejectsNonNumericID(t *testing.T) {
	h, _ := newAktivitasFixture(t)

	w, c := getRequest(t, "/aktivitas/abc", gin.Params{{Key: "id", Value: "abc"}})
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
