package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/jobs"
)

// upstreamRecorder fakes the backend and keeps the last payload it saw.
type upstreamRecorder struct {
	mux         *http.ServeMux
	lastPayload map[string]interface{}
	current     map[string]interface{}
}

func newUpstreamRecorder() *upstreamRecorder {
	rec := &upstreamRecorder{mux: http.NewServeMux()}
	rec.mux.HandleFunc("/kelas/kelas/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut:
			var payload map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			rec.lastPayload = payload
			payload["id"] = 1
			_ = json.NewEncoder(w).Encode(payload)
		default:
			_ = json.NewEncoder(w).Encode(rec.current)
		}
	})
	return rec
}

func newKelasFixture(t *testing.T) (*KelasHandler, *upstreamRecorder) {
	t.Helper()
	rec := newUpstreamRecorder()
	server := httptest.NewServer(rec.mux)
	t.Cleanup(server.Close)

	client := remote.NewClient(config.UpstreamConfig{BaseURL: server.URL, Timeout: time.Second}, nil, nil)
	hub := store.NewHub(client, session.NewMemoryStorage(), nil)
	cacheSvc := service.NewCacheService(nil, nil, 0, nil, false)
	detail := service.NewDetailService(hub, cacheSvc, 0, jobs.QueueConfig{}, nil)
	return NewKelasHandler(hub, detail), rec
}

func postJSON(t *testing.T, body interface{}, method, target string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestKelasHandlerCreateDerivesSlug(t *testing.T) {
	handler, rec := newKelasFixture(t)

	w, c := postJSON(t, CreateKelasRequest{Nama: "Kelas Iqro' 3!"}, http.MethodPost, "/kelas")
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "kelas-iqro-3", rec.lastPayload["slug"])
}

func TestKelasHandlerCreateKeepsExplicitSlug(t *testing.T) {
	handler, rec := newKelasFixture(t)

	w, c := postJSON(t, CreateKelasRequest{Nama: "Kelas Iqro", Slug: "iqro_custom"}, http.MethodPost, "/kelas")
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "iqro_custom", rec.lastPayload["slug"])
}

func TestKelasHandlerCreateRejectsBadSlug(t *testing.T) {
	handler, rec := newKelasFixture(t)

	w, c := postJSON(t, CreateKelasRequest{Nama: "Kelas", Slug: "has space"}, http.MethodPost, "/kelas")
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, rec.lastPayload)
}

func TestKelasHandlerUpdateAutoDerivesWhileSlugUnchanged(t *testing.T) {
	handler, rec := newKelasFixture(t)
	rec.current = map[string]interface{}{"id": 1, "nama": "Kelas Lama", "slug": "kelas-lama"}

	w, c := postJSON(t, UpdateKelasRequest{Nama: "Kelas Baru"}, http.MethodPut, "/kelas/kelas-lama")
	c.Params = gin.Params{{Key: "slug", Value: "kelas-lama"}}
	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kelas-baru", rec.lastPayload["slug"])
}

func TestKelasHandlerUpdateKeepsCustomisedSlug(t *testing.T) {
	handler, rec := newKelasFixture(t)
	// The stored slug no longer matches what the old name would derive,
	// so a rename must not touch it.
	rec.current = map[string]interface{}{"id": 1, "nama": "Kelas Lama", "slug": "alamat-pilihan"}

	w, c := postJSON(t, UpdateKelasRequest{Nama: "Kelas Baru"}, http.MethodPut, "/kelas/alamat-pilihan")
	c.Params = gin.Params{{Key: "slug", Value: "alamat-pilihan"}}
	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alamat-pilihan", rec.lastPayload["slug"])
}

func TestKelasHandlerUpdateValidatesExplicitSlug(t *testing.T) {
	handler, rec := newKelasFixture(t)
	rec.current = map[string]interface{}{"id": 1, "nama": "Kelas Lama", "slug": "kelas-lama"}

	w, c := postJSON(t, UpdateKelasRequest{Nama: "Kelas Baru", Slug: "bad slug!"}, http.MethodPut, "/kelas/kelas-lama")
	c.Params = gin.Params{{Key: "slug", Value: "kelas-lama"}}
	handler.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
