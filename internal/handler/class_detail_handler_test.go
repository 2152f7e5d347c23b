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

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/jobs"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

// newDegradedDetailFixture serves a class whose activity feed always fails,
// so every snapshot comes back degraded.
func newDegradedDetailFixture(t *testing.T) *ClassDetailHandler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/kelas/kelas/tpq-annur", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 1, "nama": "TPQ An-Nur", "slug": "tpq-annur",
		})
	})
	mux.HandleFunc("/kelas/kelas/tpq-annur/kegiatan/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/santri", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := remote.NewClient(config.UpstreamConfig{BaseURL: server.URL, Timeout: time.Second}, nil, nil)
	hub := store.NewHub(client, session.NewMemoryStorage(), nil)
	cacheSvc := service.NewCacheService(nil, nil, 0, nil, false)
	detail := service.NewDetailService(hub, cacheSvc, 0, jobs.QueueConfig{}, nil)
	return NewClassDetailHandler(detail)
}

func TestClassDetailHandlerDegradedMetaWithoutMetaMiddleware(t *testing.T) {
	h := newDegradedDetailFixture(t)

	// A bare test context: no meta middleware ran before the handler.
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/kelas/tpq-annur/detail", nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "slug", Value: "tpq-annur"}}

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, true, envelope.Meta["degraded"])
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}
