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

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/jobs"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/storage"
)

func newPublicFixture() *PublicHandler {
	share := service.NewShareService(storage.NewTokenSigner("secret", time.Hour), "/api/v1", nil)
	cacheSvc := service.NewCacheService(nil, nil, 0, nil, false)
	detail := service.NewDetailService(&store.Hub{}, cacheSvc, 0, jobs.QueueConfig{}, nil)
	return NewPublicHandler(share, detail)
}

func TestPublicHandlerCreateShare(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPublicFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(CreateShareRequest{Passcode: "rahasia"})
	req, _ := http.NewRequest(http.MethodPost, "/kelas/alhuda-iqro/share", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "slug", Value: "alhuda-iqro"}}

	handler.CreateShare(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["protected"])
	assert.NotEmpty(t, data["token"])
}

func TestPublicHandlerCreateShareWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPublicFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/kelas/alhuda-iqro/share", bytes.NewReader(nil))
	c.Request = req
	c.Params = gin.Params{{Key: "slug", Value: "alhuda-iqro"}}

	handler.CreateShare(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestPublicHandlerViewRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPublicFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/public/kelas/alhuda-iqro?token=bogus", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "slug", Value: "alhuda-iqro"}}

	handler.View(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPublicHandlerViewWithoutSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPublicFixture()

	share := service.NewShareService(storage.NewTokenSigner("secret", time.Hour), "/api/v1", nil)
	link, err := share.Create("alhuda-iqro", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/public/kelas/alhuda-iqro?token="+link.Token, nil)
	c.Request = req
	c.Params = gin.Params{{Key: "slug", Value: "alhuda-iqro"}}

	handler.View(c)
	// No cached snapshot yet; the guardian sees a not-found, not an error page.
	assert.Equal(t, http.StatusNotFound, w.Code)
}
