package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(config.UpstreamConfig{
		BaseURL: srv.URL,
		AuthURL: srv.URL,
		Timeout: 5 * time.Second,
	}, nil, nil)
	return client, srv
}

func TestGetKelasAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/kelas/kelas/alhuda-iqro", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 1, "nama": "Kelas Iqro'", "slug": "alhuda-iqro",
		})
	}))

	kelas, err := client.GetKelas(context.Background(), "tok-123", "alhuda-iqro")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, int64(1), kelas.ID)
	assert.Equal(t, "alhuda-iqro", kelas.Slug)
}

func TestStatusMappingUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
	}))

	_, err := client.ListKelas(context.Background(), "stale", 1)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAuthRequired))
}

func TestStatusMappingNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.GetKelas(context.Background(), "tok", "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.False(t, appErrors.Is(err, appErrors.ErrAuthRequired))
}

func TestStatusMappingGenericUpstream(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "boom"})
	}))

	_, err := client.ListSantri(context.Background(), "tok", 7)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
	assert.Contains(t, err.Error(), "500")
}

func TestTransportFailureMapsToUpstream(t *testing.T) {
	client := NewClient(config.UpstreamConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	}, nil, nil)

	_, err := client.ListKartu(context.Background(), "tok", 3)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
}

func TestListKelasPaginatedEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    3,
			"next":     nil,
			"previous": "http://x/kelas/kelas?page=1",
			"results": []map[string]interface{}{
				{"id": 1, "nama": "Iqro 1", "slug": "iqro-1"},
				{"id": 2, "nama": "Iqro 2", "slug": "iqro-2"},
			},
		})
	}))

	page, err := client.ListKelas(context.Background(), "tok", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "iqro-2", page.Results[1].Slug)
}

func TestListKartuMapsTanggalFromWireTimestamp(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9", r.URL.Query().Get("santriId"))
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 1, "idSantri": 9, "tanggal": "2024-06-02T08:30:00Z", "bab": "Al-Baqarah", "halaman": "12", "pengampu": "Ust. Ahmad"},
			{"id": 2, "idSantri": 9, "tanggal": "2024-06-03", "bab": "Al-Baqarah", "halaman": "13", "pengampu": "Ust. Ahmad"},
		})
	}))

	cards, err := client.ListKartu(context.Background(), "tok", 9)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, 2024, cards[0].Tanggal.Year())
	assert.Equal(t, time.June, cards[1].Tanggal.Month())
	assert.Equal(t, 3, cards[1].Tanggal.Day())
}

func TestDeleteReturnsNoBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteSantri(context.Background(), "tok", 4))
}

func TestLoginPostsToAuthPath(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ustadz", body["username"])
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user":   map[string]interface{}{"id": 1, "username": "ustadz"},
			"tokens": map[string]string{"accessToken": "a", "refreshToken": "r"},
		})
	}))

	result, err := client.Login(context.Background(), models.LoginRequest{Username: "ustadz", Password: "rahasia"})
	require.NoError(t, err)
	assert.Equal(t, "a", result.Tokens.AccessToken)
	assert.Equal(t, "ustadz", result.User.Username)
}
