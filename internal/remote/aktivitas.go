package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
)

// AktivitasPayload is the create body for an activity.
type AktivitasPayload struct {
	Kelas     int64  `json:"kelas"`
	Nama      string `json:"nama"`
	Deskripsi string `json:"deskripsi"`
	Tanggal   string `json:"tanggal"`
}

// ListAktivitas returns every activity for the class identified by slug.
// The upstream serves a bare array here, not the paginated envelope.
func (c *Client) ListAktivitas(ctx context.Context, token, slug string) ([]models.Aktivitas, error) {
	var out []models.Aktivitas
	url := c.url(fmt.Sprintf("/kelas/kelas/%s/kegiatan/", slug))
	if err := c.do(ctx, "aktivitas", http.MethodGet, url, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAktivitas logs a new activity for a class.
func (c *Client) CreateAktivitas(ctx context.Context, token string, payload AktivitasPayload) (*models.Aktivitas, error) {
	var out models.Aktivitas
	if err := c.do(ctx, "aktivitas", http.MethodPost, c.url("/kelas/kegiatan/"), token, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAktivitas fetches a single activity by ID.
func (c *Client) GetAktivitas(ctx context.Context, token string, id int64) (*models.Aktivitas, error) {
	var out models.Aktivitas
	url := c.url(fmt.Sprintf("/kelas/kegiatan/%d/", id))
	if err := c.do(ctx, "aktivitas", http.MethodGet, url, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAktivitas removes an activity by ID.
func (c *Client) DeleteAktivitas(ctx context.Context, token string, id int64) error {
	url := c.url(fmt.Sprintf("/kelas/kegiatan/%d/", id))
	return c.do(ctx, "aktivitas", http.MethodDelete, url, token, nil, nil)
}
