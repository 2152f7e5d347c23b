package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
)

// SantriPayload is the create body for a student.
type SantriPayload struct {
	IDKelas int64  `json:"idKelas"`
	Nama    string `json:"nama"`
}

// ListSantri returns the students of one class via the ?kelasId= filter.
func (c *Client) ListSantri(ctx context.Context, token string, kelasID int64) ([]models.Santri, error) {
	var out []models.Santri
	url := c.url(fmt.Sprintf("/santri?kelasId=%d", kelasID))
	if err := c.do(ctx, "santri", http.MethodGet, url, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSantri enrols a new student.
func (c *Client) CreateSantri(ctx context.Context, token string, payload SantriPayload) (*models.Santri, error) {
	var out models.Santri
	if err := c.do(ctx, "santri", http.MethodPost, c.url("/santri"), token, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSantri fetches a single student by ID.
func (c *Client) GetSantri(ctx context.Context, token string, id int64) (*models.Santri, error) {
	var out models.Santri
	if err := c.do(ctx, "santri", http.MethodGet, c.url(fmt.Sprintf("/santri/%d", id)), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSantri removes a student by ID.
func (c *Client) DeleteSantri(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "santri", http.MethodDelete, c.url(fmt.Sprintf("/santri/%d", id)), token, nil, nil)
}
