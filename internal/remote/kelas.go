package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
)

// KelasPage is the upstream paginated envelope for class listings.
type KelasPage struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []models.Kelas `json:"results"`
}

// KelasPayload is the create/update body for a class.
type KelasPayload struct {
	Nama      string `json:"nama"`
	Deskripsi string `json:"deskripsi"`
	Slug      string `json:"slug"`
}

// ListKelas fetches one page of the caller's classes.
func (c *Client) ListKelas(ctx context.Context, token string, page int) (*KelasPage, error) {
	url := c.url("/kelas/kelas")
	if page > 1 {
		url = fmt.Sprintf("%s?page=%d", url, page)
	}
	var out KelasPage
	if err := c.do(ctx, "kelas", http.MethodGet, url, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetKelas resolves a single class by slug.
func (c *Client) GetKelas(ctx context.Context, token, slug string) (*models.Kelas, error) {
	var out models.Kelas
	if err := c.do(ctx, "kelas", http.MethodGet, c.url("/kelas/kelas/"+slug), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateKelas registers a new class.
func (c *Client) CreateKelas(ctx context.Context, token string, payload KelasPayload) (*models.Kelas, error) {
	var out models.Kelas
	if err := c.do(ctx, "kelas", http.MethodPost, c.url("/kelas/kelas/"), token, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateKelas applies a partial update to the class identified by slug.
func (c *Client) UpdateKelas(ctx context.Context, token, slug string, payload KelasPayload) (*models.Kelas, error) {
	var out models.Kelas
	if err := c.do(ctx, "kelas", http.MethodPut, c.url("/kelas/kelas/"+slug), token, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteKelas removes the class identified by slug.
func (c *Client) DeleteKelas(ctx context.Context, token, slug string) error {
	return c.do(ctx, "kelas", http.MethodDelete, c.url("/kelas/kelas/"+slug), token, nil, nil)
}
