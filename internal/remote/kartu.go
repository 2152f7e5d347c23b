package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
)

// KartuPayload is the create body for a progress card.
type KartuPayload struct {
	IDSantri int64  `json:"idSantri"`
	Tanggal  string `json:"tanggal"`
	Bab      string `json:"bab"`
	Halaman  string `json:"halaman"`
	Pengampu string `json:"pengampu"`
	Catatan  string `json:"catatan,omitempty"`
}

// kartuWire mirrors the upstream card shape, where tanggal is a timestamp
// string rather than a date value.
type kartuWire struct {
	ID       int64  `json:"id"`
	IDSantri int64  `json:"idSantri"`
	Tanggal  string `json:"tanggal"`
	Bab      string `json:"bab"`
	Halaman  string `json:"halaman"`
	Pengampu string `json:"pengampu"`
	Catatan  string `json:"catatan"`
}

func (w kartuWire) toModel() (models.Kartu, error) {
	tanggal, err := parseKartuTanggal(w.Tanggal)
	if err != nil {
		return models.Kartu{}, err
	}
	return models.Kartu{
		ID:       w.ID,
		IDSantri: w.IDSantri,
		Tanggal:  tanggal,
		Bab:      w.Bab,
		Halaman:  w.Halaman,
		Pengampu: w.Pengampu,
		Catatan:  w.Catatan,
	}, nil
}

func parseKartuTanggal(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, appErrors.Wrap(
		fmt.Errorf("unrecognised tanggal %q", raw),
		appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode kartu tanggal")
}

// ListKartu returns every progress card of one student via ?santriId=.
func (c *Client) ListKartu(ctx context.Context, token string, santriID int64) ([]models.Kartu, error) {
	var wires []kartuWire
	url := c.url(fmt.Sprintf("/kartu?santriId=%d", santriID))
	if err := c.do(ctx, "kartu", http.MethodGet, url, token, nil, &wires); err != nil {
		return nil, err
	}
	cards := make([]models.Kartu, 0, len(wires))
	for _, w := range wires {
		card, err := w.toModel()
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// CreateKartu records a new progress card.
func (c *Client) CreateKartu(ctx context.Context, token string, payload KartuPayload) (*models.Kartu, error) {
	var wire kartuWire
	if err := c.do(ctx, "kartu", http.MethodPost, c.url("/kartu"), token, payload, &wire); err != nil {
		return nil, err
	}
	card, err := wire.toModel()
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteKartu removes a progress card by ID.
func (c *Client) DeleteKartu(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "kartu", http.MethodDelete, c.url(fmt.Sprintf("/kartu/%d", id)), token, nil, nil)
}
