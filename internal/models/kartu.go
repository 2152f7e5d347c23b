package models

import "time"

// Kartu is a dated progress-record entry for one Santri: chapter/subject,
// page or verse, supervising teacher and optional notes. Many cards exist
// per santri; the newest card (max Tanggal) is the most requested view.
type Kartu struct {
	ID       int64     `json:"id"`
	IDSantri int64     `json:"idSantri"`
	Tanggal  time.Time `json:"tanggal"`
	Bab      string    `json:"bab"`
	Halaman  string    `json:"halaman"`
	Pengampu string    `json:"pengampu"`
	Catatan  string    `json:"catatan,omitempty"`
}

// SortOrder selects kartu ordering for in-memory re-sorts.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)
