package models

// Aktivitas is a scheduled or logged activity belonging to exactly one Kelas.
// Tanggal is a calendar date in YYYY-MM-DD form, as served upstream.
type Aktivitas struct {
	ID        int64  `json:"id"`
	Kelas     int64  `json:"kelas"`
	KelasNama string `json:"kelas_nama"`
	Nama      string `json:"nama"`
	Deskripsi string `json:"deskripsi"`
	Tanggal   string `json:"tanggal"`
}
