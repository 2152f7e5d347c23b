package models

// Santri is a student enrolled in exactly one Kelas.
type Santri struct {
	ID      int64  `json:"id"`
	IDKelas int64  `json:"idKelas"`
	Nama    string `json:"nama"`
}
