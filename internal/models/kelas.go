package models

// Kelas is a class/cohort taught by one teacher, addressed by a unique
// URL-safe slug. The slug is derived from the name on creation but stays
// user-editable afterwards.
type Kelas struct {
	ID          int64  `json:"id"`
	Nama        string `json:"nama"`
	Deskripsi   string `json:"deskripsi"`
	Slug        string `json:"slug"`
	Author      string `json:"author"`
	SantriCount int    `json:"santri_count"`
}

// KelasFilter captures list parameters forwarded upstream.
type KelasFilter struct {
	Page int
}
