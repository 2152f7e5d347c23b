// Package dto defines composed response payloads assembled from several
// upstream resources.
package dto

import "github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"

// KartuOutcome reports the result of one santri's card fetch inside a
// class-detail load. Individual failures are recorded here instead of
// failing the whole load.
type KartuOutcome struct {
	SantriID int64  `json:"santri_id"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// SantriWithKartu pairs one student with their fetched cards, newest
// first. Kartu is empty when that student's fetch failed.
type SantriWithKartu struct {
	Santri models.Santri  `json:"santri"`
	Kartu  []models.Kartu `json:"kartu"`
	Latest *models.Kartu  `json:"latest,omitempty"`
}

// ClassDetail is the fully composed class-detail payload: the resolved
// class, its activities, and every student with progress cards.
type ClassDetail struct {
	Kelas     models.Kelas       `json:"kelas"`
	Aktivitas []models.Aktivitas `json:"aktivitas"`
	Santri    []SantriWithKartu  `json:"santri"`
	Outcomes  []KartuOutcome     `json:"kartu_outcomes"`
	Degraded  bool               `json:"degraded"`
}

// PublicClassView is the guardian-facing read-only subset of ClassDetail.
type PublicClassView struct {
	Kelas     models.Kelas       `json:"kelas"`
	Aktivitas []models.Aktivitas `json:"aktivitas"`
	Santri    []SantriWithKartu  `json:"santri"`
}

// Public derives the guardian view from a full detail payload.
func (d *ClassDetail) Public() PublicClassView {
	return PublicClassView{Kelas: d.Kelas, Aktivitas: d.Aktivitas, Santri: d.Santri}
}
