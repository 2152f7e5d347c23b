package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

// AktivitasHandler exposes activity endpoints scoped to one class.
type AktivitasHandler struct {
	hub      *store.Hub
	client   *remote.Client
	detail   *service.DetailService
	validate *validator.Validate
}

// NewAktivitasHandler constructs an activity handler.
func NewAktivitasHandler(hub *store.Hub, client *remote.Client, detail *service.DetailService) *AktivitasHandler {
	return &AktivitasHandler{hub: hub, client: client, detail: detail, validate: validator.New()}
}

// CreateAktivitasRequest is the create payload for an activity.
type CreateAktivitasRequest struct {
	Kelas     int64  `json:"kelas" validate:"required"`
	KelasSlug string `json:"kelasSlug"`
	Nama      string `json:"nama" validate:"required"`
	Deskripsi string `json:"deskripsi"`
	Tanggal   string `json:"tanggal" validate:"required,datetime=2006-01-02"`
}

// List godoc
// @Summary List activities of a class
// @Tags Aktivitas
// @Produce json
// @Param slug path string true "Class slug"
// @Success 200 {object} response.Envelope
// @Router /kelas/{slug}/aktivitas [get]
func (h *AktivitasHandler) List(c *gin.Context) {
	set := storeSet(c, h.hub)
	items, err := set.Aktivitas.List(c.Request.Context(), accessToken(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Log an activity
// @Tags Aktivitas
// @Accept json
// @Produce json
// @Param payload body CreateAktivitasRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /aktivitas [post]
func (h *AktivitasHandler) Create(c *gin.Context) {
	var req CreateAktivitasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "class, name and a YYYY-MM-DD date are required"))
		return
	}

	set := storeSet(c, h.hub)
	created, err := set.Aktivitas.Add(c.Request.Context(), accessToken(c), remote.AktivitasPayload{
		Kelas:     req.Kelas,
		Nama:      req.Nama,
		Deskripsi: req.Deskripsi,
		Tanggal:   req.Tanggal,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.KelasSlug != "" {
		h.detail.Invalidate(c.Request.Context(), req.KelasSlug)
	}
	response.Created(c, created)
}

// Get godoc
// @Summary Get a single activity
// @Tags Aktivitas
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /aktivitas/{id} [get]
func (h *AktivitasHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "activity id must be numeric"))
		return
	}

	aktivitas, err := h.client.GetAktivitas(c.Request.Context(), accessToken(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, aktivitas, nil)
}

// Delete godoc
// @Summary Delete an activity
// @Tags Aktivitas
// @Param id path int true "Activity ID"
// @Success 204
// @Router /aktivitas/{id} [delete]
func (h *AktivitasHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "activity id must be numeric"))
		return
	}

	set := storeSet(c, h.hub)
	if err := set.Aktivitas.Delete(c.Request.Context(), accessToken(c), id); err != nil {
		response.Error(c, err)
		return
	}
	if slug := c.Query("kelasSlug"); slug != "" {
		h.detail.Invalidate(c.Request.Context(), slug)
	}
	response.NoContent(c)
}
