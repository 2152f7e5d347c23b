package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

// KartuHandler exposes progress-card endpoints.
type KartuHandler struct {
	hub      *store.Hub
	detail   *service.DetailService
	validate *validator.Validate
}

// NewKartuHandler constructs a card handler.
func NewKartuHandler(hub *store.Hub, detail *service.DetailService) *KartuHandler {
	return &KartuHandler{hub: hub, detail: detail, validate: validator.New()}
}

// CreateKartuRequest is the create payload for a progress card.
type CreateKartuRequest struct {
	IDSantri  int64  `json:"idSantri" validate:"required"`
	KelasSlug string `json:"kelasSlug"`
	Tanggal   string `json:"tanggal" validate:"required"`
	Bab       string `json:"bab" validate:"required"`
	Halaman   string `json:"halaman"`
	Pengampu  string `json:"pengampu" validate:"required"`
	Catatan   string `json:"catatan"`
}

// List godoc
// @Summary List cards of a student
// @Description Returns the student's cards newest first. The sort query
// @Description re-orders the session's card collection in place.
// @Tags Kartu
// @Produce json
// @Param santriId query int true "Student ID"
// @Param sort query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /kartu [get]
func (h *KartuHandler) List(c *gin.Context) {
	santriID, err := strconv.ParseInt(c.Query("santriId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "santriId query parameter is required"))
		return
	}

	set := storeSet(c, h.hub)
	if _, err := set.Santri.ListKartu(c.Request.Context(), accessToken(c), santriID); err != nil {
		response.Error(c, err)
		return
	}

	if sort := c.Query("sort"); sort == string(models.SortAsc) || sort == string(models.SortDesc) {
		set.Santri.SortKartuByDate(models.SortOrder(sort))
	}
	response.JSON(c, http.StatusOK, set.Santri.CardsFor(santriID), nil)
}

// Create godoc
// @Summary Record a card entry
// @Tags Kartu
// @Accept json
// @Produce json
// @Param payload body CreateKartuRequest true "Card payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /kartu [post]
func (h *KartuHandler) Create(c *gin.Context) {
	var req CreateKartuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid card payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "student, date, chapter and teacher are required"))
		return
	}

	set := storeSet(c, h.hub)
	created, err := set.Santri.AddKartu(c.Request.Context(), accessToken(c), remote.KartuPayload{
		IDSantri: req.IDSantri,
		Tanggal:  req.Tanggal,
		Bab:      req.Bab,
		Halaman:  req.Halaman,
		Pengampu: req.Pengampu,
		Catatan:  req.Catatan,
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

// Delete godoc
// @Summary Delete a card entry
// @Tags Kartu
// @Param id path int true "Card ID"
// @Success 204
// @Router /kartu/{id} [delete]
func (h *KartuHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "card id must be numeric"))
		return
	}

	set := storeSet(c, h.hub)
	if err := set.Santri.DeleteKartu(c.Request.Context(), accessToken(c), id); err != nil {
		response.Error(c, err)
		return
	}
	if slug := c.Query("kelasSlug"); slug != "" {
		h.detail.Invalidate(c.Request.Context(), slug)
	}
	response.NoContent(c)
}
