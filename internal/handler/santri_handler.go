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

// SantriHandler exposes student endpoints.
type SantriHandler struct {
	hub      *store.Hub
	detail   *service.DetailService
	validate *validator.Validate
}

// NewSantriHandler constructs a student handler.
func NewSantriHandler(hub *store.Hub, detail *service.DetailService) *SantriHandler {
	return &SantriHandler{hub: hub, detail: detail, validate: validator.New()}
}

// CreateSantriRequest is the create payload for a student.
type CreateSantriRequest struct {
	IDKelas   int64  `json:"idKelas" validate:"required"`
	KelasSlug string `json:"kelasSlug"`
	Nama      string `json:"nama" validate:"required"`
}

// List godoc
// @Summary List students of a class
// @Tags Santri
// @Produce json
// @Param kelasId query int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /santri [get]
func (h *SantriHandler) List(c *gin.Context) {
	kelasID, err := strconv.ParseInt(c.Query("kelasId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kelasId query parameter is required"))
		return
	}

	set := storeSet(c, h.hub)
	items, err := set.Santri.ListSantri(c.Request.Context(), accessToken(c), kelasID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Enroll a student
// @Tags Santri
// @Accept json
// @Produce json
// @Param payload body CreateSantriRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /santri [post]
func (h *SantriHandler) Create(c *gin.Context) {
	var req CreateSantriRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "class and student name are required"))
		return
	}

	set := storeSet(c, h.hub)
	created, err := set.Santri.AddSantri(c.Request.Context(), accessToken(c), remote.SantriPayload{
		IDKelas: req.IDKelas,
		Nama:    req.Nama,
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
// @Summary Remove a student
// @Tags Santri
// @Param id path int true "Student ID"
// @Success 204
// @Router /santri/{id} [delete]
func (h *SantriHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id must be numeric"))
		return
	}

	set := storeSet(c, h.hub)
	if err := set.Santri.DeleteSantri(c.Request.Context(), accessToken(c), id); err != nil {
		response.Error(c, err)
		return
	}
	if slug := c.Query("kelasSlug"); slug != "" {
		h.detail.Invalidate(c.Request.Context(), slug)
	}
	response.NoContent(c)
}
