package handler

import (
	"fmt"
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
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/slug"
)

// KelasHandler exposes class CRUD endpoints.
type KelasHandler struct {
	hub      *store.Hub
	detail   *service.DetailService
	validate *validator.Validate
}

// NewKelasHandler constructs a class handler.
func NewKelasHandler(hub *store.Hub, detail *service.DetailService) *KelasHandler {
	return &KelasHandler{hub: hub, detail: detail, validate: validator.New()}
}

// CreateKelasRequest is the create payload. An omitted slug is derived
// from the name.
type CreateKelasRequest struct {
	Nama      string `json:"nama" validate:"required"`
	Deskripsi string `json:"deskripsi"`
	Slug      string `json:"slug"`
}

// UpdateKelasRequest is the edit payload. An omitted slug keeps the
// current one unless it still matches the old auto-derived form.
type UpdateKelasRequest struct {
	Nama      string `json:"nama" validate:"required"`
	Deskripsi string `json:"deskripsi"`
	Slug      string `json:"slug"`
}

// List godoc
// @Summary List my classes
// @Tags Kelas
// @Produce json
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /kelas [get]
func (h *KelasHandler) List(c *gin.Context) {
	page := 0
	if raw, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = raw
	}

	set := storeSet(c, h.hub)
	items, err := set.Kelas.List(c.Request.Context(), accessToken(c), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: page, PageSize: len(items), TotalCount: set.Kelas.Count()}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get one class by slug
// @Description Resolves the class and remembers it as the session's selection
// @Tags Kelas
// @Produce json
// @Param slug path string true "Class slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /kelas/{slug} [get]
func (h *KelasHandler) Get(c *gin.Context) {
	set := storeSet(c, h.hub)
	kelas, err := set.Kelas.GetBySlug(c.Request.Context(), accessToken(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, kelas, nil)
}

// Create godoc
// @Summary Create a class
// @Tags Kelas
// @Accept json
// @Produce json
// @Param payload body CreateKelasRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /kelas [post]
func (h *KelasHandler) Create(c *gin.Context) {
	var req CreateKelasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "class name is required"))
		return
	}

	candidate := req.Slug
	if candidate == "" {
		candidate = slug.Generate(req.Nama)
	}
	if ok, reason := slug.Validate(candidate); !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid slug: %s", reason)))
		return
	}

	set := storeSet(c, h.hub)
	created, err := set.Kelas.Add(c.Request.Context(), accessToken(c), remote.KelasPayload{
		Nama:      req.Nama,
		Deskripsi: req.Deskripsi,
		Slug:      candidate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Edit a class
// @Tags Kelas
// @Accept json
// @Produce json
// @Param slug path string true "Class slug"
// @Param payload body UpdateKelasRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /kelas/{slug} [put]
func (h *KelasHandler) Update(c *gin.Context) {
	var req UpdateKelasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "class name is required"))
		return
	}

	set := storeSet(c, h.hub)
	ctx := c.Request.Context()
	slugParam := c.Param("slug")

	current, err := set.Kelas.GetBySlug(ctx, accessToken(c), slugParam)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Explicit slugs are validated but never re-derived. An omitted slug
	// follows the name only while the current slug still matches the form
	// Generate would have produced from the old name.
	next := current.Slug
	if req.Slug != "" {
		if ok, reason := slug.Validate(req.Slug); !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid slug: %s", reason)))
			return
		}
		next = req.Slug
	} else if slug.ShouldAutoDerive(current.Slug, current.Nama) {
		next = slug.Generate(req.Nama)
	}

	updated, err := set.Kelas.Edit(ctx, accessToken(c), slugParam, remote.KelasPayload{
		Nama:      req.Nama,
		Deskripsi: req.Deskripsi,
		Slug:      next,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.detail.Invalidate(ctx, slugParam)
	if next != slugParam {
		h.detail.Invalidate(ctx, next)
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete a class
// @Tags Kelas
// @Param slug path string true "Class slug"
// @Success 204
// @Router /kelas/{slug} [delete]
func (h *KelasHandler) Delete(c *gin.Context) {
	set := storeSet(c, h.hub)
	slugParam := c.Param("slug")
	if err := set.Kelas.Delete(c.Request.Context(), accessToken(c), slugParam); err != nil {
		response.Error(c, err)
		return
	}
	h.detail.Invalidate(c.Request.Context(), slugParam)
	response.NoContent(c)
}
