package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/middleware"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

// ClassDetailHandler serves the composed class-detail snapshot.
type ClassDetailHandler struct {
	detail *service.DetailService
}

// NewClassDetailHandler constructs a detail handler.
func NewClassDetailHandler(detail *service.DetailService) *ClassDetailHandler {
	return &ClassDetailHandler{detail: detail}
}

// Get godoc
// @Summary Full class view
// @Description Resolves the class, its activities and every student with
// @Description progress cards in one response. Partial upstream failures
// @Description degrade the payload instead of failing the request.
// @Tags Kelas
// @Produce json
// @Param slug path string true "Class slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /kelas/{slug}/detail [get]
func (h *ClassDetailHandler) Get(c *gin.Context) {
	detail, cacheHit, err := h.detail.Get(c.Request.Context(), middleware.SessionID(c), accessToken(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	if detail.Degraded {
		meta["degraded"] = true
	}
	response.JSON(c, http.StatusOK, detail, nil, meta)
}
