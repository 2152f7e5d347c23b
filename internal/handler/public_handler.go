package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

// PublicHandler issues guardian share links and serves the read-only view
// behind them.
type PublicHandler struct {
	share  *service.ShareService
	detail *service.DetailService
}

// NewPublicHandler constructs a public handler.
func NewPublicHandler(share *service.ShareService, detail *service.DetailService) *PublicHandler {
	return &PublicHandler{share: share, detail: detail}
}

// CreateShareRequest is the share-link creation payload.
type CreateShareRequest struct {
	Passcode string `json:"passcode"`
}

// CreateShare godoc
// @Summary Create a guardian share link
// @Description Issues a signed read-only link to the class, optionally
// @Description protected by a passcode. No share state is stored.
// @Tags Public
// @Accept json
// @Produce json
// @Param slug path string true "Class slug"
// @Param payload body CreateShareRequest false "Share options"
// @Success 201 {object} response.Envelope
// @Router /kelas/{slug}/share [post]
func (h *PublicHandler) CreateShare(c *gin.Context) {
	var req CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid share payload"))
		return
	}

	link, err := h.share.Create(c.Param("slug"), req.Passcode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// View godoc
// @Summary Guardian class view
// @Description Serves the cached class snapshot to share-link holders.
// @Description The view carries no upstream credentials, so it is only
// @Description available after the teacher has opened the class.
// @Tags Public
// @Produce json
// @Param slug path string true "Class slug"
// @Param token query string true "Share token"
// @Param passcode query string false "Passcode for protected links"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/kelas/{slug} [get]
func (h *PublicHandler) View(c *gin.Context) {
	slug := c.Param("slug")
	if err := h.share.Authorize(c.Query("token"), slug, c.Query("passcode")); err != nil {
		response.Error(c, err)
		return
	}

	detail, ok := h.detail.Cached(c.Request.Context(), slug)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "class snapshot not available yet"))
		return
	}
	response.JSON(c, http.StatusOK, detail.Public(), nil)
}
