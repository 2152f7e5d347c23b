package handler

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

// ExportHandler renders kartu-history exports and serves signed downloads.
type ExportHandler struct {
	hub     *store.Hub
	client  *remote.Client
	exports *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(hub *store.Hub, client *remote.Client, exports *service.ExportService) *ExportHandler {
	return &ExportHandler{hub: hub, client: client, exports: exports}
}

// Generate godoc
// @Summary Export a student's card history
// @Description Renders the full recitation history as PDF or CSV and
// @Description returns a signed, expiring download link.
// @Tags Export
// @Produce json
// @Param id path int true "Student ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /santri/{id}/kartu/export [get]
func (h *ExportHandler) Generate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id must be numeric"))
		return
	}
	format := c.DefaultQuery("format", service.FormatPDF)

	ctx := c.Request.Context()
	token := accessToken(c)

	santri, err := h.client.GetSantri(ctx, token, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	set := storeSet(c, h.hub)
	cards, err := set.Santri.ListKartu(ctx, token, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	kelasNama := ""
	if selected := set.Selection.Kelas(); selected != nil && selected.ID == santri.IDKelas {
		kelasNama = selected.Nama
	}

	result, err := h.exports.Generate(*santri, kelasNama, cards, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a generated export
// @Tags Export
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.exports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not read export"))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(file.Name()))
	http.ServeContent(c.Writer, c.Request, filepath.Base(file.Name()), info.ModTime(), file)
}
