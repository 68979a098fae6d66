package handler

import (
	"io"
	"os"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/service"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// ArtifactOpener reads stored export artifacts back for download.
type ArtifactOpener interface {
	Open(filename string) (*os.File, error)
}

// ExportHandler exposes synchronous rendering, async tickets and downloads.
type ExportHandler struct {
	exports *service.ExportService
	storage ArtifactOpener
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports *service.ExportService, storage ArtifactOpener) *ExportHandler {
	return &ExportHandler{exports: exports, storage: storage}
}

// Render godoc
// @Summary Render an entity export synchronously
// @Tags export
// @Produce octet-stream
// @Security BearerAuth
// @Param entity path string true "Entity (students, grades, attendance, fees)"
// @Param format query string false "Format (csv, json, excel, pdf)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /export/{entity} [get]
func (h *ExportHandler) Render(c *gin.Context) {
	result, err := h.exports.Render(c.Request.Context(), c.Param("entity"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Data)
}

type asyncExportRequest struct {
	Entity string `json:"entity" validate:"required"`
	Format string `json:"format"`
}

// RequestAsync godoc
// @Summary Queue an export and obtain a signed download ticket
// @Tags export
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body asyncExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /export/async [post]
func (h *ExportHandler) RequestAsync(c *gin.Context) {
	var req asyncExportRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ticket, err := h.exports.RequestAsync(c.Request.Context(), req.Entity, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 202, "export queued", ticket, nil)
}

// Download godoc
// @Summary Download a rendered export via its signed token
// @Tags export
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /export/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	relPath, err := h.exports.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.storage.Open(relPath)
	if err != nil {
		response.Error(c, apperrors.Clone(apperrors.ErrNotFound, "export artifact not ready"))
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="`+path.Base(relPath)+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(200)
	_, _ = io.Copy(c.Writer, file)
}
