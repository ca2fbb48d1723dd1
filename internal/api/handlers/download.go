package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/vdl/internal/download"
	"github.com/your-org/vdl/internal/ingest"
	"github.com/your-org/vdl/internal/observability"
	"github.com/your-org/vdl/pkg/dto"
)

const (
	videoContentType    = "video/mp4"
	outputMissingDetail = "Failed to download video."
	missingURLDetail    = "url is required"
)

type DownloadHandler struct {
	svc *download.Service
}

func NewDownloadHandler(svc *download.Service) *DownloadHandler {
	return &DownloadHandler{svc: svc}
}

// Download fetches the submitted URL and streams the result back as an
// attachment. The artifact is removed once the handler returns, whether or not
// the body reached the client.
func (h *DownloadHandler) Download(c *gin.Context) {
	var req dto.DownloadRequest
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Detail: missingURLDetail})
		return
	}

	a, err := h.svc.Fetch(c.Request.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: errorDetail(err)})
		return
	}
	defer h.svc.Release(a)

	f, size, err := a.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: err.Error()})
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, size, videoContentType, f, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, a.Name),
	})
	observability.ArtifactBytesServed.Add(float64(size))

	slog.Debug("artifact served", "name", a.Name, "bytes", size)
}

// errorDetail maps a fetch failure to the message shown to the client.
// Extractor messages pass through verbatim.
func errorDetail(err error) string {
	var extErr *ingest.ExtractionError
	switch {
	case errors.As(err, &extErr):
		return extErr.Message
	case errors.Is(err, download.ErrOutputMissing):
		return outputMissingDetail
	default:
		return err.Error()
	}
}
