package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/vdl/internal/artifact"
	"github.com/your-org/vdl/internal/ingest"
)

type SystemHandler struct {
	ytdlp     *ingest.YTDLP
	workspace *artifact.Workspace
}

func NewSystemHandler(ytdlp *ingest.YTDLP, workspace *artifact.Workspace) *SystemHandler {
	return &SystemHandler{ytdlp: ytdlp, workspace: workspace}
}

func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SystemHandler) Readyz(c *gin.Context) {
	checks := map[string]string{}
	healthy := true

	// Check the extractor binary
	if err := h.ytdlp.LookPath(); err != nil {
		checks["ytdlp"] = err.Error()
		healthy = false
	} else {
		checks["ytdlp"] = "ok"
	}

	// Check the scratch space
	if err := h.workspace.CheckWritable(); err != nil {
		checks["work_dir"] = err.Error()
		healthy = false
	} else {
		checks["work_dir"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": map[bool]string{true: "ready", false: "not ready"}[healthy],
		"checks": checks,
	})
}
