package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	title string
}

func NewPageHandler(title string) *PageHandler {
	if title == "" {
		title = "Video Downloader"
	}
	return &PageHandler{title: title}
}

// Home renders the URL submission form.
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":  h.title,
		"Action": "/download",
	})
}
