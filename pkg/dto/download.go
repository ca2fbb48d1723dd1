package dto

// DownloadRequest is accepted as a form field (the HTML page) or as JSON (/v1).
type DownloadRequest struct {
	URL string `form:"url" json:"url" binding:"required"`
}

// ErrorResponse is the body of every failed download request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
