package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiResponse is the envelope every JSON API endpoint answers with.
// The crawler documents (/sitemap.xml, /ai/*) are the exception: they
// are served verbatim in their published formats. Code is 0 on
// success and mirrors the HTTP status on errors.
type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Ok writes a success envelope. Meta carries listing counts and filter
// vocabularies; pass nil to omit it.
func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

// Error writes an error envelope with the given HTTP status.
func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}
