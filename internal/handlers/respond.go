package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"blog-todo/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// parseID reads the :id path parameter. Anything that is not a positive
// integer is treated like a missing row.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body into dst. An empty body, or one not
// labelled as JSON, decodes as {}.
func bindJSON(c *gin.Context, dst interface{}) error {
	if !isJSON(c.ContentType()) {
		return nil
	}
	if err := c.ShouldBindWith(dst, binding.JSON); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func isJSON(mime string) bool {
	return mime == binding.MIMEJSON || strings.HasSuffix(mime, "+json")
}

// bindForm decodes a submitted HTML form into dst. A body that cannot be
// parsed is answered with a 400 page and reported as false.
func bindForm(c *gin.Context, log *slog.Logger, appName string, dst interface{}) bool {
	if err := c.ShouldBindWith(dst, binding.Form); err != nil {
		log.WarnContext(c.Request.Context(), "malformed form body",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()))
		page(c, http.StatusBadRequest, appName, "error.html", gin.H{
			"Title":   "Bad Request",
			"Message": "The submitted form could not be read.",
		})
		return false
	}
	return true
}

// page renders an HTML view with the fields every layout expects.
func page(c *gin.Context, status int, appName, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["AppName"] = appName
	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}
	if _, ok := data["Error"]; !ok {
		data["Error"] = ""
	}
	c.HTML(status, name, data)
}

// NotFound answers unmatched routes: JSON under /api, an HTML page elsewhere.
func NotFound(appName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		notFoundPage(c, appName)
	}
}

func notFoundPage(c *gin.Context, appName string) {
	page(c, http.StatusNotFound, appName, "error.html", gin.H{
		"Title":   "Not Found",
		"Message": "The requested page does not exist.",
	})
}

// handlePageError answers an HTML request that failed outside validation.
func handlePageError(c *gin.Context, log *slog.Logger, appName string, err error) {
	if errors.Is(err, models.ErrNotFound) {
		notFoundPage(c, appName)
		return
	}
	log.ErrorContext(c.Request.Context(), "request failed",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()))
	page(c, http.StatusInternalServerError, appName, "error.html", gin.H{
		"Title":   "Error",
		"Message": "Something went wrong. Please try again.",
	})
}

// handleAPIError maps service errors onto JSON responses.
func handleAPIError(c *gin.Context, log *slog.Logger, resource string, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": resource + " not found",
		})
		return
	}
	if ve, ok := models.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
		return
	}
	log.ErrorContext(c.Request.Context(), "request failed",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "failed to process " + resource + " request",
	})
}
