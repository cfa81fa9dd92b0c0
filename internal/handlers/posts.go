package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"blog-todo/internal/models"
	"blog-todo/internal/services"

	"github.com/gin-gonic/gin"
)

// BlogName is the display name of the blog application.
const BlogName = "Blog"

type PostHandler struct {
	postService services.PostService
	log         *slog.Logger
}

func NewPostHandler(postService services.PostService, log *slog.Logger) *PostHandler {
	return &PostHandler{postService: postService, log: log}
}

func (h *PostHandler) Index(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		handlePageError(c, h.log, BlogName, err)
		return
	}
	page(c, http.StatusOK, BlogName, "blog/index.html", gin.H{"Posts": posts})
}

func (h *PostHandler) New(c *gin.Context) {
	page(c, http.StatusOK, BlogName, "blog/new.html", gin.H{
		"Title": "New post",
		"Form":  services.PostInput{},
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	var in services.PostInput
	if !bindForm(c, h.log, BlogName, &in) {
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), in)
	if err != nil {
		if ve, ok := models.AsValidationError(err); ok {
			page(c, http.StatusBadRequest, BlogName, "blog/new.html", gin.H{
				"Title": "New post",
				"Form":  in,
				"Error": ve.Message,
			})
			return
		}
		handlePageError(c, h.log, BlogName, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

func (h *PostHandler) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFoundPage(c, BlogName)
		return
	}
	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		handlePageError(c, h.log, BlogName, err)
		return
	}
	page(c, http.StatusOK, BlogName, "blog/show.html", gin.H{
		"Title": post.Title,
		"Post":  post,
	})
}

func (h *PostHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFoundPage(c, BlogName)
		return
	}
	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		handlePageError(c, h.log, BlogName, err)
		return
	}
	page(c, http.StatusOK, BlogName, "blog/edit.html", gin.H{
		"Title": "Edit post",
		"ID":    post.ID,
		"Form":  services.PostInput{Title: post.Title, Author: post.Author, Content: post.Content},
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFoundPage(c, BlogName)
		return
	}

	var in services.PostInput
	if !bindForm(c, h.log, BlogName, &in) {
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), id, in)
	if err != nil {
		if ve, ok := models.AsValidationError(err); ok {
			page(c, http.StatusBadRequest, BlogName, "blog/edit.html", gin.H{
				"Title": "Edit post",
				"ID":    id,
				"Form":  in,
				"Error": ve.Message,
			})
			return
		}
		handlePageError(c, h.log, BlogName, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFoundPage(c, BlogName)
		return
	}
	if err := h.postService.DeletePost(c.Request.Context(), id); err != nil {
		handlePageError(c, h.log, BlogName, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		handleAPIError(c, h.log, "post", err)
		return
	}
	c.JSON(http.StatusOK, models.PostResponses(posts))
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		handleAPIError(c, h.log, "post", err)
		return
	}
	c.JSON(http.StatusOK, post.Response())
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var in services.PostInput
	if err := bindJSON(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), in)
	if err != nil {
		handleAPIError(c, h.log, "post", err)
		return
	}
	c.JSON(http.StatusCreated, post.Response())
}

// UpdatePost applies a partial update: only keys present in the body change.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	var patch services.PostPatch
	if err := bindJSON(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	post, err := h.postService.PatchPost(c.Request.Context(), id, patch)
	if err != nil {
		handleAPIError(c, h.log, "post", err)
		return
	}
	c.JSON(http.StatusOK, post.Response())
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err := h.postService.DeletePost(c.Request.Context(), id); err != nil {
		handleAPIError(c, h.log, "post", err)
		return
	}
	c.Status(http.StatusNoContent)
}
