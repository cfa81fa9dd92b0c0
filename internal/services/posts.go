package services

import (
	"context"
	"log/slog"
	"strings"

	"blog-todo/internal/models"
	"blog-todo/internal/repositories"
)

// MsgPostFieldsRequired is reported when any post field is blank.
const MsgPostFieldsRequired = "All fields are required."

// PostInput carries a full set of post fields from a form or JSON body.
type PostInput struct {
	Title   string `form:"title" json:"title"`
	Author  string `form:"author" json:"author"`
	Content string `form:"content" json:"content"`
}

// PostPatch carries the fields of a partial update; nil means "leave as is".
type PostPatch struct {
	Title   *string `json:"title"`
	Author  *string `json:"author"`
	Content *string `json:"content"`
}

type PostService interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id uint) (models.Post, error)
	CreatePost(ctx context.Context, in PostInput) (models.Post, error)
	UpdatePost(ctx context.Context, id uint, in PostInput) (models.Post, error)
	PatchPost(ctx context.Context, id uint, patch PostPatch) (models.Post, error)
	DeletePost(ctx context.Context, id uint) error
}

type PostServiceImpl struct {
	repo repositories.PostRepository
	log  *slog.Logger
}

func NewPostService(repo repositories.PostRepository, log *slog.Logger) *PostServiceImpl {
	return &PostServiceImpl{repo: repo, log: log}
}

// Normalize trims every field in place.
func (in *PostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Content = strings.TrimSpace(in.Content)
}

// Validate reports the first rule the (already normalized) input breaks.
func (in PostInput) Validate() error {
	if in.Title == "" || in.Author == "" || in.Content == "" {
		return models.NewValidationError("", MsgPostFieldsRequired)
	}
	if err := checkLength("title", in.Title, models.PostTitleMaxLen); err != nil {
		return err
	}
	return checkLength("author", in.Author, models.PostAuthorMaxLen)
}

func (s *PostServiceImpl) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.repo.List(ctx)
}

func (s *PostServiceImpl) GetPost(ctx context.Context, id uint) (models.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *PostServiceImpl) CreatePost(ctx context.Context, in PostInput) (models.Post, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Post{}, err
	}

	post := models.Post{Title: in.Title, Author: in.Author, Content: in.Content}
	if err := s.repo.Create(ctx, &post); err != nil {
		return models.Post{}, err
	}

	s.log.InfoContext(ctx, "post created", slog.Uint64("post_id", uint64(post.ID)))
	return post, nil
}

// UpdatePost overwrites all fields. A missing post is reported before any
// validation error.
func (s *PostServiceImpl) UpdatePost(ctx context.Context, id uint, in PostInput) (models.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return post, err
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return post, err
	}

	post.Title, post.Author, post.Content = in.Title, in.Author, in.Content
	if err := s.repo.Update(ctx, &post); err != nil {
		return post, err
	}
	return post, nil
}

// PatchPost changes only the supplied fields.
func (s *PostServiceImpl) PatchPost(ctx context.Context, id uint, patch PostPatch) (models.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return post, err
	}

	title, err := trimPatch("title", patch.Title, models.PostTitleMaxLen)
	if err != nil {
		return post, err
	}
	author, err := trimPatch("author", patch.Author, models.PostAuthorMaxLen)
	if err != nil {
		return post, err
	}
	content, err := trimPatch("content", patch.Content, 0)
	if err != nil {
		return post, err
	}

	if title == nil && author == nil && content == nil {
		return post, nil
	}
	if title != nil {
		post.Title = *title
	}
	if author != nil {
		post.Author = *author
	}
	if content != nil {
		post.Content = *content
	}

	if err := s.repo.Update(ctx, &post); err != nil {
		return post, err
	}
	return post, nil
}

func (s *PostServiceImpl) DeletePost(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "post deleted", slog.Uint64("post_id", uint64(id)))
	return nil
}
