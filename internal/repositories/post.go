package repositories

import (
	"context"
	"errors"

	"blog-todo/internal/models"
	"blog-todo/internal/monitoring"

	"gorm.io/gorm"
)

const postsTable = "posts"

// PostRepository defines the storage operations for blog posts.
type PostRepository interface {
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id uint) (models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// List returns every post, newest first.
func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	defer monitoring.TrackQuery("list", postsTable)()

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Get(ctx context.Context, id uint) (models.Post, error) {
	defer monitoring.TrackQuery("get", postsTable)()

	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, models.NotFound("post", id)
		}
		return post, err
	}
	return post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer monitoring.TrackQuery("create", postsTable)()

	post.ID = 0
	return r.db.WithContext(ctx).Create(post).Error
}

// Update overwrites title, author and content of an existing post. CreatedAt
// is never written; it is loaded back into post on success.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer monitoring.TrackQuery("update", postsTable)()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Post
		if err := tx.First(&existing, post.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NotFound("post", post.ID)
			}
			return err
		}

		err := tx.Model(&existing).
			Select("title", "author", "content").
			Updates(models.Post{Title: post.Title, Author: post.Author, Content: post.Content}).Error
		if err != nil {
			return err
		}
		post.CreatedAt = existing.CreatedAt
		return nil
	})
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer monitoring.TrackQuery("delete", postsTable)()

	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NotFound("post", id)
	}
	return nil
}
