package repositories

import (
	"errors"
	"fmt"
	"strings"

	"blogapi/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// Create creates a new post in the database.
func (r *GORMPostRepository) Create(post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetAll retrieves all posts with their authors resolved.
func (r *GORMPostRepository) GetAll() ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Preload("Author").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a single post by its ID with the author resolved.
func (r *GORMPostRepository) GetByID(id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

// Update persists an existing post.
func (r *GORMPostRepository) Update(post *models.Post) error {
	res := r.db.Save(post) // Save writes all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound for an update that
		// matched nothing, so we check RowsAffected.
		return fmt.Errorf("post with ID %s: %w", post.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a post by its ID.
func (r *GORMPostRepository) Delete(id string) error {
	res := r.db.Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Search returns posts whose title, content or tags contain the query,
// case-insensitively. The tags column holds JSON text, so a plain LIKE over
// it gives the same substring semantics as over title and content.
func (r *GORMPostRepository) Search(query string) ([]models.Post, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var posts []models.Post
	err := r.db.Preload("Author").
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern, pattern).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search posts for %q: %w", query, err)
	}
	return posts, nil
}

// GetByTag returns posts carrying the exact tag. Matching the quoted JSON
// element keeps "go" from matching "golang".
func (r *GORMPostRepository) GetByTag(tag string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("Author").
		Where("tags LIKE ?", `%"`+tag+`"%`).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by tag %s: %w", tag, err)
	}
	return posts, nil
}

// GetByAuthor returns all posts authored by the given user ID.
func (r *GORMPostRepository) GetByAuthor(authorID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("Author").
		Where("author_id = ?", authorID).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by author %s: %w", authorID, err)
	}
	return posts, nil
}

// DistinctTags returns every distinct tag value across all posts, in
// first-seen order.
func (r *GORMPostRepository) DistinctTags() ([]string, error) {
	var posts []models.Post
	if err := r.db.Select("tags").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to collect tags: %w", err)
	}

	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, p := range posts {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags, nil
}
