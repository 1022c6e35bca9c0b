package repositories

import "blogapi/internal/models"

// PostRepository defines the interface for post data access. List methods
// return an empty slice, not an error, when nothing matches.
type PostRepository interface {
	Create(post *models.Post) error
	GetAll() ([]models.Post, error)
	GetByID(id string) (*models.Post, error)
	Update(post *models.Post) error
	Delete(id string) error
	Search(query string) ([]models.Post, error)
	GetByTag(tag string) ([]models.Post, error)
	GetByAuthor(authorID string) ([]models.Post, error)
	DistinctTags() ([]string, error)
}
