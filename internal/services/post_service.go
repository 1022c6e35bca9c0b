package services

import (
	"errors"
	"fmt"

	"blogapi/internal/models"
	"blogapi/internal/repositories"
)

// ErrNotAuthor is returned when an authenticated user tries to mutate a post
// owned by somebody else.
var ErrNotAuthor = errors.New("post does not belong to user")

// PostUpdate carries a partial update. Nil fields keep the post's current
// value; non-nil fields are applied, so Published can be set to false
// explicitly.
type PostUpdate struct {
	Title      *string
	Content    *string
	CoverImage *string
	Tags       *models.Tags
	Published  *bool
}

// PostService handles business logic related to posts, including the
// ownership checks on mutation.
type PostService struct {
	repo repositories.PostRepository
}

// NewPostService creates a new PostService.
func NewPostService(repo repositories.PostRepository) *PostService {
	return &PostService{
		repo: repo,
	}
}

// CreatePost persists a new post owned by authorID and returns it with the
// author resolved.
func (s *PostService) CreatePost(authorID string, post *models.Post) (*models.Post, error) {
	post.AuthorID = authorID
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}
	// Re-read so the response carries the resolved author.
	created, err := s.repo.GetByID(post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created post: %w", err)
	}
	return created, nil
}

// GetAllPosts retrieves every post.
func (s *PostService) GetAllPosts() ([]models.Post, error) {
	return s.repo.GetAll()
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(id string) (*models.Post, error) {
	return s.repo.GetByID(id)
}

// UpdatePost applies a partial update to the post with the given ID, provided
// callerID matches the post's author.
func (s *PostService) UpdatePost(id, callerID string, update PostUpdate) (*models.Post, error) {
	post, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != callerID {
		return nil, ErrNotAuthor
	}

	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Content != nil {
		post.Content = *update.Content
	}
	if update.CoverImage != nil {
		post.CoverImage = *update.CoverImage
	}
	if update.Tags != nil {
		post.Tags = *update.Tags
	}
	if update.Published != nil {
		post.Published = *update.Published
	}

	if err := s.repo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post with the given ID, provided callerID matches
// the post's author.
func (s *PostService) DeletePost(id, callerID string) error {
	post, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return ErrNotAuthor
	}
	return s.repo.Delete(id)
}

// SearchPosts returns posts whose title, content or tags contain query,
// case-insensitively. An empty result is not an error here; the handler
// decides how to surface it.
func (s *PostService) SearchPosts(query string) ([]models.Post, error) {
	return s.repo.Search(query)
}

// GetPostsByTag returns posts carrying the exact tag.
func (s *PostService) GetPostsByTag(tag string) ([]models.Post, error) {
	return s.repo.GetByTag(tag)
}

// GetPostsByAuthor returns all posts authored by the given user ID.
func (s *PostService) GetPostsByAuthor(authorID string) ([]models.Post, error) {
	return s.repo.GetByAuthor(authorID)
}

// GetAllTags returns every distinct tag value used across posts.
func (s *PostService) GetAllTags() ([]string, error) {
	return s.repo.DistinctTags()
}
