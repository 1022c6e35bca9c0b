package handlers

import (
	"errors"
	"log"
	"time"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/repositories"
	"blogapi/internal/services"
	"blogapi/pkg/imagestore"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for posts and image uploads.
type PostHandler struct {
	service  *services.PostService
	images   imagestore.Uploader
	validate *validator.Validate
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService, images imagestore.Uploader) *PostHandler {
	return &PostHandler{
		service:  service,
		images:   images,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the post routes with the Fiber app. The auth
// middleware only guards the routes that need an identity; reads stay public.
// Static segments are registered before the ":id" routes so "tags" and
// "search" are not swallowed by the id parameter.
func (h *PostHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	postRoutes := router.Group("/post")
	postRoutes.Post("/", auth, h.HandleCreatePost)
	postRoutes.Get("/", h.HandleGetAllPosts)
	postRoutes.Get("/tags", h.HandleGetAllTags)
	postRoutes.Get("/tags/:tag", auth, h.HandleGetPostsByTag)
	postRoutes.Get("/search/:query", h.HandleSearchPosts)
	postRoutes.Get("/user/posts/:userID", auth, h.HandleGetPostsByUser)
	postRoutes.Post("/upload-image", auth, h.HandleUploadImage)
	postRoutes.Get("/:id", h.HandleGetPostByID)
	postRoutes.Put("/:id", auth, h.HandleUpdatePost)
	postRoutes.Delete("/:id", auth, h.HandleDeletePost)
}

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Title      string   `json:"title" validate:"required,max=255"`
	Content    string   `json:"content" validate:"required"`
	CoverImage string   `json:"coverImage" validate:"omitempty,url"`
	Tags       []string `json:"tags"`
	Published  bool     `json:"published"`
}

// UpdatePostRequest represents a partial update. Absent fields stay nil and
// keep the post's current value, which is how an explicit published:false
// still gets applied.
type UpdatePostRequest struct {
	Title      *string      `json:"title" validate:"omitempty,min=1,max=255"`
	Content    *string      `json:"content" validate:"omitempty,min=1"`
	CoverImage *string      `json:"coverImage" validate:"omitempty,url"`
	Tags       *models.Tags `json:"tags"`
	Published  *bool        `json:"published"`
}

// PostResponse is the shape every post leaves the API in, with the author
// reduced to their public identity.
type PostResponse struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	CoverImage string            `json:"coverImage,omitempty"`
	Tags       models.Tags       `json:"tags"`
	Author     models.PublicUser `json:"author"`
	Published  bool              `json:"published"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func newPostResponse(post models.Post) PostResponse {
	resp := PostResponse{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		CoverImage: post.CoverImage,
		Tags:       post.Tags,
		Published:  post.Published,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = models.Tags{}
	}
	if post.Author != nil {
		resp.Author = post.Author.Public()
	} else {
		resp.Author = models.PublicUser{ID: post.AuthorID}
	}
	return resp
}

func newPostResponses(posts []models.Post) []PostResponse {
	responses := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, newPostResponse(p))
	}
	return responses
}

// HandleCreatePost creates a new post owned by the caller.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No token provided",
		})
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationMessages(err),
		})
	}

	post := &models.Post{
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Tags:       models.Tags(req.Tags),
		Published:  req.Published,
	}
	created, err := h.service.CreatePost(identity.UserID, post)
	if err != nil {
		log.Printf("Error creating post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(newPostResponse(*created))
}

// HandleGetAllPosts retrieves every post. Public; no pagination.
func (h *PostHandler) HandleGetAllPosts(c *fiber.Ctx) error {
	posts, err := h.service.GetAllPosts()
	if err != nil {
		log.Printf("Error getting all posts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get posts",
		})
	}
	return c.JSON(newPostResponses(posts))
}

// HandleGetPostByID retrieves a single post. Public.
func (h *PostHandler) HandleGetPostByID(c *fiber.Ctx) error {
	postID := c.Params("id")
	post, err := h.service.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		log.Printf("Error getting post by ID %s: %v", postID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get post",
		})
	}
	return c.JSON(newPostResponse(*post))
}

// HandleUpdatePost applies a partial update, owner only.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No token provided",
		})
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationMessages(err),
		})
	}

	postID := c.Params("id")
	updated, err := h.service.UpdatePost(postID, identity.UserID, services.PostUpdate{
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Published:  req.Published,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		case errors.Is(err, services.ErrNotAuthor):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "unauthorized access",
			})
		default:
			log.Printf("Error updating post %s: %v", postID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update post",
			})
		}
	}

	return c.JSON(newPostResponse(*updated))
}

// HandleDeletePost removes a post, owner only.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No token provided",
		})
	}

	postID := c.Params("id")
	if err := h.service.DeletePost(postID, identity.UserID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		case errors.Is(err, services.ErrNotAuthor):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "unauthorized access",
			})
		default:
			log.Printf("Error deleting post %s: %v", postID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to delete post",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}

// HandleSearchPosts runs a case-insensitive substring search over title,
// content and tags. Public. An empty result surfaces as 404, matching the
// behavior existing clients rely on.
func (h *PostHandler) HandleSearchPosts(c *fiber.Ctx) error {
	query := c.Params("query")
	posts, err := h.service.SearchPosts(query)
	if err != nil {
		log.Printf("Error searching posts for %q: %v", query, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search posts",
		})
	}
	if len(posts) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No matching posts found",
		})
	}
	return c.JSON(newPostResponses(posts))
}

// HandleGetPostsByTag lists posts carrying the exact tag.
func (h *PostHandler) HandleGetPostsByTag(c *fiber.Ctx) error {
	tag := c.Params("tag")
	posts, err := h.service.GetPostsByTag(tag)
	if err != nil {
		log.Printf("Error getting posts by tag %s: %v", tag, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get posts",
		})
	}
	if len(posts) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No posts found for this tag",
		})
	}
	return c.JSON(newPostResponses(posts))
}

// HandleGetAllTags returns every distinct tag value used across posts. Public.
func (h *PostHandler) HandleGetAllTags(c *fiber.Ctx) error {
	tags, err := h.service.GetAllTags()
	if err != nil {
		log.Printf("Error getting tags: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch tags",
		})
	}
	return c.JSON(tags)
}

// HandleGetPostsByUser lists all posts authored by the given user ID.
func (h *PostHandler) HandleGetPostsByUser(c *fiber.Ctx) error {
	userID := c.Params("userID")
	posts, err := h.service.GetPostsByAuthor(userID)
	if err != nil {
		log.Printf("Error getting posts for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch posts",
		})
	}
	if len(posts) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No posts found for this user",
		})
	}
	return c.JSON(newPostResponses(posts))
}

// HandleUploadImage relays a multipart image to object storage and returns
// its public URL.
func (h *PostHandler) HandleUploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image file provided",
		})
	}
	if fileHeader.Size > imagestore.MaxImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image exceeds the size limit",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening uploaded file: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image file provided",
		})
	}
	defer file.Close()

	url, err := h.images.Upload(c.UserContext(), fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		if errors.Is(err, imagestore.ErrUnsupportedFormat) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Only JPEG and PNG images are accepted",
			})
		}
		log.Printf("Image upload error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload image",
		})
	}

	return c.JSON(fiber.Map{
		"url":     url,
		"message": "Image uploaded successfully",
	})
}
