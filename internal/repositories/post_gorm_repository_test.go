package repositories_test

import (
	"fmt"
	"testing"

	"blogapi/internal/models"
	"blogapi/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory SQLite database scoped to the test. The shared
// cache keeps GORM's connection pool pointed at one database instead of a
// fresh one per connection.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))
	return db
}

func seedPosts(t *testing.T, db *gorm.DB) (alice *models.User, posts []*models.Post) {
	t.Helper()
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	alice = &models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "x"}
	require.NoError(t, userRepo.Create(alice))

	posts = []*models.Post{
		{Title: "Hi", Content: "World", Tags: models.Tags{"intro"}, AuthorID: alice.ID, Published: true},
		{Title: "Concurrency in Go", Content: "Channels and goroutines", Tags: models.Tags{"golang", "concurrency"}, AuthorID: alice.ID, Published: true},
		{Title: "Draft thoughts", Content: "Unfinished", Tags: models.Tags{}, AuthorID: alice.ID, Published: false},
	}
	for _, p := range posts {
		require.NoError(t, postRepo.Create(p))
	}
	return alice, posts
}

func TestGORMPostRepository_GetByID_ResolvesAuthor(t *testing.T) {
	db := newTestDB(t)
	_, posts := seedPosts(t, db)
	repo := repositories.NewGORMPostRepository(db)

	post, err := repo.GetByID(posts[0].ID)
	require.NoError(t, err)
	require.NotNil(t, post.Author)
	assert.Equal(t, "alice", post.Author.Username)

	_, err = repo.GetByID("no-such-id")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMPostRepository_Search(t *testing.T) {
	db := newTestDB(t)
	_, _ = seedPosts(t, db)
	repo := repositories.NewGORMPostRepository(db)

	// Case-insensitive hit in content
	results, err := repo.Search("WORLD")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Hi", results[0].Title)

	// Hit in a tag only
	results, err = repo.Search("golang")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Concurrency in Go", results[0].Title)

	// Case-insensitive hit in title
	results, err = repo.Search("draft")
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Miss returns an empty slice, not an error
	results, err = repo.Search("nowhere-to-be-found")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGORMPostRepository_GetByTag_ExactMatch(t *testing.T) {
	db := newTestDB(t)
	_, _ = seedPosts(t, db)
	repo := repositories.NewGORMPostRepository(db)

	results, err := repo.GetByTag("golang")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Concurrency in Go", results[0].Title)

	// "go" is a substring of "golang" but not an exact tag
	results, err = repo.GetByTag("go")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGORMPostRepository_GetByAuthor(t *testing.T) {
	db := newTestDB(t)
	alice, _ := seedPosts(t, db)
	repo := repositories.NewGORMPostRepository(db)

	results, err := repo.GetByAuthor(alice.ID)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = repo.GetByAuthor("nobody")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGORMPostRepository_DistinctTags(t *testing.T) {
	db := newTestDB(t)
	_, _ = seedPosts(t, db)
	repo := repositories.NewGORMPostRepository(db)

	tags, err := repo.DistinctTags()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"intro", "golang", "concurrency"}, tags)
}

func TestGORMPostRepository_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	_, posts := seedPosts(t, db)
	repo := repositories.NewGORMPostRepository(db)

	post, err := repo.GetByID(posts[0].ID)
	require.NoError(t, err)
	post.Title = "Hi, updated"
	require.NoError(t, repo.Update(post))

	reloaded, err := repo.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi, updated", reloaded.Title)

	require.NoError(t, repo.Delete(post.ID))
	_, err = repo.GetByID(post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Deleting the same post again reports not found
	assert.ErrorIs(t, repo.Delete(post.ID), repositories.ErrNotFound)
}

func TestGORMUserRepository_Lookups(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMUserRepository(db)

	user := &models.User{Username: "bob", Email: "bob@x.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail("bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	_, err = repo.GetByEmail("nobody@x.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByUsername("nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
