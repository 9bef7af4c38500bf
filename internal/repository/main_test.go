package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"quill/internal/database"
	"quill/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testDB opens a fresh in-memory database per test. The foreign_keys
// pragma is required for the cascade and set-null behavior under test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{
		Title:       slug + " group",
		Slug:        slug,
		Description: "about " + slug,
	}
	require.NoError(t, NewGroupRepository(db).Create(context.Background(), group))
	return group
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, text string, groupID *uint) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID, GroupID: groupID}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))
	return post
}
