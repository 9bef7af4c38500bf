package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/media"
	"quill/internal/models"
	"quill/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "Str0ngPassword42"

// newTestServer builds a Server against an in-memory database and a
// fresh miniredis, with routes registered the same way main does.
func newTestServer(t *testing.T) (*Server, *fiber.App, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache.InitRedis(mr.Addr())

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Port:      "0",
		JWTSecret: "test-secret-0123456789abcdef",
		MediaDir:  t.TempDir(),
		Env:       "test",
	}

	s := &Server{
		config:      cfg,
		db:          db,
		redis:       cache.GetClient(),
		media:       media.NewStore(cfg.MediaDir),
		userRepo:    repository.NewUserRepository(db),
		groupRepo:   repository.NewGroupRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		followRepo:  repository.NewFollowRepository(db),
	}

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	s.SetupRoutes(app)

	return s, app, mr
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()

	group := &models.Group{
		Title:       slug + " group",
		Slug:        slug,
		Description: "about " + slug,
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, text string) *models.Post {
	t.Helper()

	post := &models.Post{Text: text, AuthorID: authorID}
	require.NoError(t, db.Create(post).Error)
	return post
}

// sessionFor issues a signed token for the user and returns it for use
// as the session cookie value.
func sessionFor(t *testing.T, s *Server, user *models.User) string {
	t.Helper()

	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return token
}

func getRequest(t *testing.T, path, session string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	if session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session})
	}
	return req
}

func formRequest(t *testing.T, path, session string, values url.Values) *http.Request {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session})
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return body
}
