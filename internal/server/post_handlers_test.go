package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePostPage(t *testing.T, resp *http.Response) postPage {
	t.Helper()

	var payload postPage
	require.NoError(t, json.Unmarshal(readBody(t, resp), &payload))
	return payload
}

func TestIndexPagination(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "leo")
	for i := 0; i < 17; i++ {
		createTestPost(t, s.db, author.ID, fmt.Sprintf("post %d", i))
	}

	resp, err := app.Test(getRequest(t, "/", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	first := decodePostPage(t, resp)
	assert.Len(t, first.Posts, 10)
	assert.Equal(t, 1, first.Page.Number)
	assert.Equal(t, 2, first.Page.NumPages)
	assert.True(t, first.Page.HasNext)
	assert.False(t, first.Page.HasPrevious)

	resp, err = app.Test(getRequest(t, "/?page=2", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	second := decodePostPage(t, resp)
	assert.Len(t, second.Posts, 7)
	assert.Equal(t, 2, second.Page.Number)
	assert.False(t, second.Page.HasNext)
	assert.True(t, second.Page.HasPrevious)
}

func TestIndexNewestFirst(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "mia")

	old := &models.Post{Text: "old", AuthorID: author.ID, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, s.db.Create(old).Error)
	createTestPost(t, s.db, author.ID, "new")

	resp, err := app.Test(getRequest(t, "/", ""))
	require.NoError(t, err)

	page := decodePostPage(t, resp)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "new", page.Posts[0].Text)
	assert.Equal(t, "old", page.Posts[1].Text)
}

func TestIndexServesCachedPage(t *testing.T) {
	s, app, mr := newTestServer(t)
	author := createTestUser(t, s.db, "nora")
	createTestPost(t, s.db, author.ID, "first")

	resp, err := app.Test(getRequest(t, "/", ""))
	require.NoError(t, err)
	assert.Len(t, decodePostPage(t, resp).Posts, 1)

	// A post created inside the cache window is not visible yet
	createTestPost(t, s.db, author.ID, "second")

	resp, err = app.Test(getRequest(t, "/", ""))
	require.NoError(t, err)
	assert.Len(t, decodePostPage(t, resp).Posts, 1)

	mr.FastForward(21 * time.Second)

	resp, err = app.Test(getRequest(t, "/", ""))
	require.NoError(t, err)
	assert.Len(t, decodePostPage(t, resp).Posts, 2)
}

func TestGroupPosts(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "ivy")
	group := createTestGroup(t, s.db, "go")

	inGroup := &models.Post{Text: "grouped", AuthorID: author.ID, GroupID: &group.ID}
	require.NoError(t, s.db.Create(inGroup).Error)
	createTestPost(t, s.db, author.ID, "ungrouped")

	resp, err := app.Test(getRequest(t, "/group/go/", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Group models.Group      `json:"group"`
		Page  pagination.Window `json:"page"`
		Posts []*models.Post    `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &payload))
	assert.Equal(t, "go", payload.Group.Slug)
	require.Len(t, payload.Posts, 1)
	assert.Equal(t, "grouped", payload.Posts[0].Text)
}

func TestGroupPostsUnknownSlug(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, err := app.Test(getRequest(t, "/group/nope/", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProfile(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "owen")
	viewer := createTestUser(t, s.db, "pia")
	createTestPost(t, s.db, author.ID, "mine")
	require.NoError(t, s.db.Create(&models.Follow{UserID: viewer.ID, AuthorID: author.ID}).Error)

	resp, err := app.Test(getRequest(t, "/profile/owen/", sessionFor(t, s, viewer)))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Author     models.User    `json:"author"`
		Posts      []*models.Post `json:"posts"`
		PostsTotal int64          `json:"posts_total"`
		Followers  int64          `json:"followers"`
		Following  bool           `json:"following"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &payload))
	assert.Equal(t, "owen", payload.Author.Username)
	assert.Len(t, payload.Posts, 1)
	assert.Equal(t, int64(1), payload.PostsTotal)
	assert.Equal(t, int64(1), payload.Followers)
	assert.True(t, payload.Following)
}

func TestProfileUnknownUser(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, err := app.Test(getRequest(t, "/profile/ghost/", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostDetail(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "quinn")
	longText := "0123456789012345678901234567890123456789"
	post := createTestPost(t, s.db, author.ID, longText)
	createTestPost(t, s.db, author.ID, "another")

	comment := &models.Comment{PostID: &post.ID, AuthorID: author.ID, Text: "nice"}
	require.NoError(t, s.db.Create(comment).Error)

	resp, err := app.Test(getRequest(t, fmt.Sprintf("/posts/%d/", post.ID), ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Post             models.Post       `json:"post"`
		Title            string            `json:"title"`
		Comments         []*models.Comment `json:"comments"`
		AuthorTotalPosts int64             `json:"author_total_posts"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &payload))
	assert.Equal(t, longText[:30], payload.Title)
	assert.Equal(t, longText, payload.Post.Text)
	require.Len(t, payload.Comments, 1)
	assert.Equal(t, "nice", payload.Comments[0].Text)
	assert.Equal(t, int64(2), payload.AuthorTotalPosts)
}

func TestPostDetailNotFound(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, err := app.Test(getRequest(t, "/posts/999/", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostCreateRequiresLogin(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, err := app.Test(formRequest(t, "/create/", "", url.Values{"text": {"hello"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login/?next=/create/", resp.Header.Get("Location"))
}

func TestPostCreate(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "rita")
	group := createTestGroup(t, s.db, "books")

	values := url.Values{
		"text":  {"my first post"},
		"group": {fmt.Sprintf("%d", group.ID)},
	}
	resp, err := app.Test(formRequest(t, "/create/", sessionFor(t, s, author), values))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/rita/", resp.Header.Get("Location"))

	var post models.Post
	require.NoError(t, s.db.First(&post).Error)
	assert.Equal(t, "my first post", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
}

func TestPostCreateWhitespaceTextRejected(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "sam")

	resp, err := app.Test(formRequest(t, "/create/", sessionFor(t, s, author), url.Values{"text": {"   "}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &payload))
	assert.Contains(t, payload.Errors, "text")

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPostCreateWithImage(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "tess")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("text", "with image"))
	fw, err := w.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = fw.Write([]byte("GIF89a"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/create/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionFor(t, s, author)})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var post models.Post
	require.NoError(t, s.db.First(&post).Error)
	require.NotEmpty(t, post.Image)

	_, err = os.Stat(filepath.Join(s.config.MediaDir, filepath.FromSlash(post.Image)))
	assert.NoError(t, err)
}

func TestPostEditByAuthor(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "uma")
	post := createTestPost(t, s.db, author.ID, "before")

	path := fmt.Sprintf("/posts/%d/edit/", post.ID)
	resp, err := app.Test(formRequest(t, path, sessionFor(t, s, author), url.Values{"text": {"after"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), resp.Header.Get("Location"))

	var updated models.Post
	require.NoError(t, s.db.First(&updated, post.ID).Error)
	assert.Equal(t, "after", updated.Text)
	assert.Equal(t, author.ID, updated.AuthorID)
}

func TestPostEditByNonAuthorLeavesPostUnchanged(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "vera")
	other := createTestUser(t, s.db, "wade")
	post := createTestPost(t, s.db, author.ID, "original")

	path := fmt.Sprintf("/posts/%d/edit/", post.ID)
	resp, err := app.Test(formRequest(t, path, sessionFor(t, s, other), url.Values{"text": {"hijacked"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), resp.Header.Get("Location"))

	var unchanged models.Post
	require.NoError(t, s.db.First(&unchanged, post.ID).Error)
	assert.Equal(t, "original", unchanged.Text)
}

func TestPostEditClearsGroup(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "xena")
	group := createTestGroup(t, s.db, "old-group")
	post := &models.Post{Text: "grouped", AuthorID: author.ID, GroupID: &group.ID}
	require.NoError(t, s.db.Create(post).Error)

	path := fmt.Sprintf("/posts/%d/edit/", post.ID)
	resp, err := app.Test(formRequest(t, path, sessionFor(t, s, author), url.Values{"text": {"grouped"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var updated models.Post
	require.NoError(t, s.db.First(&updated, post.ID).Error)
	assert.Nil(t, updated.GroupID)
}
