package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommentRequiresLogin(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "ada")
	createTestPost(t, s.db, author.ID, "commentable")

	resp, err := app.Test(formRequest(t, "/posts/1/comment/", "", url.Values{"text": {"hi"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login/?next=/posts/1/comment/", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAddComment(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "ben")
	commenter := createTestUser(t, s.db, "cleo")
	post := createTestPost(t, s.db, author.ID, "commentable")

	path := fmt.Sprintf("/posts/%d/comment/", post.ID)
	resp, err := app.Test(formRequest(t, path, sessionFor(t, s, commenter), url.Values{"text": {"well said"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), resp.Header.Get("Location"))

	var comment models.Comment
	require.NoError(t, s.db.First(&comment).Error)
	assert.Equal(t, "well said", comment.Text)
	assert.Equal(t, commenter.ID, comment.AuthorID)
	require.NotNil(t, comment.PostID)
	assert.Equal(t, post.ID, *comment.PostID)
}

func TestAddCommentWhitespaceTextRejected(t *testing.T) {
	s, app, _ := newTestServer(t)
	author := createTestUser(t, s.db, "dean")
	post := createTestPost(t, s.db, author.ID, "commentable")

	path := fmt.Sprintf("/posts/%d/comment/", post.ID)
	resp, err := app.Test(formRequest(t, path, sessionFor(t, s, author), url.Values{"text": {"  \t "}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &payload))
	assert.Contains(t, payload.Errors, "text")

	var count int64
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAddCommentUnknownPost(t *testing.T) {
	s, app, _ := newTestServer(t)
	commenter := createTestUser(t, s.db, "elle")

	resp, err := app.Test(formRequest(t, "/posts/999/comment/", sessionFor(t, s, commenter), url.Values{"text": {"hi"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
