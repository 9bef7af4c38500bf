// Package forms validates user-submitted post and comment data and
// binds it onto unpersisted entities. Forms never infer authorship;
// the caller attaches the authenticated user before saving.
package forms

import (
	"strings"

	"quill/internal/models"
)

// Errors maps field names to validation messages.
type Errors map[string]string

// Has reports whether the field carries an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// PostForm carries the user-submitted fields of a post.
type PostForm struct {
	Text    string `json:"text" form:"text"`
	GroupID *uint  `json:"group" form:"group"`
	Image   string `json:"-" form:"-"`
}

// Validate checks the form and returns field-level errors. Text must
// be present and not whitespace-only; the remaining fields are bound
// as-is without normalization.
func (f *PostForm) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = "Text is required"
	}
	return errs
}

// Post returns a not-yet-persisted post bound from the form. The
// author is left unset for the caller to fill in.
func (f *PostForm) Post() *models.Post {
	return &models.Post{
		Text:    f.Text,
		GroupID: f.GroupID,
		Image:   f.Image,
	}
}

// Apply binds the form's fields onto an existing post, preserving its
// identity, author and creation time. An empty image means the upload
// was omitted and the stored image is kept. The loaded group
// association is dropped so a stale one cannot win over the bound
// group id when the post is saved.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text
	post.GroupID = f.GroupID
	post.Group = nil
	if f.Image != "" {
		post.Image = f.Image
	}
}

// CommentForm carries the user-submitted fields of a comment.
type CommentForm struct {
	Text string `json:"text" form:"text"`
}

// Validate checks the form and returns field-level errors.
func (f *CommentForm) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = "Text is required"
	}
	return errs
}

// Comment returns a not-yet-persisted comment bound from the form.
// Author and post are left for the caller.
func (f *CommentForm) Comment() *models.Comment {
	return &models.Comment{Text: f.Text}
}
