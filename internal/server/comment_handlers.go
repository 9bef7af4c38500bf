// Package server contains the HTTP handlers for the application's routes.
package server

import (
	"quill/internal/forms"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment/. Invalid submissions
// come back with field errors; the comment's author is always the
// session user.
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := s.currentUserID(c)
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	form := &forms.CommentForm{Text: c.FormValue("text")}
	if errs := form.Validate(); len(errs) > 0 {
		return c.JSON(fiber.Map{"form": form, "errors": errs, "post_id": post.ID})
	}

	comment := form.Comment()
	comment.PostID = &post.ID
	comment.AuthorID = userID
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return s.redirectToPost(c, post.ID)
}
