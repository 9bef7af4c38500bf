// Package server contains the HTTP handlers for the application's routes.
package server

import (
	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// FollowIndex handles GET /follow/. It lists posts from the authors
// the session user follows, newest first.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := s.currentUserID(c)

	authorIDs, err := s.followRepo.AuthorIDs(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	total, err := s.postRepo.CountByAuthors(ctx, authorIDs)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	window := pagination.Paginate(c.Query("page"), total)

	posts, err := s.postRepo.ListByAuthors(ctx, authorIDs, window.Limit, window.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(postPage{Page: window, Posts: posts})
}

// ProfileFollow handles GET /profile/:username/follow/. Following
// yourself or someone you already follow changes nothing; either way
// the client lands back on the profile.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := s.currentUserID(c)

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", 0))
	}

	if author.ID != userID {
		exists, err := s.followRepo.Exists(ctx, userID, author.ID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !exists {
			follow := &models.Follow{UserID: userID, AuthorID: author.ID}
			if err := s.followRepo.Create(ctx, follow); err != nil {
				return models.RespondWithError(c, fiber.StatusInternalServerError, err)
			}
		}
	}

	return c.Redirect("/profile/"+author.Username+"/", fiber.StatusFound)
}

// ProfileUnfollow handles GET /profile/:username/unfollow/. Removing
// a follow that does not exist is a no-op.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := s.currentUserID(c)

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", 0))
	}

	if err := s.followRepo.Delete(ctx, userID, author.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect("/profile/"+author.Username+"/", fiber.StatusFound)
}
