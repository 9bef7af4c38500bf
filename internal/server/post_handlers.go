// Package server contains the HTTP handlers for the application's routes.
package server

import (
	"errors"
	"strconv"

	"quill/internal/cache"
	"quill/internal/forms"
	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// postPage is the payload for any paginated post listing.
type postPage struct {
	Page  pagination.Window `json:"page"`
	Posts []*models.Post    `json:"posts"`
}

const titlePreviewRunes = 30

// Index handles GET /. Each page is cached briefly, so new posts can
// take up to the cache TTL to appear.
func (s *Server) Index(c *fiber.Ctx) error {
	ctx := c.Context()
	rawPage := c.Query("page")

	// The cache is keyed by the requested page, before clamping,
	// mirroring how the page number appears in the URL.
	requested, err := strconv.Atoi(rawPage)
	if err != nil || requested < 1 {
		requested = 1
	}

	var payload postPage
	err = cache.Aside(ctx, cache.IndexKey(requested), &payload, cache.IndexTTL, func() error {
		total, err := s.postRepo.Count(ctx)
		if err != nil {
			return err
		}
		window := pagination.Paginate(rawPage, total)

		posts, err := s.postRepo.List(ctx, window.Limit, window.Offset)
		if err != nil {
			return err
		}

		payload = postPage{Page: window, Posts: posts}
		return nil
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(payload)
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	slug := c.Params("slug")

	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	total, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	window := pagination.Paginate(c.Query("page"), total)

	posts, err := s.postRepo.ListByGroup(ctx, group.ID, window.Limit, window.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"group": group,
		"page":  window,
		"posts": posts,
	})
}

// Profile handles GET /profile/:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Params("username")

	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", 0))
	}

	total, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	window := pagination.Paginate(c.Query("page"), total)

	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, window.Limit, window.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// A visitor sees whether they already follow this author
	following := false
	if viewerID, ok := s.optionalUserID(c); ok && viewerID != author.ID {
		following, err = s.followRepo.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	followers, err := s.followRepo.CountForAuthor(ctx, author.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"author":      author,
		"page":        window,
		"posts":       posts,
		"posts_total": total,
		"followers":   followers,
		"following":   following,
	})
}

// PostDetail handles GET /posts/:id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.Context()
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

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	authorTotal, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"post":               post,
		"title":              truncateRunes(post.Text, titlePreviewRunes),
		"comments":           comments,
		"author_total_posts": authorTotal,
	})
}

// PostCreate handles GET /create/. It supplies the group choices for
// the blank form.
func (s *Server) PostCreate(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"form":   forms.PostForm{},
		"groups": groups,
	})
}

// PostCreateSubmit handles POST /create/. Authorship always comes
// from the session, never from the submitted data.
func (s *Server) PostCreateSubmit(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := s.currentUserID(c)

	form, err := s.bindPostForm(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if errs := form.Validate(); len(errs) > 0 {
		return c.JSON(fiber.Map{"form": form, "errors": errs})
	}

	post := form.Post()
	post.AuthorID = userID
	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", userID))
	}

	return c.Redirect("/profile/"+author.Username+"/", fiber.StatusFound)
}

// PostEdit handles GET /posts/:id/edit/. Only the author may edit;
// anyone else is sent back to the post.
func (s *Server) PostEdit(c *fiber.Ctx) error {
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

	if post.AuthorID != userID {
		return s.redirectToPost(c, post.ID)
	}

	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"form":    forms.PostForm{Text: post.Text, GroupID: post.GroupID},
		"groups":  groups,
		"post":    post,
		"is_edit": true,
	})
}

// PostEditSubmit handles POST /posts/:id/edit/
func (s *Server) PostEditSubmit(c *fiber.Ctx) error {
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

	if post.AuthorID != userID {
		return s.redirectToPost(c, post.ID)
	}

	form, err := s.bindPostForm(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if errs := form.Validate(); len(errs) > 0 {
		return c.JSON(fiber.Map{"form": form, "errors": errs, "is_edit": true})
	}

	form.Apply(post)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return s.redirectToPost(c, post.ID)
}

// bindPostForm reads the submitted post fields, saving an uploaded
// image when one was attached.
func (s *Server) bindPostForm(c *fiber.Ctx) (*forms.PostForm, error) {
	form := &forms.PostForm{Text: c.FormValue("text")}

	if raw := c.FormValue("group"); raw != "" {
		groupID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, errors.New("Invalid group")
		}
		id := uint(groupID)
		form.GroupID = &id
	}

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		path, err := s.media.SavePostImage(fh)
		if err != nil {
			return nil, err
		}
		form.Image = path
	}

	return form, nil
}

func (s *Server) redirectToPost(c *fiber.Ctx, id uint) error {
	return c.Redirect("/posts/"+strconv.FormatUint(uint64(id), 10)+"/", fiber.StatusFound)
}
