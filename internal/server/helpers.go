// Package server contains the HTTP handlers for the application's routes.
package server

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"quill/internal/cache"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// sessionCookie carries the signed token for browser clients. API
// clients may send the same token as a Bearer header instead.
const sessionCookie = "session"

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 404 response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", 0))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// extractToken pulls the signed token from the session cookie, falling
// back to a Bearer Authorization header.
func extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(sessionCookie); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// parseToken validates a signed token and returns the user ID and JTI.
func (s *Server) parseToken(tokenString string) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "quill-api" {
		return 0, "", errors.New("invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "quill-client" {
		return 0, "", errors.New("invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", errors.New("invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, "", errors.New("invalid user ID in token")
	}

	jti, _ := claims["jti"].(string)
	return uint(userID), jti, nil
}

// LoginRequired returns middleware that authenticates the request.
// Unauthenticated requests are sent to the login page with the
// original URL carried in the next parameter.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return s.redirectToLogin(c)
		}

		userID, jti, err := s.parseToken(tokenString)
		if err != nil {
			return s.redirectToLogin(c)
		}

		if jti != "" && cache.IsTokenBlacklisted(c.Context(), jti) {
			return s.redirectToLogin(c)
		}

		// Store user ID in context
		c.Locals("userID", userID)
		// Sync to UserContext for logging
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// redirectToLogin sends the client to the login page, preserving the
// requested URL so login can return them there.
func (s *Server) redirectToLogin(c *fiber.Ctx) error {
	return c.Redirect("/auth/login/?next="+c.OriginalURL(), fiber.StatusFound)
}

// currentUserID returns the authenticated user's ID. Only valid after
// LoginRequired has run.
func (s *Server) currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// optionalUserID attempts to authenticate the request but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := extractToken(c)
	if tokenString == "" {
		return 0, false
	}

	userID, jti, err := s.parseToken(tokenString)
	if err != nil {
		return 0, false
	}
	if jti != "" && cache.IsTokenBlacklisted(c.Context(), jti) {
		return 0, false
	}
	return userID, true
}

// safeNext validates a post-login destination. Only local paths are
// allowed so the parameter cannot send users off-site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

// truncateRunes shortens s to at most n runes, the way listing pages
// preview a post's text.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
