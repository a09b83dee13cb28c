package server

import (
	"errors"
	"log/slog"
	"strings"

	"anonwall/internal/middleware"
	"anonwall/internal/models"
	"anonwall/internal/wall"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError maps a service error onto the HTTP taxonomy. Unknown
// errors are logged and surfaced as a generic 500.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case "RATE_LIMITED":
			return models.RespondWithError(c, fiber.StatusTooManyRequests, appErr)
		}
	}
	middleware.Logger.ErrorContext(c.UserContext(), "wall operation failed",
		slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// PublishPost handles POST /api/posts
func (s *Server) PublishPost(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	post, err := s.wall.Publish(c.UserContext(), middleware.AnonID(c), req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"id": post.ID, "text": post.Text})
}

// GetPosts handles GET /api/posts?sort=hot|time
func (s *Server) GetPosts(c *fiber.Ctx) error {
	mode := wall.SortTime
	if c.Query("sort") == string(wall.SortHot) {
		mode = wall.SortHot
	}

	views, err := s.wall.List(c.UserContext(), middleware.AnonID(c), mode)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(views)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.setLikeState(c, true)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.setLikeState(c, false)
}

func (s *Server) setLikeState(c *fiber.Ctx, shouldLike bool) error {
	postID := strings.TrimSpace(c.Params("id"))
	if postID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid post id"))
	}

	status, err := s.wall.SetLikeState(c.UserContext(), postID, middleware.AnonID(c), shouldLike)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(status)
}
