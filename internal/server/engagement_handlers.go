package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles PUT /post/like/:id
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	likes, err := s.engagementService.Like(c.UserContext(), userID, postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"likes": likes,
		"count": len(likes),
	})
}

// UnlikePost handles PUT /post/unlike/:id
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	likes, err := s.engagementService.Unlike(c.UserContext(), userID, postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"likes": likes,
		"count": len(likes),
	})
}

// GetLikeCount handles GET /post/likes/:id. A missing post reports zero
// likes rather than an error.
func (s *Server) GetLikeCount(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	count, err := s.engagementService.LikeCount(c.UserContext(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// CreateComment handles POST /post/comment/:id
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comments, err := s.engagementService.AddComment(c.UserContext(), userID, postID, req.Text)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"comments": comments,
		"count":    len(comments),
	})
}

// GetComments handles GET /post/comments/:id
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	comments, err := s.engagementService.ListComments(c.UserContext(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"comments": comments,
		"count":    len(comments),
	})
}

// DeleteComment handles DELETE /post/:id/:comment_id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "comment_id", "comment ID")
	if err != nil {
		return nil
	}

	if err := s.engagementService.DeleteComment(c.UserContext(), userID, postID, commentID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
