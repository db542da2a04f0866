package server

import (
	"mime/multipart"
	"strconv"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// saveUpload stores the uploaded file and returns the path to persist.
func (s *Server) saveUpload(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer src.Close()

	path, err := s.blobStore.Save(c.UserContext(), file.Filename, src, file.Size)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return path, nil
}

// CreatePost handles POST /post (multipart form: image file + title, summary,
// content fields).
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image file is required"))
	}

	imagePath, err := s.saveUpload(c, file)
	if err != nil {
		return s.fail(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:    userID,
		Title:     c.FormValue("title"),
		Summary:   c.FormValue("summary"),
		Content:   c.FormValue("content"),
		ImagePath: imagePath,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListPosts handles GET /post
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /post/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /post (multipart form: id field, optional new image).
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := strconv.ParseUint(c.FormValue("id"), 10, 32)
	if err != nil || postID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	imagePath := ""
	if file, fileErr := c.FormFile("image"); fileErr == nil {
		imagePath, err = s.saveUpload(c, file)
		if err != nil {
			return s.fail(c, err)
		}
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		PostID:    uint(postID),
		UserID:    userID,
		Title:     c.FormValue("title"),
		Summary:   c.FormValue("summary"),
		Content:   c.FormValue("content"),
		ImagePath: imagePath,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /post/delete/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), userID, id); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
