package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// Posts are listed in fixed-size pages of the most recent entries.
const recentPostLimit = 20

// PostService provides post business logic.
type PostService struct {
	postRepo repository.PostRepository
}

// CreatePostInput is the input for creating a post.
type CreatePostInput struct {
	UserID    uint
	Title     string
	Summary   string
	Content   string
	ImagePath string
}

// UpdatePostInput is the input for updating a post. ImagePath is applied only
// when non-empty, so updates without a new upload keep the old image.
type UpdatePostInput struct {
	PostID    uint
	UserID    uint
	Title     string
	Summary   string
	Content   string
	ImagePath string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost validates input and persists a new post authored by the caller.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostFields(in.Title, in.Summary, in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Title:     in.Title,
		Summary:   in.Summary,
		Content:   in.Content,
		ImagePath: in.ImagePath,
		UserID:    in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns the most recent posts, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx, recentPostLimit)
}

// GetPost fetches a single post with author and counts.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost overwrites the editable fields of a post owned by the caller.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostFields(in.Title, in.Summary, in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	post.Title = in.Title
	post.Summary = in.Summary
	post.Content = in.Content
	if in.ImagePath != "" {
		post.ImagePath = in.ImagePath
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes a post owned by the caller.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}
