package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// EngagementService provides like and comment business logic.
type EngagementService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

// NewEngagementService returns a new EngagementService.
func NewEngagementService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
) *EngagementService {
	return &EngagementService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

// Like records that the user liked the post. Liking twice is an error, not a
// no-op. Returns the updated like list, newest first.
func (s *EngagementService) Like(ctx context.Context, userID, postID uint) ([]*models.Like, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return nil, err
	}
	observability.EngagementTotal.WithLabelValues("like").Inc()
	return s.postRepo.ListLikes(ctx, postID)
}

// Unlike removes the user's like from the post.
func (s *EngagementService) Unlike(ctx context.Context, userID, postID uint) ([]*models.Like, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	observability.EngagementTotal.WithLabelValues("unlike").Inc()
	return s.postRepo.ListLikes(ctx, postID)
}

// LikeCount reports how many likes a post has. A missing post simply counts
// as zero.
func (s *EngagementService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	return s.postRepo.CountLikes(ctx, postID)
}

// AddComment attaches a comment to the post, stamping the author's username
// at creation time. Returns the updated comment list, newest first.
func (s *EngagementService) AddComment(ctx context.Context, userID uint, postID uint, text string) ([]*models.Comment, error) {
	if err := validation.ValidateCommentText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     text,
		UserName: user.Username,
		UserID:   userID,
		PostID:   postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.EngagementTotal.WithLabelValues("comment").Inc()
	return s.commentRepo.ListByPost(ctx, postID)
}

// ListComments returns the post's comments, newest first.
func (s *EngagementService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// DeleteComment removes a single comment. Only its author may delete it, and
// the comment must belong to the named post.
func (s *EngagementService) DeleteComment(ctx context.Context, requesterID, postID, commentID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return models.NewNotFoundError("Comment", commentID)
	}
	if comment.UserID != requesterID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
