// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post and like data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error

	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	ListLikes(ctx context.Context, postID uint) ([]*models.Like, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post

	key := cache.PostKey(id)
	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		return r.applyPostDetails(r.db.WithContext(ctx)).
			Preload("User").
			First(&post, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post

	key := cache.PostsListKey()
	err := cache.Aside(ctx, key, &posts, cache.ListTTL, func() error {
		return r.applyPostDetails(r.db.WithContext(ctx)).
			Preload("User").
			Order("created_at DESC").
			Limit(limit).
			Find(&posts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch like and comment counts in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// Like inserts a like for (userID, postID). The insert is conditional on the
// unique (user_id, post_id) index, so concurrent duplicate likes cannot
// produce two rows; the loser of the race observes zero affected rows.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewAlreadyLikedError()
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotLikedError()
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) ListLikes(ctx context.Context, postID uint) ([]*models.Like, error) {
	var likes []*models.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&likes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

// CountLikes returns 0 for posts that do not exist; an absent post simply has
// no likes.
func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64

	key := cache.LikeCountKey(postID)
	err := cache.Aside(ctx, key, &count, cache.LikeCountTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Like{}).
			Where("post_id = ?", postID).
			Count(&count).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
