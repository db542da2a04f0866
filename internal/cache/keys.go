package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	postKeyPrefix      = "post:%d"
	postsListKey       = "posts:latest"
	likeCountKeyPrefix = "post:%d:likes"
)

const (
	PostTTL      = 5 * time.Minute
	ListTTL      = 30 * time.Second
	LikeCountTTL = 30 * time.Second
)

func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

func PostsListKey() string {
	return postsListKey
}

func LikeCountKey(postID uint) string {
	return fmt.Sprintf(likeCountKeyPrefix, postID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePost drops the cached post, its like count, and the latest list.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), LikeCountKey(postID), postsListKey)
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, postsListKey)
}
