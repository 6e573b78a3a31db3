package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PageKeyPrefix     = "page:%s"
	CategoriesListKey = "categories:list"
	ThreadKeyPrefix   = "thread:%d"
	TagsListKey       = "tags:list"
)

const (
	UserTTL       = 5 * time.Minute
	PageTTL       = 10 * time.Minute
	ThreadTTL     = 2 * time.Minute
	CategoriesTTL = 10 * time.Minute
	TagsTTL       = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PageKey(slug string) string {
	return fmt.Sprintf(PageKeyPrefix, slug)
}

func ThreadKey(threadID uint) string {
	return fmt.Sprintf(ThreadKeyPrefix, threadID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePage(ctx context.Context, slug string) {
	Invalidate(ctx, PageKey(slug))
}

func InvalidateThread(ctx context.Context, threadID uint) {
	Invalidate(ctx, ThreadKey(threadID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesListKey)
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagsListKey)
}
