package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ResourceKeyPrefix = "resource:%d"
	CategoriesKey     = "resources:categories"
)

const (
	ResourceTTL   = 5 * time.Minute
	CategoriesTTL = 10 * time.Minute
)

func ResourceKey(resourceID uint) string {
	return fmt.Sprintf(ResourceKeyPrefix, resourceID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateResource drops the cached resource and the derived category list.
func InvalidateResource(ctx context.Context, resourceID uint) {
	Invalidate(ctx, ResourceKey(resourceID))
	Invalidate(ctx, CategoriesKey)
}
