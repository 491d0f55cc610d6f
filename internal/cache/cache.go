package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/anuragpatel/minisocial-service/internal/storage"
	"github.com/anuragpatel/minisocial-service/internal/types"
	"github.com/anuragpatel/minisocial-service/internal/types/users"
)

// CacheService wraps storage with Redis caching of the post feed. Every post
// mutation invalidates all feed entries, since the feed is global and each
// viewer's copy carries viewer-specific like state.
type CacheService struct {
	storage storage.Storage
	redis   *redis.Client
}

// NewCacheService creates a new cache service
func NewCacheService(storage storage.Storage, redisClient *redis.Client) *CacheService {
	return &CacheService{
		storage: storage,
		redis:   redisClient,
	}
}

const (
	feedCacheKey     = "feed:user:%s" // feed:user:viewerID
	feedCachePattern = "feed:user:*"
)

// Short TTL keeps the feed hot without letting stale like counts linger.
const feedCacheDuration = 45 * time.Second

// GetAllPosts returns the cached feed for the viewer or fetches from the database.
func (c *CacheService) GetAllPosts(viewerID string) ([]types.Post, error) {
	ctx := context.Background()
	key := fmt.Sprintf(feedCacheKey, viewerID)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var posts []types.Post
		if err := json.Unmarshal([]byte(cached), &posts); err == nil {
			return posts, nil
		}
	}

	posts, err := c.storage.GetAllPosts(viewerID)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(posts)
	c.redis.Set(ctx, key, data, feedCacheDuration)

	return posts, nil
}

// InvalidateFeeds drops every cached feed copy.
func (c *CacheService) InvalidateFeeds(ctx context.Context) {
	keys, err := c.redis.Keys(ctx, feedCachePattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}

	c.redis.Del(ctx, keys...)
}

// Mutating operations pass through to storage and invalidate the feed.

func (c *CacheService) CreatePost(userID, content string) (string, error) {
	postID, err := c.storage.CreatePost(userID, content)
	if err != nil {
		return "", err
	}

	c.InvalidateFeeds(context.Background())
	return postID, nil
}

func (c *CacheService) UpdatePostContent(postID, content string) error {
	err := c.storage.UpdatePostContent(postID, content)
	if err != nil {
		return err
	}

	c.InvalidateFeeds(context.Background())
	return nil
}

func (c *CacheService) DeletePost(postID string) error {
	err := c.storage.DeletePost(postID)
	if err != nil {
		return err
	}

	c.InvalidateFeeds(context.Background())
	return nil
}

func (c *CacheService) TogglePostLike(postID, userID string) (bool, int, error) {
	liked, count, err := c.storage.TogglePostLike(postID, userID)
	if err != nil {
		return false, 0, err
	}

	c.InvalidateFeeds(context.Background())
	return liked, count, nil
}

// Remaining operations pass through to storage unchanged.

func (c *CacheService) CreateUser(name, username, email, hashedPassword string, age int) (string, error) {
	return c.storage.CreateUser(name, username, email, hashedPassword, age)
}

func (c *CacheService) GetUserByEmail(email string) (users.User, error) {
	return c.storage.GetUserByEmail(email)
}

func (c *CacheService) GetUserByID(id string) (users.User, error) {
	return c.storage.GetUserByID(id)
}

func (c *CacheService) SetProfilePic(userID, objectKey string) error {
	return c.storage.SetProfilePic(userID, objectKey)
}

func (c *CacheService) ProfilePicKeys() ([]string, error) {
	return c.storage.ProfilePicKeys()
}

func (c *CacheService) GetPostByID(id string) (types.Post, error) {
	return c.storage.GetPostByID(id)
}

func (c *CacheService) GetPostsByUser(userID, viewerID string) ([]types.Post, error) {
	return c.storage.GetPostsByUser(userID, viewerID)
}
