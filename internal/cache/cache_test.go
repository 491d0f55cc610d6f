package cache

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/anuragpatel/minisocial-service/internal/types"
	"github.com/anuragpatel/minisocial-service/internal/types/users"
)

// countingStorage serves a fixed feed and counts how often it is queried.
type countingStorage struct {
	feedQueries int
	posts       []types.Post
}

func (s *countingStorage) GetAllPosts(viewerID string) ([]types.Post, error) {
	s.feedQueries++
	return s.posts, nil
}

func (s *countingStorage) CreatePost(userID, content string) (string, error) {
	s.posts = append([]types.Post{{ID: fmt.Sprintf("%d", len(s.posts)+1), UserID: userID, Content: content}}, s.posts...)
	return s.posts[0].ID, nil
}

func (s *countingStorage) CreateUser(name, username, email, hashedPassword string, age int) (string, error) {
	return "", nil
}
func (s *countingStorage) GetUserByEmail(email string) (users.User, error) { return users.User{}, nil }
func (s *countingStorage) GetUserByID(id string) (users.User, error)      { return users.User{}, nil }
func (s *countingStorage) SetProfilePic(userID, objectKey string) error   { return nil }
func (s *countingStorage) ProfilePicKeys() ([]string, error)              { return nil, nil }
func (s *countingStorage) GetPostByID(id string) (types.Post, error)      { return types.Post{}, nil }
func (s *countingStorage) GetPostsByUser(userID, viewerID string) ([]types.Post, error) {
	return nil, nil
}
func (s *countingStorage) UpdatePostContent(postID, content string) error { return nil }
func (s *countingStorage) DeletePost(postID string) error                 { return nil }
func (s *countingStorage) TogglePostLike(postID, userID string) (bool, int, error) {
	return true, 1, nil
}

func setupCache(t *testing.T) (*CacheService, *countingStorage, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &countingStorage{posts: []types.Post{{ID: "1", UserID: "9", Content: "hello"}}}

	cleanup := func() {
		redisClient.Close()
		mr.Close()
	}

	return NewCacheService(store, redisClient), store, cleanup
}

func TestFeedIsCached(t *testing.T) {
	svc, store, cleanup := setupCache(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		posts, err := svc.GetAllPosts("7")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(posts) != 1 || posts[0].Content != "hello" {
			t.Fatalf("Unexpected feed contents: %+v", posts)
		}
	}

	if store.feedQueries != 1 {
		t.Fatalf("Expected 1 storage query, got %d", store.feedQueries)
	}
}

func TestFeedCachedPerViewer(t *testing.T) {
	svc, store, cleanup := setupCache(t)
	defer cleanup()

	if _, err := svc.GetAllPosts("7"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := svc.GetAllPosts("8"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if store.feedQueries != 2 {
		t.Fatalf("Expected separate cache entries per viewer, got %d storage queries", store.feedQueries)
	}
}

func TestMutationInvalidatesFeed(t *testing.T) {
	svc, store, cleanup := setupCache(t)
	defer cleanup()

	if _, err := svc.GetAllPosts("7"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := svc.CreatePost("7", "fresh"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	posts, err := svc.GetAllPosts("7")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(posts) != 2 || posts[0].Content != "fresh" {
		t.Fatalf("Expected invalidated feed to include new post, got %+v", posts)
	}
	if store.feedQueries != 2 {
		t.Fatalf("Expected 2 storage queries after invalidation, got %d", store.feedQueries)
	}
}

func TestToggleLikeInvalidatesFeed(t *testing.T) {
	svc, store, cleanup := setupCache(t)
	defer cleanup()

	if _, err := svc.GetAllPosts("7"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	liked, count, err := svc.TogglePostLike("1", "7")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !liked || count != 1 {
		t.Fatalf("Unexpected toggle result: %v %d", liked, count)
	}

	if _, err := svc.GetAllPosts("7"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.feedQueries != 2 {
		t.Fatalf("Expected feed refetch after like toggle, got %d storage queries", store.feedQueries)
	}
}
