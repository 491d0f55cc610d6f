package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/anuragpatel/minisocial-service/internal/http/middleware"
	"github.com/anuragpatel/minisocial-service/internal/storage"
	"github.com/anuragpatel/minisocial-service/internal/types"
	"github.com/anuragpatel/minisocial-service/internal/types/users"
)

// memStorage is an in-memory Storage used to exercise the handlers.
type memStorage struct {
	mu     sync.Mutex
	nextID int
	users  map[string]users.User
	posts  map[string]*memPost
}

type memPost struct {
	id      string
	userID  string
	content string
	seq     int
	likes   map[string]bool
}

func newMemStorage() *memStorage {
	return &memStorage{
		users: make(map[string]users.User),
		posts: make(map[string]*memPost),
	}
}

func (s *memStorage) CreateUser(name, username, email, hashedPassword string, age int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return "", storage.ErrDuplicateEmail
		}
	}

	s.nextID++
	id := fmt.Sprintf("%d", s.nextID)
	s.users[id] = users.User{ID: id, Name: name, Username: username, Email: email, Password: hashedPassword, Age: age}
	return id, nil
}

func (s *memStorage) GetUserByEmail(email string) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, storage.ErrNotFound
}

func (s *memStorage) GetUserByID(id string) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return users.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *memStorage) SetProfilePic(userID, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.ProfilePic = objectKey
	s.users[userID] = u
	return nil
}

func (s *memStorage) ProfilePicKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for _, u := range s.users {
		if u.ProfilePic != "" {
			keys = append(keys, u.ProfilePic)
		}
	}
	return keys, nil
}

func (s *memStorage) CreatePost(userID, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := fmt.Sprintf("%d", s.nextID)
	s.posts[id] = &memPost{id: id, userID: userID, content: content, seq: s.nextID, likes: make(map[string]bool)}
	return id, nil
}

func (s *memStorage) toPost(p *memPost, viewerID string) types.Post {
	u := s.users[p.userID]
	return types.Post{
		ID:        p.id,
		UserID:    p.userID,
		Username:  u.Username,
		Content:   p.content,
		LikeCount: len(p.likes),
		LikedByMe: p.likes[viewerID],
	}
}

func (s *memStorage) GetPostByID(id string) (types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return types.Post{}, storage.ErrNotFound
	}
	return s.toPost(p, ""), nil
}

func (s *memStorage) GetAllPosts(viewerID string) ([]types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []*memPost
	for _, p := range s.posts {
		raw = append(raw, p)
	}
	sort.Slice(raw, func(i, j int) bool { return raw[i].seq > raw[j].seq })

	var posts []types.Post
	for _, p := range raw {
		posts = append(posts, s.toPost(p, viewerID))
	}
	return posts, nil
}

func (s *memStorage) GetPostsByUser(userID, viewerID string) ([]types.Post, error) {
	all, _ := s.GetAllPosts(viewerID)
	var posts []types.Post
	for _, p := range all {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (s *memStorage) UpdatePostContent(postID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	p.content = content
	return nil
}

func (s *memStorage) DeletePost(postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, postID)
	return nil
}

func (s *memStorage) TogglePostLike(postID, userID string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return false, 0, storage.ErrNotFound
	}

	if p.likes[userID] {
		delete(p.likes, userID)
		return false, len(p.likes), nil
	}
	p.likes[userID] = true
	return true, len(p.likes), nil
}

// recordingPublisher captures published like events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishPostLiked(postID, likerID, authorID string, likeCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, postID+":"+likerID+":"+authorID)
	return nil
}

type nopResolver struct{}

func (nopResolver) PublicURL(objectKey string) string { return objectKey }

func seedUser(t *testing.T, store *memStorage, email string) string {
	id, err := store.CreateUser("Test User", "tester", email, "hashed", 30)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return id
}

func authedRequest(method, target, userID, email string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := middleware.WithIdentity(req.Context(), middleware.Identity{Email: email, UserID: userID})
	return req.WithContext(ctx)
}

func doLike(t *testing.T, store *memStorage, pub *recordingPublisher, postID, userID string) types.LikeResult {
	req := authedRequest(http.MethodPost, "/like/"+postID, userID, "u@x.com", nil)
	req.SetPathValue("id", postID)

	rec := httptest.NewRecorder()
	Like(store, pub)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Data types.LikeResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Data
}

func TestLikeTogglePair(t *testing.T) {
	store := newMemStorage()
	pub := &recordingPublisher{}
	userID := seedUser(t, store, "a@x.com")
	postID, _ := store.CreatePost(userID, "hello")

	result := doLike(t, store, pub, postID, userID)
	if !result.Liked || result.LikeCount != 1 {
		t.Fatalf("Expected liked with count 1, got %+v", result)
	}

	result = doLike(t, store, pub, postID, userID)
	if result.Liked || result.LikeCount != 0 {
		t.Fatalf("Expected unliked with count 0, got %+v", result)
	}
}

func TestLikePublishesToAuthor(t *testing.T) {
	store := newMemStorage()
	pub := &recordingPublisher{}
	author := seedUser(t, store, "a@x.com")
	liker := seedUser(t, store, "b@x.com")
	postID, _ := store.CreatePost(author, "hello")

	doLike(t, store, pub, postID, liker)

	if len(pub.events) != 1 || pub.events[0] != postID+":"+liker+":"+author {
		t.Fatalf("Expected one like event to the author, got %v", pub.events)
	}

	// Unlike does not publish
	doLike(t, store, pub, postID, liker)
	if len(pub.events) != 1 {
		t.Fatalf("Expected no event on unlike, got %v", pub.events)
	}
}

func TestLikeMissingPost(t *testing.T) {
	store := newMemStorage()
	userID := seedUser(t, store, "a@x.com")

	req := authedRequest(http.MethodPost, "/like/999", userID, "a@x.com", nil)
	req.SetPathValue("id", "999")

	rec := httptest.NewRecorder()
	Like(store, &recordingPublisher{})(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestConcurrentLikesByDistinctUsers(t *testing.T) {
	store := newMemStorage()
	author := seedUser(t, store, "a@x.com")
	postID, _ := store.CreatePost(author, "hello")

	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, seedUser(t, store, fmt.Sprintf("user%d@x.com", i)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, _, err := store.TogglePostLike(postID, userID)
			if err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Unexpected error: %v", err)
	}

	post, err := store.GetPostByID(postID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if post.LikeCount != len(ids) {
		t.Fatalf("Expected %d likes recorded, got %d", len(ids), post.LikeCount)
	}
}

func TestDeleteRemovesPostAndOwnerListEntry(t *testing.T) {
	store := newMemStorage()
	userID := seedUser(t, store, "a@x.com")
	postID, _ := store.CreatePost(userID, "hello")

	req := authedRequest(http.MethodPost, "/delete/"+postID, userID, "a@x.com", nil)
	req.SetPathValue("id", postID)

	rec := httptest.NewRecorder()
	Delete(store)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected %d, got %d", http.StatusOK, rec.Code)
	}

	if _, err := store.GetPostByID(postID); err != storage.ErrNotFound {
		t.Fatalf("Expected post to be gone, got %v", err)
	}

	owned, _ := store.GetPostsByUser(userID, userID)
	if len(owned) != 0 {
		t.Fatalf("Expected owner's post list to be empty, got %d entries", len(owned))
	}
}

func TestDeleteMissingPost(t *testing.T) {
	store := newMemStorage()
	userID := seedUser(t, store, "a@x.com")

	req := authedRequest(http.MethodPost, "/delete/999", userID, "a@x.com", nil)
	req.SetPathValue("id", "999")

	rec := httptest.NewRecorder()
	Delete(store)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUpdateMissingPost(t *testing.T) {
	store := newMemStorage()
	userID := seedUser(t, store, "a@x.com")
	body, _ := json.Marshal(types.PostUpdateRequest{Content: "edited"})

	req := authedRequest(http.MethodPost, "/updatepost/999", userID, "a@x.com", body)
	req.SetPathValue("id", "999")

	rec := httptest.NewRecorder()
	Update(store)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

// Any authenticated user may edit any post; ownership is not checked.
func TestUpdateByNonOwner(t *testing.T) {
	store := newMemStorage()
	author := seedUser(t, store, "a@x.com")
	other := seedUser(t, store, "b@x.com")
	postID, _ := store.CreatePost(author, "original")

	body, _ := json.Marshal(types.PostUpdateRequest{Content: "edited by someone else"})
	req := authedRequest(http.MethodPost, "/updatepost/"+postID, other, "b@x.com", body)
	req.SetPathValue("id", postID)

	rec := httptest.NewRecorder()
	Update(store)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected %d, got %d", http.StatusOK, rec.Code)
	}

	post, _ := store.GetPostByID(postID)
	if post.Content != "edited by someone else" {
		t.Fatalf("Expected content to be updated, got %q", post.Content)
	}
}

func feedContents(t *testing.T, store *memStorage, userID string) []types.Post {
	req := authedRequest(http.MethodGet, "/allpost", userID, "a@x.com", nil)
	rec := httptest.NewRecorder()
	All(store, nopResolver{})(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Data []types.Post `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Data
}

func TestFeedNewestFirst(t *testing.T) {
	store := newMemStorage()
	userID := seedUser(t, store, "a@x.com")
	store.CreatePost(userID, "first")
	store.CreatePost(userID, "second")
	store.CreatePost(userID, "third")

	posts := feedContents(t, store, userID)
	if len(posts) != 3 {
		t.Fatalf("Expected 3 posts, got %d", len(posts))
	}
	for i, want := range []string{"third", "second", "first"} {
		if posts[i].Content != want {
			t.Fatalf("Expected post %d to be %q, got %q", i, want, posts[i].Content)
		}
	}
}

// Full lifecycle: create a post, see it in the feed, like it, unlike it,
// delete it, see it gone.
func TestPostLifecycle(t *testing.T) {
	store := newMemStorage()
	pub := &recordingPublisher{}
	userID := seedUser(t, store, "a@x.com")

	body, _ := json.Marshal(types.PostCreateRequest{Content: "hello"})
	req := authedRequest(http.MethodPost, "/post", userID, "a@x.com", body)
	rec := httptest.NewRecorder()
	Create(store)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected %d, got %d", http.StatusCreated, rec.Code)
	}

	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	postID := created["id"]

	posts := feedContents(t, store, userID)
	if len(posts) != 1 || posts[0].Content != "hello" {
		t.Fatalf("Expected feed with the new post, got %+v", posts)
	}

	result := doLike(t, store, pub, postID, userID)
	if !result.Liked || result.LikeCount != 1 {
		t.Fatalf("Expected like count 1, got %+v", result)
	}

	result = doLike(t, store, pub, postID, userID)
	if result.Liked || result.LikeCount != 0 {
		t.Fatalf("Expected like count 0 after unlike, got %+v", result)
	}

	delReq := authedRequest(http.MethodPost, "/delete/"+postID, userID, "a@x.com", nil)
	delReq.SetPathValue("id", postID)
	delRec := httptest.NewRecorder()
	Delete(store)(delRec, delReq)

	if delRec.Code != http.StatusOK {
		t.Fatalf("Expected %d, got %d", http.StatusOK, delRec.Code)
	}

	if posts := feedContents(t, store, userID); len(posts) != 0 {
		t.Fatalf("Expected empty feed after delete, got %+v", posts)
	}
}
