package storage

import (
	"errors"

	"github.com/anuragpatel/minisocial-service/internal/types"
	"github.com/anuragpatel/minisocial-service/internal/types/users"
)

var (
	// ErrNotFound is returned when a user or post does not exist for the given id.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateEmail is returned when registering with an email that is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

type Storage interface {
	CreateUser(name, username, email, hashedPassword string, age int) (string, error)
	GetUserByEmail(email string) (users.User, error)
	GetUserByID(id string) (users.User, error)
	SetProfilePic(userID, objectKey string) error
	ProfilePicKeys() ([]string, error)

	CreatePost(userID, content string) (string, error)
	GetPostByID(id string) (types.Post, error)
	// GetAllPosts returns every post newest-first with author metadata and
	// like state relative to viewerID.
	GetAllPosts(viewerID string) ([]types.Post, error)
	GetPostsByUser(userID, viewerID string) ([]types.Post, error)
	UpdatePostContent(postID, content string) error
	DeletePost(postID string) error
	// TogglePostLike adds userID to the post's like set if absent, removes it
	// if present. Atomic per post. Returns the resulting membership and count.
	TogglePostLike(postID, userID string) (bool, int, error)
}
