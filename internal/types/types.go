package types

// Post is a single text post as returned by feed and profile queries.
// Username, ProfilePicURL, LikeCount and LikedByMe are derived from joins
// against the author and the like set.
type Post struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Username      string `json:"username,omitempty"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
	LikeCount     int    `json:"like_count"`
	LikedByMe     bool   `json:"liked_by_me"`
}

type PostCreateRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type PostUpdateRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type LikeResult struct {
	PostID    string `json:"post_id"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}
