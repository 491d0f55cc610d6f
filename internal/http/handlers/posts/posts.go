package posts

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/anuragpatel/minisocial-service/internal/events"
	"github.com/anuragpatel/minisocial-service/internal/http/middleware"
	"github.com/anuragpatel/minisocial-service/internal/storage"
	"github.com/anuragpatel/minisocial-service/internal/types"
	"github.com/anuragpatel/minisocial-service/internal/utils/response"
)

// MediaResolver turns stored object keys into public URLs.
type MediaResolver interface {
	PublicURL(objectKey string) string
}

// Create handles creating a new post
// @Summary Create a new post
// @Description Create a new text post owned by the authenticated user
// @Tags posts
// @Accept json
// @Produce json
// @Param post body types.PostCreateRequest true "Post content"
// @Success 201 {object} map[string]string "Post created successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /post [post]
func Create(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		var req types.PostCreateRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		validate := validator.New()
		err = validate.Struct(req)
		if err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		postID, err := store.CreatePost(id.UserID, req.Content)
		if err != nil {
			slog.Error("Failed to create post", slog.String("error", err.Error()), slog.String("user_id", id.UserID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to create post")))
			return
		}
		slog.Info("Post created", slog.String("post_id", postID), slog.String("user_id", id.UserID))

		response.WriteJSON(w, http.StatusCreated, map[string]string{"id": postID})
	}
}

// All handles the post feed endpoint
// @Summary Get all posts
// @Description Get every post newest-first with author and like metadata
// @Tags posts
// @Produce json
// @Success 200 {object} response.Response "Posts fetched successfully"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /allpost [get]
func All(store storage.Storage, media MediaResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		posts, err := store.GetAllPosts(id.UserID)
		if err != nil {
			slog.Error("Failed to fetch posts", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to fetch posts")))
			return
		}

		for i := range posts {
			if posts[i].ProfilePicURL != "" {
				posts[i].ProfilePicURL = media.PublicURL(posts[i].ProfilePicURL)
			}
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Posts fetched successfully", posts))
	}
}

// Update handles editing a post's content
// @Summary Update a post
// @Description Replace the content of a post by id
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param post body types.PostUpdateRequest true "New content"
// @Success 200 {object} response.Response "Post updated successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Post not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /updatepost/{id} [post]
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		postID := r.PathValue("id")
		if postID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("post ID is required")))
			return
		}

		var req types.PostUpdateRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		validate := validator.New()
		err = validate.Struct(req)
		if err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		err = store.UpdatePostContent(postID, req.Content)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("post not found")))
				return
			}
			slog.Error("Failed to update post", slog.String("error", err.Error()), slog.String("post_id", postID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update post")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Post updated successfully", nil))
	}
}

// Delete handles removing a post
// @Summary Delete a post
// @Description Delete a post by id; its likes are removed with it
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response "Post deleted successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Post not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /delete/{id} [post]
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		postID := r.PathValue("id")
		if postID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("post ID is required")))
			return
		}

		err := store.DeletePost(postID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("post not found")))
				return
			}
			slog.Error("Failed to delete post", slog.String("error", err.Error()), slog.String("post_id", postID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to delete post")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Post deleted successfully", nil))
	}
}

// Like handles toggling a like on a post
// @Summary Toggle a like
// @Description Like the post if not yet liked by the requester, unlike it otherwise
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response "Like toggled successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Post not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /like/{id} [post]
func Like(store storage.Storage, publisher events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		postID := r.PathValue("id")
		if postID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("post ID is required")))
			return
		}

		// Guard against missing posts before touching the like set.
		post, err := store.GetPostByID(postID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("post not found")))
				return
			}
			slog.Error("Failed to fetch post", slog.String("error", err.Error()), slog.String("post_id", postID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to fetch post")))
			return
		}

		liked, likeCount, err := store.TogglePostLike(postID, id.UserID)
		if err != nil {
			slog.Error("Failed to toggle like", slog.String("error", err.Error()), slog.String("post_id", postID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to toggle like")))
			return
		}

		if liked {
			publisher.PublishPostLiked(postID, id.UserID, post.UserID, likeCount)
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Like toggled successfully", types.LikeResult{
			PostID:    postID,
			Liked:     liked,
			LikeCount: likeCount,
		}))
	}
}
