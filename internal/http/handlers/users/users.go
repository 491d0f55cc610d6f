package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/anuragpatel/minisocial-service/internal/http/middleware"
	"github.com/anuragpatel/minisocial-service/internal/storage"
	"github.com/anuragpatel/minisocial-service/internal/types/users"
	"github.com/anuragpatel/minisocial-service/internal/utils/password"
	"github.com/anuragpatel/minisocial-service/internal/utils/response"
	"github.com/anuragpatel/minisocial-service/internal/utils/token"
)

// MediaStore is the slice of the media service the user handlers need.
type MediaStore interface {
	UploadProfilePic(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error)
	PublicURL(objectKey string) string
	MaxFileSize() int64
}

func setAuthCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	})
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a new user account and set the session cookie
// @Tags users
// @Accept json
// @Produce json
// @Param user body users.RegisterRequest true "User registration details"
// @Success 201 {object} map[string]string "User created successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 409 {object} response.Response "Email already registered"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /register [post]
func Register(store storage.Storage, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.RegisterRequest

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

		// A hashing fault aborts registration; the plaintext is never stored.
		hashedPassword, err := password.Hash(req.Password)
		if err != nil {
			slog.Error("Failed to hash password", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to hash password")))
			return
		}

		userID, err := store.CreateUser(req.Name, req.Username, req.Email, hashedPassword, req.Age)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateEmail) {
				response.WriteJSON(w, http.StatusConflict, response.GeneralError(errors.New("user already registered")))
				return
			}
			slog.Error("Failed to create user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to create user")))
			return
		}
		slog.Info("User created", slog.String("user_id", userID))

		tokenString, err := token.Issue(req.Email, userID, jwtSecret)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate token")))
			return
		}

		setAuthCookie(w, tokenString)
		response.WriteJSON(w, http.StatusCreated, map[string]string{
			"id":    userID,
			"token": tokenString,
		})
	}
}

// Login handles user authentication
// @Summary Authenticate a user
// @Description Verify credentials and set the session cookie
// @Tags users
// @Accept json
// @Produce json
// @Param user body users.LoginRequest true "User login details"
// @Success 200 {object} map[string]string "User authenticated successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Router /login [post]
func Login(store storage.Storage, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.LoginRequest

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

		// Unknown email and wrong password are indistinguishable to the client.
		user, err := store.GetUserByEmail(req.Email)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				slog.Error("Failed to look up user", slog.String("error", err.Error()))
			}
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid email or password")))
			return
		}

		if !password.Check(req.Password, user.Password) {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid email or password")))
			return
		}

		tokenString, err := token.Issue(user.Email, user.ID, jwtSecret)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate token")))
			return
		}

		setAuthCookie(w, tokenString)
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"user_id": user.ID,
			"token":   tokenString,
		})
	}
}

// Logout clears the session cookie
// @Summary Log out
// @Description Clear the session cookie and redirect to login
// @Tags users
// @Success 303 "Redirect to /login"
// @Router /logout [get]
func Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.CookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
	}
}

// Profile returns the authenticated user and their posts
// @Summary Get own profile
// @Description Get the authenticated user's profile and posts, newest first
// @Tags users
// @Produce json
// @Success 200 {object} response.Response "Profile retrieved successfully"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "User not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /profile [get]
func Profile(store storage.Storage, media MediaStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		user, err := store.GetUserByEmail(id.Email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("user not found")))
				return
			}
			slog.Error("Failed to load profile", slog.String("error", err.Error()), slog.String("user_id", id.UserID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load profile")))
			return
		}

		posts, err := store.GetPostsByUser(user.ID, user.ID)
		if err != nil {
			slog.Error("Failed to load posts", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load posts")))
			return
		}

		if user.ProfilePic != "" {
			user.ProfilePic = media.PublicURL(user.ProfilePic)
		}
		for i := range posts {
			if posts[i].ProfilePicURL != "" {
				posts[i].ProfilePicURL = media.PublicURL(posts[i].ProfilePicURL)
			}
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Profile retrieved successfully", map[string]interface{}{
			"user":  user,
			"posts": posts,
		}))
	}
}

// Upload stores a new profile picture for the authenticated user
// @Summary Upload profile picture
// @Description Upload a profile picture as multipart form field "profilepic"
// @Tags users
// @Accept mpfd
// @Produce json
// @Param profilepic formData file true "Profile picture"
// @Success 200 {object} response.Response "Profile picture uploaded successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /upload [post]
func Upload(store storage.Storage, media MediaStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, media.MaxFileSize()+1024)
		if err := r.ParseMultipartForm(media.MaxFileSize()); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart form")))
			return
		}

		file, header, err := r.FormFile("profilepic")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("profilepic file is required")))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		objectKey, err := media.UploadProfilePic(r.Context(), id.UserID, file, header.Size, contentType)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := store.SetProfilePic(id.UserID, objectKey); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("user not found")))
				return
			}
			slog.Error("Failed to store profile picture reference", slog.String("error", err.Error()), slog.String("user_id", id.UserID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update profile picture")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Profile picture uploaded successfully", map[string]string{
			"object_key": objectKey,
			"url":        media.PublicURL(objectKey),
		}))
	}
}
