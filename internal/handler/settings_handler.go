package handler

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"busyboard/internal/repository"
	"busyboard/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// SettingsHandler serves the account settings surface: profile edits,
// password change, profile photo, account deletion.
type SettingsHandler struct {
	userRepo repository.UserRepositoryInterface
	blobs    storage.Service
}

func NewSettingsHandler(userRepo repository.UserRepositoryInterface, blobs storage.Service) *SettingsHandler {
	return &SettingsHandler{
		userRepo: userRepo,
		blobs:    blobs,
	}
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type ProfileResponse struct {
	UserResponse
	ProfilePhotoURL string `json:"profile_photo_url,omitempty"`
}

// GetProfile returns the caller's profile.
func (h *SettingsHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := ProfileResponse{UserResponse: userResponse(user)}
	if user.ProfilePhoto != nil {
		if url, err := h.blobs.URL(c.Request.Context(), *user.ProfilePhoto); err == nil {
			resp.ProfilePhotoURL = url
		}
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile overwrites profile fields that arrive non-empty.
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Username != "" && req.Username != user.Username {
		existing, err := h.userRepo.FindByUsername(c.Request.Context(), req.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this username already exists"})
			return
		}
		user.Username = req.Username
	}
	if req.Email != "" {
		email := strings.ToLower(req.Email)
		if email != user.Email {
			existing, err := h.userRepo.FindByEmail(c.Request.Context(), email)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
				return
			}
			if existing != nil {
				c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
				return
			}
			user.Email = email
		}
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}

	if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// ChangePassword verifies the old password and stores a new hash.
func (h *SettingsHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Hash error"})
		return
	}

	user.HashedPassword = string(hash)
	if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// UploadPhoto replaces the caller's profile photo. The old blob is
// released first; the user row stays the source of truth.
func (h *SettingsHandler) UploadPhoto(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo"})
		return
	}
	defer src.Close()

	if user.ProfilePhoto != nil {
		if err := h.blobs.Delete(c.Request.Context(), *user.ProfilePhoto); err != nil {
			log.Printf("⚠️  Failed to release old profile photo %s: %v", *user.ProfilePhoto, err)
		}
	}

	key := fmt.Sprintf("profile_photos/%s/%s", user.ID, filepath.Base(file.Filename))
	if err := h.blobs.Save(c.Request.Context(), key, src); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store photo"})
		return
	}

	user.ProfilePhoto = &key
	if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	url, _ := h.blobs.URL(c.Request.Context(), key)
	c.JSON(http.StatusOK, gin.H{"profile_photo_url": url})
}

// DeletePhoto removes the caller's profile photo.
func (h *SettingsHandler) DeletePhoto(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.ProfilePhoto != nil {
		if err := h.blobs.Delete(c.Request.Context(), *user.ProfilePhoto); err != nil {
			log.Printf("⚠️  Failed to release profile photo %s: %v", *user.ProfilePhoto, err)
		}
		user.ProfilePhoto = nil
		if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

// DeleteAccount removes the caller's account with all of its owned
// boards and cards.
func (h *SettingsHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.userRepo.Delete(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
