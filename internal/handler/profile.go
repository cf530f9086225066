package handler

import (
	"errors"
	"net/http"
	"strings"

	"finance-ledger/internal/middleware"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type UpdateProfileInput struct {
	DisplayName string `json:"displayName" binding:"max=64"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required,max=64"`
	NewPassword string `json:"newPassword" binding:"required,strongpassword"`
}

// GetMe returns the current user.
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, gin.H{"user": toUserResp(user)})
}

// UpdateProfile changes the display name.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	in := middleware.JSON[UpdateProfileInput](c)
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	if err := h.Users.Update(ctx, userID, map[string]any{
		"display_name": strings.TrimSpace(in.DisplayName),
	}); err != nil {
		respondError(c, h.Log, err)
		return
	}
	user, err := h.Users.Get(ctx, userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, gin.H{"user": toUserResp(user)})
}

// ChangePassword replaces the password and revokes every session of the
// user, so all clients must log in again.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	in := middleware.JSON[ChangePasswordInput](c)
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	user, err := h.Users.Get(ctx, userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			util.ValidationError(c, []util.FieldError{{Field: "oldPassword", Message: "is incorrect"}})
			return
		}
		respondError(c, h.Log, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), h.BcryptCost)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if err := h.Users.Update(ctx, userID, map[string]any{"password_hash": string(hash)}); err != nil {
		respondError(c, h.Log, err)
		return
	}
	if err := h.Users.RevokeAllSessions(ctx, userID); err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.SecureCookie, true)
	util.Success(c, http.StatusOK, gin.H{"sessionsRevoked": true})
}
