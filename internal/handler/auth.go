package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finance-ledger/internal/middleware"
	"finance-ledger/internal/models"
	"finance-ledger/internal/store"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute

	msgBadCredentials = "Invalid username or password"
	msgLocked         = "Account locked, try again later"
	msgUsernameTaken  = "Username already exists"
)

// AuthHandler is the built-in identity provider: register, login, logout.
type AuthHandler struct {
	Users      *store.Users
	Log        *slog.Logger
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
	// SecureCookie marks the token cookie Secure (HTTPS deployments).
	SecureCookie bool
}

func NewAuthHandler(users *store.Users, log *slog.Logger, jwtSecret, issuer string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		Users:      users,
		Log:        log,
		JWTSecret:  jwtSecret,
		Issuer:     issuer,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

type userResp struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResp(u *models.User) userResp {
	return userResp{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}

// ---------- register ----------

type RegisterInput struct {
	Username        string `json:"username" binding:"required,username"`
	Password        string `json:"password" binding:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	DisplayName     string `json:"displayName" binding:"max=64"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	in := middleware.JSON[RegisterInput](c)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.BcryptCost)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(in.DisplayName),
	}
	if err := h.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			util.Error(c, http.StatusConflict, msgUsernameTaken)
			return
		}
		respondError(c, h.Log, err)
		return
	}

	util.Success(c, http.StatusCreated, gin.H{"user": toUserResp(user)})
}

// ---------- login ----------

type LoginInput struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=64"`
}

// Login checks the password, locks the user after repeated failures and on
// success opens a session whose id is carried in the token.
func (h *AuthHandler) Login(c *gin.Context) {
	in := middleware.JSON[LoginInput](c)
	ctx := c.Request.Context()

	user, err := h.Users.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		respondError(c, h.Log, err)
		return
	}

	now := time.Now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, msgLocked)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		h.recordFailure(c, user, now)
		util.Error(c, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	if err := h.Users.Update(ctx, user.ID, map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
		"last_login_ip":         c.ClientIP(),
	}); err != nil {
		respondError(c, h.Log, err)
		return
	}

	session, err := h.Users.CreateSession(ctx, user.ID, now.Add(h.TokenTTL))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	token, expiresAt, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, session.ID, h.TokenTTL)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.TokenTTL.Seconds()), "/", "", h.SecureCookie, true)

	h.Log.Info("user logged in", "user_id", user.ID, "ip", c.ClientIP())
	util.Success(c, http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      toUserResp(user),
	})
}

func (h *AuthHandler) recordFailure(c *gin.Context, user *models.User, now time.Time) {
	attempts := user.FailedLoginAttempts + 1
	values := map[string]any{"failed_login_attempts": attempts}
	if attempts >= maxFailedLogins {
		values["failed_login_attempts"] = 0
		values["locked_until"] = now.Add(lockDuration)
		h.Log.Warn("user locked after failed logins", "user_id", user.ID, "ip", c.ClientIP())
	}
	if err := h.Users.Update(c.Request.Context(), user.ID, values); err != nil {
		h.Log.Error("record failed login", "user_id", user.ID, "err", err)
	}
}

// ---------- logout ----------

// Logout revokes the session of the current token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, sessionID := middleware.UserID(c), middleware.SessionID(c)
	if err := h.Users.RevokeSession(c.Request.Context(), userID, sessionID); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.SecureCookie, true)
	util.Success(c, http.StatusOK, gin.H{"sessionId": sessionID})
}
