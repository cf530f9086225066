package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finance-ledger/internal/models"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// TokenCookie carries the token for browser requests (the settings page).
	TokenCookie = "fl_token"

	ctxKeyUserID    = "auth.userID"
	ctxKeySessionID = "auth.sessionID"
)

// AuthOptions configures AuthMiddleware.
type AuthOptions struct {
	Secret         string
	Issuer         string
	RequireSession bool
}

// AuthMiddleware resolves the caller's user id from a JWT and stores it in the
// context. Requests without a valid credential get 401 and never reach the handler.
func AuthMiddleware(db *gorm.DB, opts AuthOptions, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			unauthorized(c)
			return
		}

		claims, err := util.ParseToken(opts.Secret, opts.Issuer, tokenStr)
		if err != nil {
			log.Debug("rejected token", "err", err)
			unauthorized(c)
			return
		}

		if opts.RequireSession {
			var n int64
			err := db.WithContext(c.Request.Context()).Model(&models.Session{}).
				Where("id = ? AND user_id = ? AND revoked = ? AND expires_at > ?",
					claims.SessionID(), claims.UserID(), false, time.Now()).
				Count(&n).Error
			if err != nil {
				log.Error("session lookup failed", "err", err)
				util.Error(c, http.StatusInternalServerError, util.MsgInternal)
				c.Abort()
				return
			}
			if n == 0 {
				unauthorized(c)
				return
			}
		}

		c.Set(ctxKeyUserID, claims.UserID())
		c.Set(ctxKeySessionID, claims.SessionID())
		c.Next()
	}
}

// tokenFromRequest looks at the Authorization header, then the cookie, then
// ?token= (downloads opened by the browser cannot set headers).
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

func unauthorized(c *gin.Context) {
	util.Error(c, http.StatusUnauthorized, util.MsgUnauthorized)
	c.Abort()
}

// UserID returns the authenticated user id, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

// SessionID returns the session of the current token.
func SessionID(c *gin.Context) string {
	return c.GetString(ctxKeySessionID)
}
