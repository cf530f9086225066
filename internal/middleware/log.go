package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"finance-ledger/internal/models"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxAuditBody is the largest request body copied into an audit record.
const maxAuditBody = 2000

// AuditMiddleware records every mutating request of an authenticated user
// after the handler ran. Path and action are stored encrypted when a key is set.
func AuditMiddleware(db *gorm.DB, encryptKey string, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			rest := c.Request.Body
			c.Request.Body = readCloser{io.MultiReader(bytes.NewReader(bodyBytes), rest), rest}
		}

		c.Next()

		userID := UserID(c)
		if userID == "" {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) <= maxAuditBody {
			action += " " + string(bodyBytes)
		}

		encPath, err := util.EncryptField(encryptKey, path)
		if err != nil {
			log.Error("encrypt audit path", "err", err)
			return
		}
		encAction, err := util.EncryptField(encryptKey, action)
		if err != nil {
			log.Error("encrypt audit action", "err", err)
			return
		}

		entry := models.AuditLog{
			UserID:    userID,
			Method:    c.Request.Method,
			PathEnc:   encPath,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 255),
		}
		// the response is already written; a failed audit insert is only logged
		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			log.Error("write audit log", "err", err, "user_id", userID)
		}
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
