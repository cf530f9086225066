package handler

import (
	"log/slog"
	"net/http"
	"time"

	"finance-ledger/internal/middleware"
	"finance-ledger/internal/models"
	"finance-ledger/internal/store"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves /logs, the caller's audit trail.
type LogHandler struct {
	Store      *store.Store
	Log        *slog.Logger
	EncryptKey string
}

func NewLogHandler(st *store.Store, log *slog.Logger, encryptKey string) *LogHandler {
	return &LogHandler{Store: st, Log: log, EncryptKey: encryptKey}
}

// LogQuery pages through audit records; start and end are inclusive days.
type LogQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Start    string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End      string `form:"end" binding:"omitempty,datetime=2006-01-02"`
	Method   string `form:"method" binding:"omitempty,oneof=POST PUT PATCH DELETE"`
}

type logResp struct {
	ID        uint      `json:"id"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Action    string    `json:"action"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}

type logPage struct {
	Items    []logResp `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// ListLogs returns one page of the caller's audit records, newest first.
func (h *LogHandler) ListLogs(c *gin.Context) {
	q := middleware.Query[LogQuery](c)
	page, size := q.Page, q.PageSize
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = 20
	}

	base := h.Store.AuditLogs.Scoped(c.Request.Context(), middleware.UserID(c))
	if q.Start != "" {
		start, _ := time.Parse(time.DateOnly, q.Start)
		base = base.Where("created_at >= ?", start)
	}
	if q.End != "" {
		end, _ := time.Parse(time.DateOnly, q.End)
		base = base.Where("created_at < ?", end.AddDate(0, 0, 1))
	}
	if q.Method != "" {
		base = base.Where("method = ?", q.Method)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		respondError(c, h.Log, err)
		return
	}

	var logs []models.AuditLog
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&logs).Error; err != nil {
		respondError(c, h.Log, err)
		return
	}

	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, logResp{
			ID:        l.ID,
			Method:    l.Method,
			Path:      util.DecryptField(h.EncryptKey, l.PathEnc),
			Action:    util.DecryptField(h.EncryptKey, l.ActionEnc),
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, http.StatusOK, logPage{Items: items, Total: total, Page: page, PageSize: size})
}
