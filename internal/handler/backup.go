package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"finance-ledger/internal/middleware"
	"finance-ledger/internal/models"
	"finance-ledger/internal/store"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BackupHandler serves /backups: encrypted snapshots of one user's data.
type BackupHandler struct {
	Store      *store.Store
	Log        *slog.Logger
	EncryptKey string
	BackupDir  string
}

func NewBackupHandler(st *store.Store, log *slog.Logger, encryptKey, backupDir string) *BackupHandler {
	return &BackupHandler{
		Store:      st,
		Log:        log,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
	}
}

const msgBackupDisabled = "Backups are not configured"

type backupResp struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

func toBackupResp(b *models.Backup) backupResp {
	return backupResp{ID: b.ID, FileName: b.FileName, Size: b.Size, CreatedAt: b.CreatedAt}
}

// enabled answers 503 when no encryption key is configured.
func (h *BackupHandler) enabled(c *gin.Context) bool {
	if h.EncryptKey == "" {
		util.Error(c, http.StatusServiceUnavailable, msgBackupDisabled)
		return false
	}
	return true
}

// CreateBackup writes the caller's snapshot to an encrypted file and records it.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	snap, err := h.Store.Snapshot(ctx, userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		respondError(c, h.Log, fmt.Errorf("encode snapshot: %w", err))
		return
	}
	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		respondError(c, h.Log, fmt.Errorf("encrypt snapshot: %w", err))
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		respondError(c, h.Log, fmt.Errorf("create backup dir: %w", err))
		return
	}

	id := uuid.NewString()
	fileName := fmt.Sprintf("backup-%s-%s.bin", snap.CreatedAt.Format("20060102-150405"), id[:8])
	filePath := filepath.Join(h.BackupDir, id+".bin")
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		respondError(c, h.Log, fmt.Errorf("write backup: %w", err))
		return
	}

	backup := &models.Backup{
		ID:       id,
		UserID:   userID,
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(enc)),
	}
	if err := h.Store.Backups.Create(ctx, backup); err != nil {
		_ = os.Remove(filePath)
		respondError(c, h.Log, err)
		return
	}

	util.Success(c, http.StatusCreated, toBackupResp(backup))
}

// ListBackups returns the caller's backups, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	list := make([]models.Backup, 0)
	if err := h.Store.Backups.Scoped(c.Request.Context(), middleware.UserID(c)).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		respondError(c, h.Log, err)
		return
	}

	out := make([]backupResp, 0, len(list))
	for i := range list {
		out = append(out, toBackupResp(&list[i]))
	}
	util.Success(c, http.StatusOK, out)
}

// DownloadBackup sends the encrypted file as stored.
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	backup, err := h.Store.Backups.Get(c.Request.Context(), middleware.UserID(c), p.ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if _, err := os.Stat(backup.FilePath); err != nil {
		respondError(c, h.Log, fmt.Errorf("backup %s file: %w", backup.ID, err))
		return
	}
	c.FileAttachment(backup.FilePath, backup.FileName)
}

// DeleteBackup removes the record and its file.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	backup, err := h.Store.Backups.Get(ctx, userID, p.ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if err := h.Store.Backups.Delete(ctx, userID, backup.ID); err != nil {
		respondError(c, h.Log, err)
		return
	}
	if err := os.Remove(backup.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.Log.Warn("remove backup file", "path", backup.FilePath, "err", err)
	}
	util.Success(c, http.StatusOK, idResp{ID: backup.ID})
}

type restoreResp struct {
	Accounts     int `json:"accounts"`
	Categories   int `json:"categories"`
	Wallets      int `json:"wallets"`
	Transactions int `json:"transactions"`
}

// RestoreBackup replaces the caller's data with the backup's content.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	p := middleware.URI[IDParam](c)
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	backup, err := h.Store.Backups.Get(ctx, userID, p.ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	snap, err := h.readSnapshot(backup.FilePath)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if snap.UserID != "" && snap.UserID != userID {
		util.Error(c, http.StatusBadRequest, "Backup belongs to another user")
		return
	}

	if err := h.Store.Restore(ctx, userID, snap); err != nil {
		respondError(c, h.Log, err)
		return
	}

	util.Success(c, http.StatusOK, restoreResp{
		Accounts:     len(snap.Accounts),
		Categories:   len(snap.Categories),
		Wallets:      len(snap.Wallets),
		Transactions: len(snap.Transactions),
	})
}

func (h *BackupHandler) readSnapshot(path string) (*store.Snapshot, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	raw, err := util.DecryptAES(h.EncryptKey, enc)
	if err != nil {
		return nil, fmt.Errorf("decrypt backup: %w", err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &snap, nil
}
