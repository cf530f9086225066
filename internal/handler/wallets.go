package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"finance-ledger/internal/middleware"
	"finance-ledger/internal/models"
	"finance-ledger/internal/store"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// MsgWalletExists is the 409 body for a second insert of the same address.
const MsgWalletExists = "Wallet already exists"

// WalletHandler serves /wallets.
type WalletHandler struct {
	Store *store.Store
	Log   *slog.Logger
}

func NewWalletHandler(st *store.Store, log *slog.Logger) *WalletHandler {
	return &WalletHandler{Store: st, Log: log}
}

// WalletInput is the create body. The settings form also sends walletNetwork
// and accountName; they are display-only and ignored here.
type WalletInput struct {
	WalletAddress string  `json:"walletAddress" binding:"required,evm_address"`
	AccountID     *string `json:"accountId" binding:"omitempty,max=64"`
}

type WalletUpdateInput struct {
	WalletAddress string `json:"walletAddress" binding:"required,evm_address"`
}

type walletResp struct {
	ID            string `json:"id"`
	WalletAddress string `json:"walletAddress"`
}

func (h *WalletHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrDuplicate) {
		util.Error(c, http.StatusConflict, MsgWalletExists)
		return
	}
	respondError(c, h.Log, err)
}

func (h *WalletHandler) List(c *gin.Context) {
	var out []walletResp
	err := h.Store.Wallets.Scoped(c.Request.Context(), middleware.UserID(c)).
		Select("wallets.id, wallets.wallet_address").
		Order("wallets.created_at, wallets.id").
		Scan(&out).Error
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if out == nil {
		out = []walletResp{}
	}
	util.Success(c, http.StatusOK, out)
}

func (h *WalletHandler) Get(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	row, err := h.Store.Wallets.Get(c.Request.Context(), middleware.UserID(c), p.ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, walletResp{ID: row.ID, WalletAddress: row.WalletAddress})
}

// Create inserts the wallet; the (user, address) unique index decides duplicates.
func (h *WalletHandler) Create(c *gin.Context) {
	in := middleware.JSON[WalletInput](c)
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	if in.AccountID != nil && *in.AccountID != "" {
		if err := h.Store.CheckReferences(ctx, userID, *in.AccountID, nil); err != nil {
			h.fail(c, err)
			return
		}
	} else {
		in.AccountID = nil
	}

	row := &models.Wallet{
		UserID:        userID,
		WalletAddress: in.WalletAddress,
		AccountID:     in.AccountID,
	}
	if err := h.Store.Wallets.Create(ctx, row); err != nil {
		h.fail(c, err)
		return
	}
	util.Success(c, http.StatusCreated, row)
}

func (h *WalletHandler) Update(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	in := middleware.JSON[WalletUpdateInput](c)
	row, err := h.Store.Wallets.Update(c.Request.Context(), middleware.UserID(c), p.ID, map[string]any{
		"wallet_address": in.WalletAddress,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, row)
}

func (h *WalletHandler) Delete(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	ids, err := h.Store.DeleteWallets(c.Request.Context(), middleware.UserID(c), []string{p.ID})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if len(ids) == 0 {
		util.Error(c, http.StatusNotFound, util.MsgNotFound)
		return
	}
	util.Success(c, http.StatusOK, idResp{ID: p.ID})
}

// BulkDelete, like Delete, unlinks accounts that pointed at a removed wallet.
func (h *WalletHandler) BulkDelete(c *gin.Context) {
	in := middleware.JSON[BulkDeleteInput](c)
	ids, err := h.Store.DeleteWallets(c.Request.Context(), middleware.UserID(c), in.IDs)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, idList(ids))
}
