package handler

import (
	"log/slog"
	"net/http"

	"finance-ledger/internal/middleware"
	"finance-ledger/internal/models"
	"finance-ledger/internal/store"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves /accounts.
type AccountHandler struct {
	Store *store.Store
	Log   *slog.Logger
}

func NewAccountHandler(st *store.Store, log *slog.Logger) *AccountHandler {
	return &AccountHandler{Store: st, Log: log}
}

type AccountInput struct {
	Name     string  `json:"name" binding:"required,notblank,max=256"`
	PlaidID  *string `json:"plaidId" binding:"omitempty,max=128"`
	WalletID *string `json:"walletId" binding:"omitempty,max=64"`
}

type AccountUpdateInput struct {
	Name string `json:"name" binding:"required,notblank,max=256"`
}

type accountResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toAccountResp(a *models.Account) accountResp {
	return accountResp{ID: a.ID, Name: a.Name}
}

func (h *AccountHandler) List(c *gin.Context) {
	rows, err := h.Store.Accounts.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	out := make([]accountResp, 0, len(rows))
	for i := range rows {
		out = append(out, toAccountResp(&rows[i]))
	}
	util.Success(c, http.StatusOK, out)
}

func (h *AccountHandler) Get(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	row, err := h.Store.Accounts.Get(c.Request.Context(), middleware.UserID(c), p.ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, toAccountResp(row))
}

func (h *AccountHandler) Create(c *gin.Context) {
	in := middleware.JSON[AccountInput](c)
	userID := middleware.UserID(c)
	if in.WalletID != nil && *in.WalletID == "" {
		in.WalletID = nil
	}
	if err := h.Store.CheckWallet(c.Request.Context(), userID, in.WalletID); err != nil {
		respondError(c, h.Log, err)
		return
	}
	row := &models.Account{
		Name:     in.Name,
		PlaidID:  in.PlaidID,
		WalletID: in.WalletID,
		UserID:   userID,
	}
	if err := h.Store.Accounts.Create(c.Request.Context(), row); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusCreated, row)
}

func (h *AccountHandler) Update(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	in := middleware.JSON[AccountUpdateInput](c)
	row, err := h.Store.Accounts.Update(c.Request.Context(), middleware.UserID(c), p.ID, map[string]any{
		"name": in.Name,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, row)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	if err := h.Store.Accounts.Delete(c.Request.Context(), middleware.UserID(c), p.ID); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, idResp{ID: p.ID})
}

func (h *AccountHandler) BulkDelete(c *gin.Context) {
	in := middleware.JSON[BulkDeleteInput](c)
	ids, err := h.Store.Accounts.BulkDelete(c.Request.Context(), middleware.UserID(c), in.IDs)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, idList(ids))
}
