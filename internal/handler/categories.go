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

// CategoryHandler serves /categories.
type CategoryHandler struct {
	Store *store.Store
	Log   *slog.Logger
}

func NewCategoryHandler(st *store.Store, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{Store: st, Log: log}
}

type CategoryInput struct {
	Name    string  `json:"name" binding:"required,notblank,max=256"`
	PlaidID *string `json:"plaidId" binding:"omitempty,max=128"`
}

type CategoryUpdateInput struct {
	Name string `json:"name" binding:"required,notblank,max=256"`
}

type categoryResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	rows, err := h.Store.Categories.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	out := make([]categoryResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryResp{ID: r.ID, Name: r.Name})
	}
	util.Success(c, http.StatusOK, out)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	row, err := h.Store.Categories.Get(c.Request.Context(), middleware.UserID(c), p.ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, categoryResp{ID: row.ID, Name: row.Name})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	in := middleware.JSON[CategoryInput](c)
	row := &models.Category{
		Name:    in.Name,
		PlaidID: in.PlaidID,
		UserID:  middleware.UserID(c),
	}
	if err := h.Store.Categories.Create(c.Request.Context(), row); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusCreated, row)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	in := middleware.JSON[CategoryUpdateInput](c)
	row, err := h.Store.Categories.Update(c.Request.Context(), middleware.UserID(c), p.ID, map[string]any{
		"name": in.Name,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, row)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	if err := h.Store.Categories.Delete(c.Request.Context(), middleware.UserID(c), p.ID); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, idResp{ID: p.ID})
}

func (h *CategoryHandler) BulkDelete(c *gin.Context) {
	in := middleware.JSON[BulkDeleteInput](c)
	ids, err := h.Store.Categories.BulkDelete(c.Request.Context(), middleware.UserID(c), in.IDs)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, idList(ids))
}
