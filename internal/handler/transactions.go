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
)

// maxBulkCreate caps one bulk-create request (CSV imports from the UI).
const maxBulkCreate = 500

// TransactionHandler serves /transactions.
type TransactionHandler struct {
	Store *store.Store
	Log   *slog.Logger
}

func NewTransactionHandler(st *store.Store, log *slog.Logger) *TransactionHandler {
	return &TransactionHandler{Store: st, Log: log}
}

// ---------- request shapes ----------

// TransactionInput is the create and update body. Amount is in minor units.
type TransactionInput struct {
	Amount     *int64  `json:"amount" binding:"required"`
	Payee      string  `json:"payee" binding:"required,notblank,max=256"`
	Notes      *string `json:"notes" binding:"omitempty,max=1000"`
	Date       string  `json:"date" binding:"required,flexdate"`
	AccountID  string  `json:"accountId" binding:"required,max=64"`
	CategoryID *string `json:"categoryId" binding:"omitempty,max=64"`
}

// TransactionQuery filters the listing; from and to are inclusive days.
type TransactionQuery struct {
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	AccountID string `form:"accountId" binding:"omitempty,max=64"`
}

// Filter converts the query into a store filter with an exclusive upper bound.
func (q *TransactionQuery) Filter() store.TransactionFilter {
	f := store.TransactionFilter{AccountID: q.AccountID}
	if q.From != "" {
		f.From, _ = time.Parse(time.DateOnly, q.From)
	}
	if q.To != "" {
		to, _ := time.Parse(time.DateOnly, q.To)
		f.To = to.AddDate(0, 0, 1)
	}
	return f
}

func (in *TransactionInput) categoryID() *string {
	if in.CategoryID == nil || *in.CategoryID == "" {
		return nil
	}
	return in.CategoryID
}

// toModel builds a row; the flexdate validator already accepted the date.
func (in *TransactionInput) toModel() models.Transaction {
	date, _ := util.ParseDate(in.Date)
	return models.Transaction{
		Amount:     *in.Amount,
		Payee:      in.Payee,
		Notes:      in.Notes,
		Date:       date,
		AccountID:  in.AccountID,
		CategoryID: in.categoryID(),
	}
}

// ---------- handlers ----------

func (h *TransactionHandler) List(c *gin.Context) {
	q := middleware.Query[TransactionQuery](c)
	rows, err := h.Store.ListTransactions(c.Request.Context(), middleware.UserID(c), q.Filter())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, rows)
}

func (h *TransactionHandler) Get(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	row, err := h.Store.Transactions.Get(c.Request.Context(), middleware.UserID(c), p.ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, row)
}

func (h *TransactionHandler) Create(c *gin.Context) {
	in := middleware.JSON[TransactionInput](c)
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	if err := h.Store.CheckReferences(ctx, userID, in.AccountID, in.categoryID()); err != nil {
		respondError(c, h.Log, err)
		return
	}
	row := in.toModel()
	if err := h.Store.Transactions.Create(ctx, &row); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusCreated, row)
}

// BulkCreate inserts every row in one batch or none at all.
func (h *TransactionHandler) BulkCreate(c *gin.Context) {
	in := *middleware.JSON[[]TransactionInput](c)
	if len(in) == 0 || len(in) > maxBulkCreate {
		util.ValidationError(c, []util.FieldError{{
			Field:   "body",
			Message: "must contain between 1 and 500 transactions",
		}})
		return
	}

	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	rows := make([]models.Transaction, 0, len(in))
	checked := make(map[string]bool)
	for i := range in {
		key := in[i].AccountID
		if cat := in[i].categoryID(); cat != nil {
			key += "/" + *cat
		}
		if !checked[key] {
			if err := h.Store.CheckReferences(ctx, userID, in[i].AccountID, in[i].categoryID()); err != nil {
				respondError(c, h.Log, err)
				return
			}
			checked[key] = true
		}
		rows = append(rows, in[i].toModel())
	}

	if err := h.Store.Transactions.CreateBatch(ctx, rows); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusCreated, rows)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	in := middleware.JSON[TransactionInput](c)
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	// the target row is resolved first so a foreign id is a 404, never a 400
	ok, err := h.Store.Transactions.Exists(ctx, userID, p.ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if !ok {
		util.Error(c, http.StatusNotFound, util.MsgNotFound)
		return
	}
	if err := h.Store.CheckReferences(ctx, userID, in.AccountID, in.categoryID()); err != nil {
		respondError(c, h.Log, err)
		return
	}
	m := in.toModel()
	row, err := h.Store.Transactions.Update(ctx, userID, p.ID, map[string]any{
		"amount":      m.Amount,
		"payee":       m.Payee,
		"notes":       m.Notes,
		"date":        m.Date,
		"account_id":  m.AccountID,
		"category_id": m.CategoryID,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, row)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	p := middleware.URI[IDParam](c)
	if err := h.Store.Transactions.Delete(c.Request.Context(), middleware.UserID(c), p.ID); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, idResp{ID: p.ID})
}

func (h *TransactionHandler) BulkDelete(c *gin.Context) {
	in := middleware.JSON[BulkDeleteInput](c)
	ids, err := h.Store.Transactions.BulkDelete(c.Request.Context(), middleware.UserID(c), in.IDs)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, http.StatusOK, idList(ids))
}
