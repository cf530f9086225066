package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"finance-ledger/internal/store"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// ---------- shared request shapes ----------

// IDParam is the :id path parameter of every resource route.
type IDParam struct {
	ID string `uri:"id" binding:"required,max=64"`
}

// BulkDeleteInput is the body of every bulk-delete route.
type BulkDeleteInput struct {
	IDs []string `json:"ids" binding:"required,dive,required,max=64"`
}

type idResp struct {
	ID string `json:"id"`
}

func idList(ids []string) []idResp {
	out := make([]idResp, 0, len(ids))
	for _, id := range ids {
		out = append(out, idResp{ID: id})
	}
	return out
}

// ---------- error mapping ----------

const msgConflict = "Already exists"

// respondError maps store errors onto status codes. Anything unexpected is
// logged with the request and answered with a generic 500.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	var refErr *store.ReferenceError
	switch {
	case errors.As(err, &refErr):
		util.ValidationError(c, []util.FieldError{{
			Field:   refErr.Field,
			Message: "does not reference one of your records",
		}})
	case errors.Is(err, store.ErrInvalidReference):
		// a foreign key rejected by the database names no field of its own
		util.ValidationError(c, []util.FieldError{{
			Field:   "body",
			Message: "references a record that does not exist",
		}})
	case errors.Is(err, store.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.MsgNotFound)
	case errors.Is(err, store.ErrDuplicate):
		util.Error(c, http.StatusConflict, msgConflict)
	default:
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"err", err,
		)
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.MsgInternal)
	}
}
