package handler

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finance-ledger/internal/middleware"
	"finance-ledger/internal/store"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler serves /export/csv and /export/xlsx.
type ExportHandler struct {
	Store *store.Store
	Log   *slog.Logger
}

func NewExportHandler(st *store.Store, log *slog.Logger) *ExportHandler {
	return &ExportHandler{Store: st, Log: log}
}

var exportHeaders = []string{"Date", "Payee", "Amount", "Category", "Account", "Notes"}

func exportRow(t *store.TransactionView) []string {
	category, notes := "", ""
	if t.Category != nil {
		category = *t.Category
	}
	if t.Notes != nil {
		notes = *t.Notes
	}
	return []string{
		t.Date.UTC().Format(time.DateOnly),
		t.Payee,
		util.FormatMinor(t.Amount),
		category,
		t.Account,
		notes,
	}
}

func (h *ExportHandler) load(c *gin.Context) ([]store.TransactionView, bool) {
	q := middleware.Query[TransactionQuery](c)
	rows, err := h.Store.ListTransactions(c.Request.Context(), middleware.UserID(c), q.Filter())
	if err != nil {
		respondError(c, h.Log, err)
		return nil, false
	}
	return rows, true
}

func attachment(c *gin.Context, contentType, ext string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.%s\"",
		time.Now().Format("20060102"), ext))
}

// ExportCSV streams the caller's transactions as CSV, newest first.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.load(c)
	if !ok {
		return
	}

	attachment(c, "text/csv; charset=utf-8", "csv")
	c.Status(http.StatusOK)

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	for i := range rows {
		_ = w.Write(exportRow(&rows[i]))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.Log.Warn("csv export interrupted", "err", err)
	}
}

// ExportXLSX writes the caller's transactions to a single-sheet workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.load(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(rows)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	defer f.Close()

	attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.Log.Warn("xlsx export interrupted", "err", err)
	}
}

const exportSheet = "Transactions"

func buildWorkbook(rows []store.TransactionView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for idx := range rows {
		values := exportRow(&rows[idx])
		line := make([]any, len(values))
		for i, v := range values {
			line[i] = v
		}
		// amounts as numbers so spreadsheet sums work
		line[2] = util.MinorToMajor(rows[idx].Amount).InexactFloat64()

		cell, _ := excelize.CoordinatesToCellName(1, idx+2)
		if err := f.SetSheetRow(exportSheet, cell, &line); err != nil {
			return nil, fmt.Errorf("write row %d: %w", idx+2, err)
		}
	}

	widths := map[string]float64{"A": 12, "B": 28, "C": 12, "D": 18, "E": 18, "F": 36}
	for col, w := range widths {
		if err := f.SetColWidth(exportSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set width: %w", err)
		}
	}
	return f, nil
}
