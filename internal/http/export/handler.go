package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/coinquest/internal/export"
	"github.com/MrJamesThe3rd/coinquest/internal/http/respond"
	txHandler "github.com/MrJamesThe3rd/coinquest/internal/http/transaction"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type Handler struct {
	svc *export.Service
	loc *time.Location
	now func() time.Time
}

func NewHandler(svc *export.Service, q *query.Service) *Handler {
	return &Handler{svc: svc, loc: q.Location(), now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.csv)
	r.Get("/summary", h.summary)
	r.Get("/bundle", h.bundle)
}

// csv accepts the same query parameters as the transaction list.
func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	spec, err := txHandler.FilterSpec(r, h.loc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.svc.CSV(r.Context(), &buf, spec, transaction.ParseSortOrder(r.URL.Query().Get("sort"))); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(h.now().In(h.loc))))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	month, year, err := respond.MonthYear(r, h.loc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Summary(r.Context(), &buf, month, year); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
}

// bundle zips the month's transactions together with its summary.
func (h *Handler) bundle(w http.ResponseWriter, r *http.Request) {
	month, year, err := respond.MonthYear(r, h.loc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var summary bytes.Buffer
	if err := h.svc.Summary(r.Context(), &summary, month, year); err != nil {
		respond.Error(w, r, err)
		return
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, h.loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var rows bytes.Buffer

	spec := transaction.FilterSpec{StartDate: &start, EndDate: &end}
	if _, err := h.svc.CSV(r.Context(), &rows, spec, transaction.SortAsc); err != nil {
		respond.Error(w, r, err)
		return
	}

	name := strings.TrimSuffix(export.Filename(h.now().In(h.loc)), ".csv")

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".zip"))

	zw := zip.NewWriter(w)

	files := []struct {
		name string
		data *bytes.Buffer
	}{
		{name: "transactions.csv", data: &rows},
		{name: "summary.txt", data: &summary},
	}

	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			slog.Error("failed to create zip entry", "file", f.name, "error", err)
			return
		}

		if _, err := f.data.WriteTo(fw); err != nil {
			slog.Error("failed to write zip entry", "file", f.name, "error", err)
			return
		}
	}

	if err := zw.Close(); err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
