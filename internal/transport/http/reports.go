package http

import (
	"fmt"
	"net/http"

	"ops-dashboard/internal/report"
)

func (h *Handler) BudgetReport(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	data, name, err := h.reports.BudgetWorkbook(r.Context(), f, f.Year)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) ArchiveBudgetReport(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	resp, err := h.reports.ArchiveBudget(r.Context(), f, f.Year)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}
