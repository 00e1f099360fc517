package http

import (
	"net/http"
	"strconv"

	"ops-dashboard/internal/analytics"
	"ops-dashboard/internal/models"
)

// parseFilter reads the project filter shared by the list and analytics views.
func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	f := analytics.Filter{
		Owner:    q.Get("owner"),
		Priority: q.Get("priority"),
		Status:   q.Get("status"),
		Location: q.Get("location"),
		Search:   q.Get("search"),
	}
	year, err := parseYear(q.Get("year"))
	if err != nil {
		return analytics.Filter{}, err
	}
	f.Year = year
	return f, nil
}

// parseYear accepts an empty value or "all" as no year.
func parseYear(raw string) (int, error) {
	if raw == "" || raw == analytics.RangeAll {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, models.ValidationErrors{{Field: "year", Message: "year must be a four-digit calendar year"}}
	}
	return year, nil
}

func (h *Handler) parseRange(r *http.Request) (analytics.Range, error) {
	q := r.URL.Query()
	return analytics.ParseRange(q.Get("range"), q.Get("start"), q.Get("end"), h.analytics.Now())
}

// filterAndRange answers 400 itself when either part is malformed.
func (h *Handler) filterAndRange(w http.ResponseWriter, r *http.Request) (analytics.Filter, analytics.Range, bool) {
	f, err := parseFilter(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return analytics.Filter{}, analytics.Range{}, false
	}
	rng, err := h.parseRange(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return analytics.Filter{}, analytics.Range{}, false
	}
	return f, rng, true
}

func (h *Handler) Capacity(w http.ResponseWriter, r *http.Request) {
	f, rng, ok := h.filterAndRange(w, r)
	if !ok {
		return
	}
	report, err := h.analytics.Capacity(r.Context(), f, rng)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

func (h *Handler) CurrentCapacity(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	report, err := h.analytics.CurrentCapacity(r.Context(), f)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

func (h *Handler) CapacitySeries(w http.ResponseWriter, r *http.Request) {
	f, rng, ok := h.filterAndRange(w, r)
	if !ok {
		return
	}
	granularity := r.URL.Query().Get("granularity")
	if granularity == "" {
		granularity = analytics.GranularityMonth
	}
	report, err := h.analytics.CapacitySeries(r.Context(), f, rng, granularity)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

func (h *Handler) Gantt(w http.ResponseWriter, r *http.Request) {
	f, rng, ok := h.filterAndRange(w, r)
	if !ok {
		return
	}
	gantt, err := h.analytics.Gantt(r.Context(), f, rng)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, gantt)
}

func (h *Handler) Milestones(w http.ResponseWriter, r *http.Request) {
	f, rng, ok := h.filterAndRange(w, r)
	if !ok {
		return
	}
	report, err := h.analytics.Milestones(r.Context(), f, rng)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// Budget takes the year from the year parameter, which also narrows the
// project list like any other filter.
func (h *Handler) Budget(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	report, err := h.analytics.Budget(r.Context(), f, f.Year)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}
