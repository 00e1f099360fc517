package http

import (
	"net/http"

	"ops-dashboard/internal/models"
)

func (h *Handler) AddMilestone(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var m models.Milestone
	if !decode(w, r, &m) {
		return
	}
	if err := h.dashboard.AddMilestone(r.Context(), id[0], &m); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, m)
}

func (h *Handler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var patch models.MilestonePatch
	if !decode(w, r, &patch) {
		return
	}
	m, err := h.dashboard.UpdateMilestone(r.Context(), id[0], patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, m)
}

func (h *Handler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteMilestone(r.Context(), id[0]); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	assignments, err := h.dashboard.ListAssignments(r.Context(), id[0])
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, assignments)
}

func (h *Handler) AddAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var a models.Assignment
	if !decode(w, r, &a) {
		return
	}
	if err := h.dashboard.AddAssignment(r.Context(), id[0], &a); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, a)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var patch models.HoursPatch
	if !decode(w, r, &patch) {
		return
	}
	a, err := h.dashboard.UpdateAssignment(r.Context(), id[0], patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteAssignment(r.Context(), id[0]); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
