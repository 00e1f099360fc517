package http

import (
	"net/http"

	"ops-dashboard/internal/models"
)

func (h *Handler) ListEngineers(w http.ResponseWriter, r *http.Request) {
	engineers, err := h.dashboard.ListEngineers(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, engineers)
}

func (h *Handler) GetEngineer(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	e, err := h.dashboard.GetEngineer(r.Context(), id[0])
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, e)
}

func (h *Handler) CreateEngineer(w http.ResponseWriter, r *http.Request) {
	var e models.Engineer
	if !decode(w, r, &e) {
		return
	}
	if err := h.dashboard.CreateEngineer(r.Context(), &e); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, e)
}

func (h *Handler) UpdateEngineer(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var patch models.EngineerPatch
	if !decode(w, r, &patch) {
		return
	}
	e, err := h.dashboard.UpdateEngineer(r.Context(), id[0], patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteEngineer(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteEngineer(r.Context(), id[0]); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddNonProjectTime(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var n models.NonProjectTime
	if !decode(w, r, &n) {
		return
	}
	if err := h.dashboard.AddNonProjectTime(r.Context(), id[0], &n); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, n)
}

func (h *Handler) UpdateNonProjectTime(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id", "nptId")
	if !ok {
		return
	}
	var patch models.NonProjectTimePatch
	if !decode(w, r, &patch) {
		return
	}
	n, err := h.dashboard.UpdateNonProjectTime(r.Context(), id[0], id[1], patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}

func (h *Handler) DeleteNonProjectTime(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id", "nptId")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteNonProjectTime(r.Context(), id[0], id[1]); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
