package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"ops-dashboard/internal/models"
)

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	projects, err := h.dashboard.ListProjects(r.Context(), f)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, projects)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	p, err := h.dashboard.GetProject(r.Context(), id[0])
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var p models.Project
	if !decode(w, r, &p) {
		return
	}
	if err := h.dashboard.CreateProject(r.Context(), &p); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var patch models.ProjectPatch
	if !decode(w, r, &patch) {
		return
	}
	p, err := h.dashboard.UpdateProject(r.Context(), id[0], patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteProject(r.Context(), id[0]); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ProjectEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	events, err := h.dashboard.ProjectEvents(r.Context(), id[0], getLimit(r, 50, 500))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var e models.Expense
	if !decode(w, r, &e) {
		return
	}
	if err := h.dashboard.AddExpense(r.Context(), id[0], &e); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, e)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var patch models.ExpensePatch
	if !decode(w, r, &patch) {
		return
	}
	e, err := h.dashboard.UpdateExpense(r.Context(), id[0], patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteExpense(r.Context(), id[0]); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var t models.Task
	if !decode(w, r, &t) {
		return
	}
	if err := h.dashboard.AddTask(r.Context(), id[0], &t); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var patch models.HoursPatch
	if !decode(w, r, &patch) {
		return
	}
	t, err := h.dashboard.UpdateTask(r.Context(), id[0], patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteTask(r.Context(), id[0]); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListJiraLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	links, err := h.dashboard.ListJiraLinks(r.Context(), id[0])
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, links)
}

func (h *Handler) AddJiraLink(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		JiraKey string `json:"jiraKey"`
	}
	if !decode(w, r, &req) {
		return
	}
	link, err := h.dashboard.AddJiraLink(r.Context(), id[0], req.JiraKey)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, link)
}

func (h *Handler) DeleteJiraLink(w http.ResponseWriter, r *http.Request) {
	id, ok := ids(w, r, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteJiraLink(r.Context(), id[0], mux.Vars(r)["key"]); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
