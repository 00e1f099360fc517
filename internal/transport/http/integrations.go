package http

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"ops-dashboard/internal/service"
)

func (h *Handler) JiraConfig(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.jira.Config())
}

func (h *Handler) JiraIssue(w http.ResponseWriter, r *http.Request) {
	tree, err := h.jira.Issue(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tree)
}

func (h *Handler) IgnitionJira(w http.ResponseWriter, r *http.Request) {
	resp, err := h.jira.IgnitionJira(r.Context(), r.URL.Query())
	h.relay(w, r, resp, err)
}

func (h *Handler) IgnitionJiraIssue(w http.ResponseWriter, r *http.Request) {
	resp, err := h.jira.IgnitionJiraIssue(r.Context(), mux.Vars(r)["issueKey"])
	h.relay(w, r, resp, err)
}

// IgnitionProxy forwards ?path= with the remaining query parameters and, for
// POST and PUT, a JSON body.
func (h *Handler) IgnitionProxy(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	path := params.Get("path")
	params.Del("path")

	var body json.RawMessage
	if (r.Method == http.MethodPost || r.Method == http.MethodPut) && isJSON(r) {
		payload, ok := readPayload(w, r)
		if !ok {
			return
		}
		body = payload
	}
	resp, err := h.jira.IgnitionProxy(r.Context(), r.Method, path, params, body)
	h.relay(w, r, resp, err)
}

func isJSON(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}

// relay passes the gateway's status and JSON body through unchanged.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, resp *service.ProxyResponse, err error) {
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

func (h *Handler) IgnitionHealth(w http.ResponseWriter, r *http.Request) {
	health := h.jira.IgnitionHealth(r.Context())
	status := http.StatusOK
	switch {
	case health.Status == "disconnected":
		status = http.StatusServiceUnavailable
	case health.Status == "error" && health.StatusCode == 0:
		// no answer from the gateway, e.g. not configured
		status = http.StatusInternalServerError
	}
	respondWithJSON(w, status, health)
}

// readPayload accepts any JSON document, including an empty body.
func readPayload(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeBadRequest, "Invalid request payload")
		return nil, false
	}
	if len(body) == 0 {
		return json.RawMessage("{}"), true
	}
	if !json.Valid(body) {
		respondWithError(w, http.StatusBadRequest, codeBadRequest, "Invalid request payload")
		return nil, false
	}
	return json.RawMessage(body), true
}

func (h *Handler) PowerAutomateWebhook(w http.ResponseWriter, r *http.Request) {
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}
	result, err := h.jira.PowerAutomate(r.Context(), payload)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) TestWebhook(w http.ResponseWriter, r *http.Request) {
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}
	h.logger.Info("test webhook received")
	respondWithJSON(w, http.StatusOK, h.jira.Echo(payload))
}
