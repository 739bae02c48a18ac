package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tunebook/pkg/services"
	"tunebook/pkg/utils"
)

// writeServiceError maps the service failure taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrUnauthorized):
		utils.JSONError(w, http.StatusForbidden, "not the owner")
	case errors.Is(err, services.ErrConflict):
		utils.JSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrTooLarge):
		utils.JSONError(w, http.StatusRequestEntityTooLarge, "response too large")
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes a JSON request body, replying 400 on failure. The
// boolean reports whether the handler may proceed.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// pageParam reads the page query parameter: a non-negative window index,
// or -1 for everything. Missing defaults to the first page.
func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	q := r.URL.Query().Get("page")
	if q == "" {
		return 0, true
	}
	page, err := strconv.Atoi(q)
	if err != nil || page < services.AllPages {
		utils.JSONError(w, http.StatusBadRequest, "invalid page")
		return 0, false
	}
	return page, true
}

// idParam parses the {id} path variable.
func idParam(w http.ResponseWriter, raw string) (uint64, bool) {
	id, ok := utils.ParseID(raw)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
