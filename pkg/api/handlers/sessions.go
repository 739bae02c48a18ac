package handlers

import (
	"net/http"

	"tunebook/pkg/auth"
	"tunebook/pkg/services"
	"tunebook/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterSessions registers live-session listing routes.
func RegisterSessions(r *mux.Router, svc *services.SessionService) {
	r.HandleFunc("/sessions", listSessions(svc)).Methods(http.MethodGet)
	r.HandleFunc("/sessions", addSession(svc)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", updateSession(svc)).Methods(http.MethodPut)
	r.HandleFunc("/sessions/{id}", deleteSession(svc)).Methods(http.MethodDelete)
}

type sessionBody struct {
	Principal string `json:"principal"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Daytime   string `json:"daytime"`
	Contact   string `json:"contact"`
	Comment   string `json:"comment"`
	Recurring string `json:"recurring"`
}

// listSessions handles GET /sessions?search=&page=: case-insensitive
// substring match on name or location.
func listSessions(svc *services.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := pageParam(w, r)
		if !ok {
			return
		}
		sessions, total, err := svc.List(r.URL.Query().Get("search"), page)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"sessions": sessions, "total": total})
	}
}

// addSession handles POST /sessions and returns the assigned id.
func addSession(svc *services.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body sessionBody
		if !decodeBody(w, r, &body) {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, body.Principal)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		id, err := svc.Add(principal, body.Username, body.Name, body.Location, body.Daytime, body.Contact, body.Comment, body.Recurring)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"id": id})
	}
}

// updateSession handles PUT /sessions/{id}; only the owner may update.
func updateSession(svc *services.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		var body sessionBody
		if !decodeBody(w, r, &body) {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, body.Principal)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		if err := svc.Update(id, principal, body.Username, body.Name, body.Location, body.Daytime, body.Contact, body.Comment, body.Recurring); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"updated": true})
	}
}

// deleteSession handles DELETE /sessions/{id}?principal=.
func deleteSession(svc *services.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, r.URL.Query().Get("principal"))
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		if err := svc.Delete(id, principal); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
