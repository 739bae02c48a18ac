package handlers

import (
	"net/http"

	"tunebook/pkg/auth"
	"tunebook/pkg/services"
	"tunebook/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterFriends registers people-browsing and friend-request routes.
func RegisterFriends(r *mux.Router, svc *services.ProfileService) {
	r.HandleFunc("/people", browsePeople(svc)).Methods(http.MethodGet)
	r.HandleFunc("/friend-requests", sendFriendRequest(svc)).Methods(http.MethodPost)
	r.HandleFunc("/friend-requests/accept", acceptFriendRequest(svc)).Methods(http.MethodPost)
	r.HandleFunc("/friend-requests/cancel", cancelFriendRequest(svc)).Methods(http.MethodPost)
}

// browsePeople handles GET /people?principal=&filter=&page=.
func browsePeople(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, status, msg := auth.ResolvePrincipal(r, r.URL.Query().Get("principal"))
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		page, ok := pageParam(w, r)
		if !ok {
			return
		}
		people, total, err := svc.BrowsePeople(principal, r.URL.Query().Get("filter"), page)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"people": people, "total": total})
	}
}

type friendRequestBody struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

// sendFriendRequest handles POST /friend-requests. A request the service
// silently refuses (missing profile, already friends, already pending)
// answers with a null summary rather than an error.
func sendFriendRequest(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body friendRequestBody
		if !decodeBody(w, r, &body) {
			return
		}
		sender, status, msg := auth.ResolvePrincipal(r, body.Sender)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		out, err := svc.SendFriendRequest(sender, body.Receiver)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"request": out})
	}
}

// acceptFriendRequest handles POST /friend-requests/accept. The sender in
// the body is the original requester; the acting caller is the receiver,
// who accepts the request they hold in their incoming list.
func acceptFriendRequest(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body friendRequestBody
		if !decodeBody(w, r, &body) {
			return
		}
		receiver, status, msg := auth.ResolvePrincipal(r, body.Receiver)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		ok, err := svc.AcceptFriendRequest(receiver, body.Sender)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"accepted": ok})
	}
}

// cancelFriendRequest handles POST /friend-requests/cancel. The acting
// caller is the sender withdrawing their own request.
func cancelFriendRequest(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body friendRequestBody
		if !decodeBody(w, r, &body) {
			return
		}
		sender, status, msg := auth.ResolvePrincipal(r, body.Sender)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		ok, err := svc.CancelFriendRequest(sender, body.Receiver)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"cancelled": ok})
	}
}
